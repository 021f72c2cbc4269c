// Package config provides configuration loading, defaults, and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "COMPISCOPE"

// newViper builds a pre-configured Viper instance: YAML file type,
// COMPISCOPE_ env prefix, automatic env binding, and a key replacer mapping
// "." → "_" so nested keys like "backend.base_url" resolve to
// "COMPISCOPE_BACKEND_BASE_URL".  Defaults are registered up front because
// AutomaticEnv only consults the environment for keys Viper already knows;
// without them an override like COMPISCOPE_LOG_LEVEL would be silently
// ignored whenever the config file has no "log" section.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges COMPISCOPE_* environment
// overrides, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from COMPISCOPE_* environment
// variables, with no config file required.  Preferred for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the freshly validated Config.  Invalid edits are reported
// through onError and the previous configuration stays in effect.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
