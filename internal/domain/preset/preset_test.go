package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

func validPreset() *analytics.ReportPreset {
	return &analytics.ReportPreset{
		Name:      "Cloud rivals",
		Companies: []string{"acme", "globex"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(validPreset()))
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*analytics.ReportPreset)
	}{
		{"empty name", func(p *analytics.ReportPreset) { p.Name = "  " }},
		{"no companies", func(p *analytics.ReportPreset) { p.Companies = nil }},
		{"blank company", func(p *analytics.ReportPreset) { p.Companies = []string{"acme", " "} }},
		{"duplicate company", func(p *analytics.ReportPreset) { p.Companies = []string{"acme", "acme"} }},
		{"too many companies", func(p *analytics.ReportPreset) {
			p.Companies = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPreset()
			tc.mutate(p)
			err := Validate(p)
			assert.True(t, errors.IsCode(err, errors.CodePresetInvalid), "got %v", err)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestPrimaryCompany(t *testing.T) {
	assert.Equal(t, "acme", PrimaryCompany(validPreset()))
	assert.Equal(t, "", PrimaryCompany(nil))
	assert.Equal(t, "", PrimaryCompany(&analytics.ReportPreset{}))
}
