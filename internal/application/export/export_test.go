package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/internal/infrastructure/storage/minio"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

func testState() comparisonapp.State {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	return comparisonapp.State{
		Period: analytics.PeriodDaily,
		Subjects: []domain.Subject{
			{Key: "company:acme", Label: "Acme", Color: domain.ColorAt(0)},
			{Key: "company:globex", Label: "Globex", Color: domain.ColorAt(1)},
		},
		Result: &analytics.ComparisonResponse{
			DateFrom: from,
			DateTo:   to,
			Metrics: []analytics.MetricSummary{
				{SubjectKey: "company:globex", ImpactScore: 41.5, TrendDelta: -2.25, NewsTotal: 7, NewsPositive: 3},
				{SubjectKey: "company:acme", ImpactScore: 73.18, TrendDelta: 4.5, NewsTotal: 12, NewsNegative: 2},
			},
		},
	}
}

func TestBuildPayload_RowsFollowSubjectOrder(t *testing.T) {
	p, err := BuildPayload(testState(), time.Now())
	require.NoError(t, err)
	require.Len(t, p.Rows, 2)

	assert.Equal(t, "Acme", p.Rows[0].Subject.Label)
	assert.Equal(t, 73.18, p.Rows[0].Metrics.ImpactScore)
	assert.Equal(t, "Globex", p.Rows[1].Subject.Label)
	assert.Equal(t, 41.5, p.Rows[1].Metrics.ImpactScore)
}

func TestBuildPayload_NoResult(t *testing.T) {
	_, err := BuildPayload(comparisonapp.State{}, time.Now())
	assert.True(t, errors.IsCode(err, errors.CodeExportRenderFailed))
}

func TestBuildPayload_SubjectWithoutMetricsGetsZeroRow(t *testing.T) {
	state := testState()
	state.Subjects = append(state.Subjects, domain.Subject{Key: "company:initech", Label: "Initech"})

	p, err := BuildPayload(state, time.Now())
	require.NoError(t, err)
	require.Len(t, p.Rows, 3)
	assert.Equal(t, "company:initech", p.Rows[2].Metrics.SubjectKey)
	assert.Zero(t, p.Rows[2].Metrics.ImpactScore)
}

func TestRenderCSV_SectionsAndFormatting(t *testing.T) {
	p, err := BuildPayload(testState(), time.Now())
	require.NoError(t, err)

	data, err := RenderCSV(p)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	var titles []string
	for _, rec := range records {
		if len(rec) == 1 && rec[0] != "Competitive Comparison Export" {
			titles = append(titles, rec[0])
		}
	}
	assert.Equal(t, []string{
		"Company Overview",
		"Business Metrics",
		"Innovation Metrics",
		"News Sentiment",
		"News Volume Comparison",
	}, titles)

	text := string(data)
	assert.Contains(t, text, "Acme,73.18,4.50", "two decimal places, rounded")
	assert.Contains(t, text, "Globex,41.50,-2.25")

	// subject order is preserved inside every section
	acme := strings.Index(text, "Acme,12")
	globex := strings.Index(text, "Globex,7")
	require.GreaterOrEqual(t, acme, 0)
	require.GreaterOrEqual(t, globex, 0)
	assert.Less(t, acme, globex)
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	p, err := BuildPayload(testState(), time.Now())
	require.NoError(t, err)

	data, err := RenderJSON(p)
	require.NoError(t, err)

	var decoded Payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "company:acme", decoded.Rows[0].Subject.Key)
	assert.Equal(t, 73.18, decoded.Rows[0].Metrics.ImpactScore)
}

func TestRenderHTML(t *testing.T) {
	p, err := BuildPayload(testState(), time.Now())
	require.NoError(t, err)
	p.NotificationSettings = &analytics.NotificationSettings{
		DigestEnabled: true,
		Channels:      []string{"email", "slack"},
	}

	data, err := RenderHTML(p)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "<h2>Company Overview</h2>")
	assert.Contains(t, html, "Acme")
	assert.Contains(t, html, domain.ColorAt(0))
	assert.Contains(t, html, "73.18")
	assert.Contains(t, html, "<h2>Notification Settings</h2>")
	assert.Contains(t, html, "email, slack")
}

type fakeStateProvider struct{ state comparisonapp.State }

func (f *fakeStateProvider) State() comparisonapp.State { return f.state }

type fakeBundleBackend struct {
	err      error
	settings *analytics.NotificationSettings
}

func (f *fakeBundleBackend) ExportBundle(context.Context, *analytics.ExportBundleRequest) (*analytics.ExportBundleResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analytics.ExportBundleResponse{NotificationSettings: f.settings}, nil
}

type fakeArtifacts struct {
	putCalls int
	err      error
	lastName string
}

func (f *fakeArtifacts) Put(_ context.Context, name, contentType string, data []byte) (*minio.Artifact, error) {
	f.putCalls++
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	return &minio.Artifact{
		ObjectName:  name,
		ContentType: contentType,
		Size:        int64(len(data)),
		DownloadURL: "https://store.local/" + name,
	}, nil
}

func newExportService(artifacts minio.ArtifactStore, backend BundleBackend) *Service {
	return NewService(
		&fakeStateProvider{state: testState()},
		backend,
		nil,
		artifacts,
		kafka.NewNopProducer(),
		prommetrics.NewMetrics(),
		logging.NewNopLogger(),
	)
}

func TestExport_CSVWithUpload(t *testing.T) {
	artifacts := &fakeArtifacts{}
	svc := newExportService(artifacts, nil)

	result, err := svc.Export(context.Background(), Request{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, result.Format)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.NotEmpty(t, result.Data)
	require.NotNil(t, result.Artifact)
	assert.Equal(t, 1, artifacts.putCalls)
	assert.Equal(t, result.Filename, artifacts.lastName)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	svc := newExportService(nil, nil)
	_, err := svc.Export(context.Background(), Request{Format: Format("pdf")})
	assert.True(t, errors.IsCode(err, errors.CodeFormatUnsupported))
}

func TestExport_UploadFailure(t *testing.T) {
	artifacts := &fakeArtifacts{err: fmt.Errorf("bucket unreachable")}
	svc := newExportService(artifacts, nil)

	_, err := svc.Export(context.Background(), Request{Format: FormatJSON})
	assert.True(t, errors.IsCode(err, errors.CodeExportUploadFailed))
}

func TestExport_BundleFailureSkipsSettings(t *testing.T) {
	svc := newExportService(nil, &fakeBundleBackend{err: fmt.Errorf("backend down")})

	result, err := svc.Export(context.Background(), Request{
		Format:                      FormatJSON,
		IncludeNotificationSettings: true,
	})
	require.NoError(t, err)

	var decoded Payload
	require.NoError(t, json.Unmarshal(result.Data, &decoded))
	assert.Nil(t, decoded.NotificationSettings)
}

func TestExport_IncludesNotificationSettings(t *testing.T) {
	svc := newExportService(nil, &fakeBundleBackend{
		settings: &analytics.NotificationSettings{DigestEnabled: true},
	})

	result, err := svc.Export(context.Background(), Request{
		Format:                      FormatJSON,
		IncludeNotificationSettings: true,
	})
	require.NoError(t, err)

	var decoded Payload
	require.NoError(t, json.Unmarshal(result.Data, &decoded))
	require.NotNil(t, decoded.NotificationSettings)
	assert.True(t, decoded.NotificationSettings.DigestEnabled)
}
