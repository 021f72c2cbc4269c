package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://backend.example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "competiscope-go-sdk/")
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
	_, err = NewClient("ftp://invalid")
	assert.Error(t, err)
}

func TestNewClient_TrailingSlashTrimmed(t *testing.T) {
	c, err := NewClient("http://backend.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.example.com", c.baseURL)
}

func TestClient_SubClients_LazyInit(t *testing.T) {
	c, err := NewClient("http://backend.example.com")
	require.NoError(t, err)

	a1 := c.Analytics()
	assert.Same(t, a1, c.Analytics())
	ch1 := c.Changes()
	assert.Same(t, ch1, c.Changes())
	j1 := c.Jobs()
	assert.Same(t, j1, c.Jobs())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(analytics.JobAccepted{Status: "accepted", JobID: "job-1"})
	}, WithRetryWait(time.Millisecond, 5*time.Millisecond))

	resp, err := c.Jobs().Recompute(context.Background(), nil, analytics.PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"COMMON_002","message":"bad request"}`))
	}, WithRetryWait(time.Millisecond, 5*time.Millisecond))

	_, err := c.Jobs().SyncKnowledgeGraph(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "COMMON_002", apiErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_SetsRequestHeaders(t *testing.T) {
	var gotUA, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	})

	_, err := c.Analytics().LatestSnapshot(context.Background(), "acme", analytics.PeriodDaily)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "competiscope-go-sdk/")
	assert.NotEmpty(t, gotReqID)
}

func TestAnalytics_LatestSnapshot_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"CMP_005","message":"snapshot not computed"}`))
	})

	_, err := c.Analytics().LatestSnapshot(context.Background(), "acme", analytics.PeriodDaily)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestAnalytics_Comparison(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analytics/comparison", r.URL.Path)

		var req analytics.ComparisonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Subjects, 2)

		json.NewEncoder(w).Encode(analytics.ComparisonResponse{
			Subjects: []analytics.SubjectSummary{
				{SubjectKey: "company:acme", Label: "Acme"},
				{SubjectKey: "company:globex", Label: "Globex"},
			},
		})
	})

	resp, err := c.Analytics().Comparison(context.Background(), &analytics.ComparisonRequest{
		Subjects: []analytics.SubjectRef{
			{Type: analytics.SubjectCompany, ReferenceID: "acme"},
			{Type: analytics.SubjectCompany, ReferenceID: "globex"},
		},
		Period: analytics.PeriodDaily,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Subjects, 2)
}

func TestChanges_ChangeLog_CursorAndLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/companies/acme/change-log", r.URL.Path)
		assert.Equal(t, "daily", r.URL.Query().Get("period"))
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		next := "def"
		json.NewEncoder(w).Encode(analytics.ChangeLogPage{
			Events:     []analytics.ChangeEvent{{ID: "ev-1", CompanyID: "acme"}},
			NextCursor: &next,
			Total:      25,
		})
	})

	page, err := c.Changes().ChangeLog(context.Background(), "acme", analytics.PeriodDaily, analytics.FilterState{}, "abc", 10)
	require.NoError(t, err)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "def", *page.NextCursor)
	assert.Len(t, page.Events, 1)
}

func TestChanges_ChangeLog_FilterParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "weekly", q.Get("period"))
		assert.Equal(t, "news,filings", q.Get("source_types"))
		assert.Equal(t, "ai", q.Get("topics"))
		assert.Equal(t, "negative", q.Get("sentiments"))
		assert.Equal(t, "0.7", q.Get("min_priority"))
		json.NewEncoder(w).Encode(analytics.ChangeLogPage{})
	})

	pri := 0.7
	filters := analytics.FilterState{
		SourceTypes: []string{"news", "filings"},
		Topics:      []string{"ai"},
		Sentiments:  []string{"negative"},
		MinPriority: &pri,
	}
	_, err := c.Changes().ChangeLog(context.Background(), "acme", analytics.PeriodWeekly, filters, "", 10)
	require.NoError(t, err)
}

func TestChanges_ChangeLog_LastPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("cursor"))
		json.NewEncoder(w).Encode(analytics.ChangeLogPage{
			Events: []analytics.ChangeEvent{{ID: "ev-9"}},
			Total:  1,
		})
	})

	page, err := c.Changes().ChangeLog(context.Background(), "acme", "", analytics.FilterState{}, "", 0)
	require.NoError(t, err)
	assert.Nil(t, page.NextCursor)
}

func TestClient_ContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Analytics().Graph(ctx, "acme", 50)
	assert.Error(t, err)
}
