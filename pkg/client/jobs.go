package client

import (
	"context"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// JobsClient covers the async job trigger endpoints.  Triggers return an
// acknowledgement with a job id immediately; there is no completion callback,
// callers schedule their own follow-up refresh.
type JobsClient struct {
	client *Client
}

type recomputeRequest struct {
	CompanyIDs []string         `json:"company_ids,omitempty"`
	Period     analytics.Period `json:"period,omitempty"`
}

// Recompute triggers a backend analytics recompute for the given companies
// (all companies when empty).
func (j *JobsClient) Recompute(ctx context.Context, companyIDs []string, period analytics.Period) (*analytics.JobAccepted, error) {
	var resp analytics.JobAccepted
	body := recomputeRequest{CompanyIDs: companyIDs, Period: period}
	if err := j.client.post(ctx, "/api/v1/analytics/recompute", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncKnowledgeGraph triggers a backend knowledge-graph rebuild.
func (j *JobsClient) SyncKnowledgeGraph(ctx context.Context) (*analytics.JobAccepted, error) {
	var resp analytics.JobAccepted
	if err := j.client.post(ctx, "/api/v1/analytics/knowledge-graph/sync", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
