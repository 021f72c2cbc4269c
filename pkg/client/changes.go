package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// ChangesClient covers the competitor change-log endpoints.
type ChangesClient struct {
	client *Client
}

// ChangeLog fetches one page of change events for a company under the given
// period and filters.  The backend scopes its cursors to that combination,
// so callers must restart from an empty cursor whenever period or filters
// change.  A nil NextCursor in the response marks the last page.
func (cc *ChangesClient) ChangeLog(ctx context.Context, companyID string, period analytics.Period, filters analytics.FilterState, cursor string, limit int) (*analytics.ChangeLogPage, error) {
	if companyID == "" {
		return nil, fmt.Errorf("companyID is required")
	}
	q := url.Values{}
	if period != "" {
		q.Set("period", string(period))
	}
	if len(filters.SourceTypes) > 0 {
		q.Set("source_types", strings.Join(filters.SourceTypes, ","))
	}
	if len(filters.Topics) > 0 {
		q.Set("topics", strings.Join(filters.Topics, ","))
	}
	if len(filters.Sentiments) > 0 {
		q.Set("sentiments", strings.Join(filters.Sentiments, ","))
	}
	if filters.MinPriority != nil {
		q.Set("min_priority", strconv.FormatFloat(*filters.MinPriority, 'f', -1, 64))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/api/v1/analytics/companies/%s/change-log", url.PathEscape(companyID))
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page analytics.ChangeLogPage
	if err := cc.client.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
