package comparison

import (
	"context"
	"sync"

	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// PageStatus is the paginator lifecycle phase.
type PageStatus string

const (
	PageIdle      PageStatus = "idle"
	PageLoading   PageStatus = "loading"
	PageExhausted PageStatus = "exhausted"
	PageFailed    PageStatus = "failed"
)

// ChangeLogKey identifies one change-log stream.  A stream is scoped to a
// company under a specific period and filter set; changing any component
// means the backend cursors no longer line up, so accumulated pages must be
// dropped and fetching starts over from the first cursor.
type ChangeLogKey struct {
	CompanyID string                `json:"company_id"`
	Period    analytics.Period      `json:"period"`
	Filters   analytics.FilterState `json:"filters"`
}

// Equal reports whether two keys address the same stream.
func (k ChangeLogKey) Equal(other ChangeLogKey) bool {
	return k.CompanyID == other.CompanyID &&
		k.Period == other.Period &&
		domain.FiltersEqual(k.Filters, other.Filters)
}

// PageFetcher loads one change-log page from the backend.
type PageFetcher func(ctx context.Context, key ChangeLogKey, cursor string, limit int) (*analytics.ChangeLogPage, error)

// ChangeLogView is a copy of the paginator state handed to callers.
type ChangeLogView struct {
	CompanyID string                  `json:"company_id"`
	Period    analytics.Period        `json:"period"`
	Filters   analytics.FilterState   `json:"filters"`
	Events    []analytics.ChangeEvent `json:"events"`
	Total     int                     `json:"total"`
	HasMore   bool                    `json:"has_more"`
	Status    PageStatus              `json:"status"`
}

// ChangeLogPager accumulates cursor pages of change events for one stream.
// Loaded pages are kept when a later page fails, so a retry only re-requests
// the failed page.  Duplicate events across page boundaries are dropped by
// id.
type ChangeLogPager struct {
	mu       sync.Mutex
	fetch    PageFetcher
	limit    int
	key      ChangeLogKey
	events   []analytics.ChangeEvent
	seen     map[string]struct{}
	cursor   *string
	started  bool
	total    int
	status   PageStatus
	inFlight bool
}

// NewChangeLogPager builds a pager that fetches pages of the given size.
func NewChangeLogPager(fetch PageFetcher, limit int) *ChangeLogPager {
	return &ChangeLogPager{
		fetch:  fetch,
		limit:  limit,
		seen:   make(map[string]struct{}),
		status: PageIdle,
	}
}

// Key returns the stream the pager currently points at.
func (p *ChangeLogPager) Key() ChangeLogKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Reset points the pager at a stream, dropping all loaded pages.  Resetting
// to the same stream is still a full reset; callers decide when the key
// actually changed.
func (p *ChangeLogPager) Reset(key ChangeLogKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key = key
	p.events = nil
	p.seen = make(map[string]struct{})
	p.cursor = nil
	p.started = false
	p.total = 0
	p.status = PageIdle
}

// LoadMore fetches the next page.  It is a no-op while a fetch is in flight
// or once the cursor is exhausted; a prior failure is retried with the same
// cursor.
func (p *ChangeLogPager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.key.CompanyID == "" {
		p.mu.Unlock()
		return errors.New(errors.CodeInvalidParam, "change log has no company selected")
	}
	if p.inFlight || p.status == PageExhausted {
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	p.status = PageLoading
	key := p.key
	cursor := ""
	if p.cursor != nil {
		cursor = *p.cursor
	}
	limit := p.limit
	p.mu.Unlock()

	page, err := p.fetch(ctx, key, cursor, limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	// The pager may have been pointed at a different stream while the
	// request was running; its result no longer belongs here.
	if !p.key.Equal(key) {
		return nil
	}

	if err != nil {
		p.status = PageFailed
		return errors.Wrap(err, errors.CodePageFetchFailed, "failed to load change log page")
	}

	for _, ev := range page.Events {
		if _, dup := p.seen[ev.ID]; dup {
			continue
		}
		p.seen[ev.ID] = struct{}{}
		p.events = append(p.events, ev)
	}
	p.total = page.Total
	p.cursor = page.NextCursor
	p.started = true
	if page.NextCursor == nil {
		p.status = PageExhausted
	} else {
		p.status = PageIdle
	}
	return nil
}

// View returns a copy of the accumulated state.
func (p *ChangeLogPager) View() ChangeLogView {
	p.mu.Lock()
	defer p.mu.Unlock()

	events := make([]analytics.ChangeEvent, len(p.events))
	copy(events, p.events)

	hasMore := !p.started || p.cursor != nil
	if p.status == PageExhausted {
		hasMore = false
	}
	return ChangeLogView{
		CompanyID: p.key.CompanyID,
		Period:    p.key.Period,
		Filters:   p.key.Filters,
		Events:    events,
		Total:     p.total,
		HasMore:   hasMore,
		Status:    p.status,
	}
}
