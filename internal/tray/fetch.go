package tray

import (
	"context"
	"fmt"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
)

// FetchOptions selects the cursor for FetchItems. Zero values mean
// "reuse the current cache value" so callers never resupply unchanged
// state.
type FetchOptions struct {
	Status domain.StatusFilter
	Page   int
}

// FetchUnreadCount reads the server-side unread counter and overwrites
// the cached value unconditionally. Transport failures propagate
// unchanged.
func (s *Store) FetchUnreadCount(ctx context.Context) error {
	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.unreadCount = count
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// FetchLatest replaces the recent-activity projection wholesale with up
// to LimitLatest records. The loading flag spans the call regardless of
// outcome; the flag transition and the data replacement commit under a
// single lock acquisition.
func (s *Store) FetchLatest(ctx context.Context) error {
	s.mu.Lock()
	s.loadingLatest = true
	s.notifyLocked()
	s.mu.Unlock()

	list, err := s.api.Latest(ctx, domain.LimitLatest)

	s.mu.Lock()
	s.loadingLatest = false
	if err == nil {
		for i := range list {
			list[i].Normalize()
		}
		s.latest = list
	}
	s.notifyLocked()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("fetch latest: %w", err)
	}
	return nil
}

// FetchItems issues a paginated, filtered read of the full list. On
// success the server's pagination metadata is adopted as ground truth.
// On failure the projection fails closed: an explicit empty, first-page,
// zero-total state replaces whatever was shown, and the error is
// returned for the caller to surface. A broken list presented as empty
// beats a stale one presented as current.
func (s *Store) FetchItems(ctx context.Context, opts FetchOptions) error {
	s.mu.Lock()
	status := s.status
	if opts.Status != "" {
		status = opts.Status
	}
	page := s.page
	if opts.Page > 0 {
		page = opts.Page
	}
	perPage := s.perPage
	s.loadingItems = true
	s.notifyLocked()
	s.mu.Unlock()

	res, err := s.api.List(ctx, ports.ListParams{Status: status, Page: page, PerPage: perPage})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingItems = false
	s.status = status
	if err != nil {
		s.items = nil
		s.page = 1
		s.total = 0
		s.lastPage = 1
		s.notifyLocked()
		return fmt.Errorf("fetch items: %w", err)
	}
	for i := range res.Items {
		res.Items[i].Normalize()
	}
	s.items = res.Items
	s.page = fallback(res.Page, page)
	s.perPage = fallback(res.PerPage, perPage)
	s.total = res.Total
	s.lastPage = fallback(res.LastPage, 1)
	s.notifyLocked()
	return nil
}

// SetStatusLocal updates the filter cursor without I/O. A filter change
// always invalidates the current page, so the page resets to 1. Callers
// pair this with an explicit FetchItems.
func (s *Store) SetStatusLocal(status domain.StatusFilter) {
	s.mu.Lock()
	s.status = status
	s.page = 1
	s.notifyLocked()
	s.mu.Unlock()
}

// SetPageLocal updates only the page cursor without I/O.
func (s *Store) SetPageLocal(page int) {
	s.mu.Lock()
	s.page = page
	s.notifyLocked()
	s.mu.Unlock()
}

// SetPerPageLocal updates the page size and resets to the first page,
// since the old page number is meaningless under a new size. Values
// below 1 are ignored.
func (s *Store) SetPerPageLocal(perPage int) {
	if perPage < 1 {
		return
	}
	s.mu.Lock()
	s.perPage = perPage
	s.page = 1
	s.notifyLocked()
	s.mu.Unlock()
}

func fallback(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}
