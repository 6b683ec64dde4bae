package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

// MarkAsRead optimistically stamps the notification as read in both
// projections and decrements the unread counter, then confirms with the
// remote store. On confirmation failure the optimistic state is
// discarded by a full three-way resync before the error is re-raised.
// An empty id is a no-op.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	now := domain.Now()

	s.mu.Lock()
	wasUnread := s.hasUnreadLocked(id)
	for i := range s.latest {
		if s.latest[i].ID == id {
			s.latest[i].StampRead(now)
		}
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].StampRead(now)
		}
	}
	if wasUnread && s.unreadCount > 0 {
		s.unreadCount--
	}
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.api.MarkRead(ctx, id); err != nil {
		s.resync(ctx)
		return fmt.Errorf("mark as read: %w", err)
	}
	return nil
}

// MarkAllAsRead optimistically zeroes the unread counter and stamps
// every cached entry, then confirms remotely. Failure triggers the same
// three-way resync before re-raising.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	now := domain.Now()

	s.mu.Lock()
	s.unreadCount = 0
	for i := range s.latest {
		s.latest[i].StampRead(now)
	}
	for i := range s.items {
		s.items[i].StampRead(now)
	}
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.api.MarkAllRead(ctx); err != nil {
		s.resync(ctx)
		return fmt.Errorf("mark all as read: %w", err)
	}
	return nil
}

// Destroy deletes a notification pessimistically: the remote delete is
// awaited before any local state changes, so a failure needs no
// rollback. On success the record is removed from both projections and
// the unread counter and total are decremented, floored at zero. An
// empty id is a no-op.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroy: %w", err)
	}

	s.mu.Lock()
	wasUnread := s.hasUnreadLocked(id)
	s.latest = removeByID(s.latest, id)
	s.items = removeByID(s.items, id)
	if wasUnread && s.unreadCount > 0 {
		s.unreadCount--
	}
	if s.total > 0 {
		s.total--
	}
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// hasUnreadLocked reports whether the id appears unread in either
// projection. A notification may legitimately live in one projection
// and not the other. Callers hold s.mu.
func (s *Store) hasUnreadLocked(id string) bool {
	for i := range s.latest {
		if s.latest[i].ID == id && !s.latest[i].IsRead() {
			return true
		}
	}
	for i := range s.items {
		if s.items[i].ID == id && !s.items[i].IsRead() {
			return true
		}
	}
	return false
}

// resync discards local predictions by re-reading all three projections
// from the server concurrently. Individual failures are logged, not
// returned: the caller is already propagating the mutation error, and a
// partial resync is still fresher than the discarded guess.
func (s *Store) resync(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := s.FetchUnreadCount(ctx); err != nil {
			s.log.Warn("resync unread count failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.FetchLatest(ctx); err != nil {
			s.log.Warn("resync latest failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.FetchItems(ctx, FetchOptions{}); err != nil {
			s.log.Warn("resync items failed", "error", err)
		}
	}()
	wg.Wait()
}

func removeByID(list []domain.Notification, id string) []domain.Notification {
	out := list[:0]
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
