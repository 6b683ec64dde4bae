package tray

import (
	"fmt"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
)

// EventNotificationCreated is the single push event the store consumes.
const EventNotificationCreated = "notification.created"

// channelForUser names the private per-user push channel.
func channelForUser(userID string) string {
	return "notify.user." + userID
}

// ensureSubscribed arms the push listener, idempotently per user. A
// subscription held for a previous user is torn down first so at most
// one live handler exists per session.
func (s *Store) ensureSubscribed() error {
	s.mu.Lock()
	userID := s.userID
	if s.subscribedUserID != "" && s.subscribedUserID != userID {
		stale := s.subscribedUserID
		staleSub := s.sub
		s.listening = false
		s.subscribedUserID = ""
		s.sub = nil
		s.mu.Unlock()

		if err := s.broker.Leave(channelForUser(stale)); err != nil {
			s.log.Warn("leaving stale channel failed", "user", stale, "error", err)
		}
		if staleSub != nil {
			if err := staleSub.Close(); err != nil {
				s.log.Warn("closing stale subscription failed", "user", stale, "error", err)
			}
		}
		s.mu.Lock()
	}
	if s.listening {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	sub, err := s.broker.Private(channelForUser(userID))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", channelForUser(userID), err)
	}
	sub.Listen(EventNotificationCreated, s.handleCreated)

	s.mu.Lock()
	s.listening = true
	s.subscribedUserID = userID
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// handleCreated merges one pushed record into the cache. It runs on the
// channel's delivery goroutine and does no blocking work: a pure data
// merge under the lock, then a fire-and-forget chime.
//
// An event tagged for a role other than the session's acting role is
// discarded outright: the user is wearing a different hat than the one
// the notification targets. Untagged events and sessions without an
// acting role always pass.
func (s *Store) handleCreated(ev ports.Event) {
	n := ev.Notification

	s.mu.Lock()
	if s.actingRole != "" && n.RoleCode != "" && n.RoleCode != s.actingRole {
		s.mu.Unlock()
		return
	}
	n.Normalize()
	s.unreadCount++
	s.latest = prepend(s.latest, n, domain.LimitLatest)
	// An unread-by-definition arrival has no business in a read-only view.
	if s.status != domain.StatusRead {
		s.items = prepend(s.items, n, 0)
	}
	s.total++
	s.notifyLocked()
	s.mu.Unlock()

	s.chime.Play()
}

// prepend inserts n at the head of list, truncating to limit when
// limit > 0. It returns a fresh slice so concurrent Snapshot holders
// never see in-place edits.
func prepend(list []domain.Notification, n domain.Notification, limit int) []domain.Notification {
	out := make([]domain.Notification, 0, len(list)+1)
	out = append(out, n)
	out = append(out, list...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
