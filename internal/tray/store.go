// Package tray implements the client-held notification store: a cached
// view of the remote feed kept consistent across on-demand reads,
// optimistic local mutations, and the asynchronous push channel.
package tray

import (
	"context"
	"errors"
	"sync"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
	"github.com/rollcallhq/rollcall-notify/internal/sound"
)

// DefaultPerPage is the page size used until the server reports its own.
const DefaultPerPage = 15

// Store is the single shared mutable resource of the subsystem. Every
// writer (fetch completions, optimistic mutations, push events) mutates
// it under one mutex via whole-field replacement, so no reader can
// observe a half-applied state.
type Store struct {
	mu     sync.Mutex
	api    ports.FeedAPI
	broker ports.PushBroker
	chime  ports.Chime
	log    logging.Logger

	// Session identity. bootKey gates one-time bootstrap side effects.
	userID      string
	actingRole  string
	bootKey     string
	soundPrimed bool

	// Read cache projections.
	unreadCount   int
	latest        []domain.Notification
	items         []domain.Notification
	status        domain.StatusFilter
	page          int
	perPage       int
	lastPage      int
	total         int
	loadingLatest bool
	loadingItems  bool

	// Subscription guards, not business state.
	listening        bool
	subscribedUserID string
	sub              ports.Subscription

	updates chan struct{}
}

// Snapshot is a point-in-time copy of the read cache for consumers.
type Snapshot struct {
	UnreadCount   int
	Latest        []domain.Notification
	Items         []domain.Notification
	Status        domain.StatusFilter
	Page          int
	PerPage       int
	LastPage      int
	Total         int
	LoadingLatest bool
	LoadingItems  bool
}

// New creates a Store bound to the given collaborators. A nil chime is
// replaced with a silent one and a nil logger with a no-op logger.
func New(api ports.FeedAPI, broker ports.PushBroker, chime ports.Chime, log logging.Logger) *Store {
	if chime == nil {
		chime = sound.NewSilentChime()
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Store{
		api:      api,
		broker:   broker,
		chime:    chime,
		log:      log,
		status:   domain.StatusAll,
		page:     1,
		perPage:  DefaultPerPage,
		lastPage: 1,
		updates:  make(chan struct{}, 1),
	}
}

// Bootstrap binds the store to a session and runs the one-time priming
// sequence: chime priming, push subscription, and the two initial reads
// (unread count and latest), issued concurrently and independently.
// The idempotency key is userID plus actingRole: repeating the exact
// pair is a no-op, while a different role for the same user primes
// again. An empty userID is a silent no-op so callers may fire before
// authentication resolves.
func (s *Store) Bootstrap(ctx context.Context, userID, actingRole string) error {
	if userID == "" {
		return nil
	}
	key := userID + actingRole

	s.mu.Lock()
	if s.bootKey == key {
		s.mu.Unlock()
		return nil
	}
	s.userID = userID
	s.actingRole = actingRole
	s.bootKey = key
	primed := s.soundPrimed
	s.soundPrimed = true
	s.mu.Unlock()

	if !primed {
		if err := s.chime.Prime(); err != nil {
			s.log.Warn("chime priming failed", "error", err)
		}
	}

	subErr := s.ensureSubscribed()
	if subErr != nil {
		s.log.Warn("push subscription failed", "user", userID, "error", subErr)
	}

	var wg sync.WaitGroup
	var countErr, latestErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		countErr = s.FetchUnreadCount(ctx)
	}()
	go func() {
		defer wg.Done()
		latestErr = s.FetchLatest(ctx)
	}()
	wg.Wait()

	return errors.Join(subErr, countErr, latestErr)
}

// SetRole updates the acting-role tag used to filter push events. It
// does not re-run bootstrap side effects and leaves the recorded
// idempotency key untouched.
func (s *Store) SetRole(actingRole string) {
	s.mu.Lock()
	s.actingRole = actingRole
	s.notifyLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current cache state. The slices are
// copied so consumers can hold them across later writes.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		UnreadCount:   s.unreadCount,
		Latest:        make([]domain.Notification, len(s.latest)),
		Items:         make([]domain.Notification, len(s.items)),
		Status:        s.status,
		Page:          s.page,
		PerPage:       s.perPage,
		LastPage:      s.lastPage,
		Total:         s.total,
		LoadingLatest: s.loadingLatest,
		LoadingItems:  s.loadingItems,
	}
	copy(snap.Latest, s.latest)
	copy(snap.Items, s.items)
	return snap
}

// Updates returns a coalesced change signal: at least one receive is
// pending after any cache write. Consumers re-read via Snapshot.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

// notifyLocked signals Updates without blocking. Callers hold s.mu.
func (s *Store) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Close tears down the push subscription, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	userID := s.subscribedUserID
	sub := s.sub
	s.listening = false
	s.subscribedUserID = ""
	s.sub = nil
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	var errs []error
	if s.broker != nil && userID != "" {
		if err := s.broker.Leave(channelForUser(userID)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := sub.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
