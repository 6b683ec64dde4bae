package tray

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
)

func strPtr(s string) *string { return &s }

func unread(id, title string) domain.Notification {
	return domain.Notification{ID: id, Title: title, CreatedAt: "2026-08-31T10:00:00Z"}
}

func read(id, title string) domain.Notification {
	return domain.Notification{ID: id, Title: title, CreatedAt: "2026-08-31T10:00:00Z", ReadAt: strPtr("2026-08-31T11:00:00Z")}
}

// fakeAPI is an in-memory FeedAPI recording calls and serving canned
// responses.
type fakeAPI struct {
	mu sync.Mutex

	count      int
	latest     []domain.Notification
	listResult ports.ListResult

	countErr    error
	latestErr   error
	listErr     error
	markReadErr error
	markAllErr  error
	deleteErr   error

	countCalls  int
	latestCalls int
	listCalls   int
	listParams  []ports.ListParams
	markedRead  []string
	markAllRuns int
	deleted     []string
}

func (f *fakeAPI) UnreadCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *fakeAPI) Latest(ctx context.Context, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	out := make([]domain.Notification, len(f.latest))
	copy(out, f.latest)
	return out, nil
}

func (f *fakeAPI) List(ctx context.Context, params ports.ListParams) (ports.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listParams = append(f.listParams, params)
	if f.listErr != nil {
		return ports.ListResult{}, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, id)
	return f.markReadErr
}

func (f *fakeAPI) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllRuns++
	return f.markAllErr
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeAPI) snapshotCalls() (count, latest, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countCalls, f.latestCalls, f.listCalls
}

// fakeSub collects handlers and replays events into them.
type fakeSub struct {
	mu       sync.Mutex
	handlers map[string][]ports.EventHandler
	closed   bool
}

func newFakeSub() *fakeSub {
	return &fakeSub{handlers: make(map[string][]ports.EventHandler)}
}

func (s *fakeSub) Listen(event string, handler ports.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSub) emit(event string, notif domain.Notification) {
	s.mu.Lock()
	handlers := append([]ports.EventHandler(nil), s.handlers[event]...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(ports.Event{Notification: notif})
	}
}

// fakeBroker records channel traffic.
type fakeBroker struct {
	mu         sync.Mutex
	privates   []string
	leaves     []string
	subs       map[string]*fakeSub
	privateErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{subs: make(map[string]*fakeSub)}
}

func (b *fakeBroker) Private(channel string) (ports.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.privateErr != nil {
		return nil, b.privateErr
	}
	b.privates = append(b.privates, channel)
	sub := newFakeSub()
	b.subs[channel] = sub
	return sub, nil
}

func (b *fakeBroker) Leave(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaves = append(b.leaves, channel)
	return nil
}

func (b *fakeBroker) sub(channel string) *fakeSub {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subs[channel]
}

// fakeChime counts primes and plays.
type fakeChime struct {
	mu     sync.Mutex
	primes int
	plays  int
}

func (c *fakeChime) Prime() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primes++
	return nil
}

func (c *fakeChime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
}

func (c *fakeChime) counts() (primes, plays int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primes, c.plays
}

func newTestStore() (*Store, *fakeAPI, *fakeBroker, *fakeChime) {
	api := &fakeAPI{}
	broker := newFakeBroker()
	chime := &fakeChime{}
	return New(api, broker, chime, nil), api, broker, chime
}

func TestBootstrap_EmptyUserIsSilentNoop(t *testing.T) {
	store, api, broker, _ := newTestStore()

	require.NoError(t, store.Bootstrap(context.Background(), "", "INSTRUCTOR"))

	count, latest, _ := api.snapshotCalls()
	assert.Zero(t, count)
	assert.Zero(t, latest)
	assert.Empty(t, broker.privates)
}

func TestBootstrap_IdempotentPerUserAndRole(t *testing.T) {
	store, api, broker, chime := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Bootstrap(ctx, "7", "INSTRUCTOR"))
	require.NoError(t, store.Bootstrap(ctx, "7", "INSTRUCTOR"))

	count, latest, _ := api.snapshotCalls()
	assert.Equal(t, 1, count, "priming reads must run exactly once per identity key")
	assert.Equal(t, 1, latest)
	assert.Equal(t, []string{"notify.user.7"}, broker.privates)

	// A different role for the same user primes again.
	require.NoError(t, store.Bootstrap(ctx, "7", "ADMIN"))
	count, latest, _ = api.snapshotCalls()
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, latest)
	// The subscription is per user, so no re-subscription happened.
	assert.Equal(t, []string{"notify.user.7"}, broker.privates)

	// The chime resource is created at most once for the store lifetime.
	primes, _ := chime.counts()
	assert.Equal(t, 1, primes)
}

func TestBootstrap_PrimesCacheFromServer(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.count = 3
	api.latest = []domain.Notification{unread("n1", "a"), read("n2", "b")}

	require.NoError(t, store.Bootstrap(context.Background(), "7", ""))

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.UnreadCount)
	require.Len(t, snap.Latest, 2)
	assert.Equal(t, "n1", snap.Latest[0].ID)
}

func TestBootstrap_PrimingReadsFailIndependently(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.countErr = errors.New("count endpoint down")
	api.latest = []domain.Notification{unread("n1", "a")}

	err := store.Bootstrap(context.Background(), "7", "")
	require.Error(t, err)

	// The latest read completed despite the count failure.
	snap := store.Snapshot()
	require.Len(t, snap.Latest, 1)
	assert.Zero(t, snap.UnreadCount)
}

func TestBootstrap_SwitchingUserTearsDownOldChannel(t *testing.T) {
	store, _, broker, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.Bootstrap(ctx, "7", ""))
	require.NoError(t, store.Bootstrap(ctx, "8", ""))

	assert.Equal(t, []string{"notify.user.7"}, broker.leaves)
	assert.Equal(t, []string{"notify.user.7", "notify.user.8"}, broker.privates)
	assert.True(t, broker.sub("notify.user.7").closed)
}

func TestSetRole_DoesNotRerunSideEffects(t *testing.T) {
	store, api, broker, chime := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.Bootstrap(ctx, "7", "INSTRUCTOR"))

	store.SetRole("ADMIN")

	count, latest, _ := api.snapshotCalls()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, latest)
	assert.Len(t, broker.privates, 1)
	primes, _ := chime.counts()
	assert.Equal(t, 1, primes)

	// The recorded idempotency key is unchanged: re-bootstrapping the
	// original pair is still a no-op.
	require.NoError(t, store.Bootstrap(ctx, "7", "INSTRUCTOR"))
	count, _, _ = api.snapshotCalls()
	assert.Equal(t, 1, count)
}

func TestUpdates_SignalsAfterWrites(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.count = 5

	require.NoError(t, store.FetchUnreadCount(context.Background()))

	select {
	case <-store.Updates():
	default:
		t.Fatal("expected a pending update signal")
	}
	assert.Equal(t, 5, store.Snapshot().UnreadCount)
}

func TestScenario_BootstrapMarkReadThenPush(t *testing.T) {
	store, api, broker, chime := newTestStore()
	ctx := context.Background()
	api.count = 3
	api.latest = []domain.Notification{unread("n1", "a"), unread("n2", "b"), read("n3", "c")}

	require.NoError(t, store.Bootstrap(ctx, "7", "INSTRUCTOR"))
	snap := store.Snapshot()
	require.Equal(t, 3, snap.UnreadCount)

	require.NoError(t, store.MarkAsRead(ctx, "n1"))
	snap = store.Snapshot()
	assert.Equal(t, 2, snap.UnreadCount)
	require.Len(t, snap.Latest, 3)
	assert.True(t, snap.Latest[0].IsRead(), "n1 stamped")
	assert.False(t, snap.Latest[1].IsRead(), "n2 untouched")
	assert.Equal(t, "2026-08-31T11:00:00Z", *snap.Latest[2].ReadAt, "n3 timestamp untouched")

	broker.sub("notify.user.7").emit(EventNotificationCreated, unread("n4", "d"))
	snap = store.Snapshot()
	assert.Equal(t, 3, snap.UnreadCount)
	require.Len(t, snap.Latest, 4)
	assert.Equal(t, []string{"n4", "n1", "n2", "n3"}, idsOf(snap.Latest))
	_, plays := chime.counts()
	assert.Equal(t, 1, plays)
}

func idsOf(list []domain.Notification) []string {
	ids := make([]string, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	return ids
}
