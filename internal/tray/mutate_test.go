package tray

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

// seed loads both projections and the counters directly, bypassing the
// network, so mutation tests start from a known cache state.
func seed(s *Store, count int, latest, items []domain.Notification) {
	s.mu.Lock()
	s.unreadCount = count
	s.latest = latest
	s.items = items
	s.total = len(items)
	s.mu.Unlock()
}

func TestMarkAsRead_DecrementsOnlyWhileUnread(t *testing.T) {
	store, api, _, _ := newTestStore()
	ctx := context.Background()
	seed(store, 2,
		[]domain.Notification{unread("n1", "a"), unread("n2", "b")},
		[]domain.Notification{unread("n1", "a")})

	require.NoError(t, store.MarkAsRead(ctx, "n1"))
	snap := store.Snapshot()
	assert.Equal(t, 1, snap.UnreadCount)
	assert.True(t, snap.Latest[0].IsRead())
	assert.True(t, snap.Items[0].IsRead(), "stamped in both projections")

	// Repeating the call is counter-neutral and keeps the original stamp.
	first := *snap.Latest[0].ReadAt
	require.NoError(t, store.MarkAsRead(ctx, "n1"))
	snap = store.Snapshot()
	assert.Equal(t, 1, snap.UnreadCount)
	assert.Equal(t, first, *snap.Latest[0].ReadAt)

	assert.Equal(t, []string{"n1", "n1"}, api.markedRead)
}

func TestMarkAsRead_CounterFloorsAtZero(t *testing.T) {
	store, _, _, _ := newTestStore()
	seed(store, 0, []domain.Notification{unread("n1", "a")}, nil)

	require.NoError(t, store.MarkAsRead(context.Background(), "n1"))

	assert.Zero(t, store.Snapshot().UnreadCount)
}

func TestMarkAsRead_EmptyIDIsNoop(t *testing.T) {
	store, api, _, _ := newTestStore()

	require.NoError(t, store.MarkAsRead(context.Background(), ""))

	assert.Empty(t, api.markedRead)
}

func TestMarkAsRead_FailureResyncsAndReraises(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.markReadErr = errors.New("boom")
	api.count = 2
	api.latest = []domain.Notification{unread("n1", "a"), unread("n2", "b")}
	seed(store, 2, []domain.Notification{unread("n1", "a"), unread("n2", "b")}, nil)

	err := store.MarkAsRead(context.Background(), "n1")
	require.ErrorContains(t, err, "mark as read")

	// The optimistic guess was discarded by re-reading all three
	// projections from the server.
	count, latest, list := api.snapshotCalls()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, latest)
	assert.Equal(t, 1, list)
	snap := store.Snapshot()
	assert.Equal(t, 2, snap.UnreadCount)
	assert.False(t, snap.Latest[0].IsRead(), "server truth restored")
}

func TestMarkAllAsRead_ZeroesAndStampsEverything(t *testing.T) {
	store, api, _, _ := newTestStore()
	seed(store, 3,
		[]domain.Notification{unread("n1", "a"), read("n2", "b")},
		[]domain.Notification{unread("n3", "c")})

	require.NoError(t, store.MarkAllAsRead(context.Background()))

	snap := store.Snapshot()
	assert.Zero(t, snap.UnreadCount)
	for _, n := range snap.Latest {
		assert.True(t, n.IsRead())
	}
	for _, n := range snap.Items {
		assert.True(t, n.IsRead())
	}
	assert.Equal(t, "2026-08-31T11:00:00Z", *snap.Latest[1].ReadAt, "existing stamps preserved")
	assert.Equal(t, 1, api.markAllRuns)
}

func TestMarkAllAsRead_FailureResyncsAndReraises(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.markAllErr = errors.New("boom")
	api.count = 1
	seed(store, 1, []domain.Notification{unread("n1", "a")}, nil)

	err := store.MarkAllAsRead(context.Background())
	require.ErrorContains(t, err, "mark all as read")

	count, latest, list := api.snapshotCalls()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, latest)
	assert.Equal(t, 1, list)
	assert.Equal(t, 1, store.Snapshot().UnreadCount)
}

func TestDestroy_RemovesAndDecrements(t *testing.T) {
	store, api, _, _ := newTestStore()
	seed(store, 2,
		[]domain.Notification{unread("n1", "a"), unread("n2", "b")},
		[]domain.Notification{unread("n1", "a"), unread("n2", "b")})

	require.NoError(t, store.Destroy(context.Background(), "n1"))

	snap := store.Snapshot()
	assert.Equal(t, []string{"n2"}, idsOf(snap.Latest))
	assert.Equal(t, []string{"n2"}, idsOf(snap.Items))
	assert.Equal(t, 1, snap.UnreadCount)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, []string{"n1"}, api.deleted)
}

func TestDestroy_ReadRecordKeepsCounter(t *testing.T) {
	store, _, _, _ := newTestStore()
	seed(store, 1,
		[]domain.Notification{unread("n1", "a"), read("n2", "b")},
		nil)

	require.NoError(t, store.Destroy(context.Background(), "n2"))

	snap := store.Snapshot()
	assert.Equal(t, 1, snap.UnreadCount, "deleting a read record leaves the unread counter alone")
	assert.Equal(t, []string{"n1"}, idsOf(snap.Latest))
}

func TestDestroy_FailureLeavesCacheUntouched(t *testing.T) {
	store, api, _, _ := newTestStore()
	api.deleteErr = errors.New("boom")
	seed(store, 1, []domain.Notification{unread("n1", "a")}, nil)

	err := store.Destroy(context.Background(), "n1")
	require.ErrorContains(t, err, "destroy")

	snap := store.Snapshot()
	assert.Equal(t, 1, snap.UnreadCount)
	assert.Equal(t, []string{"n1"}, idsOf(snap.Latest))
	count, latest, list := api.snapshotCalls()
	assert.Zero(t, count+latest+list, "no rollback reads needed for a pessimistic delete")
}

func TestDestroy_EmptyIDIsNoop(t *testing.T) {
	store, api, _, _ := newTestStore()

	require.NoError(t, store.Destroy(context.Background(), ""))

	assert.Empty(t, api.deleted)
}
