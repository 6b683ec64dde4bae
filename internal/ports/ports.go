// Package ports defines application boundary interfaces used by the tray store.
package ports

import (
	"context"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

// ListParams holds the cursor for a paginated, filtered feed read.
type ListParams struct {
	Status  domain.StatusFilter
	Page    int
	PerPage int
}

// ListResult is one page of the feed plus the server's pagination metadata.
type ListResult struct {
	Items    []domain.Notification
	Page     int
	PerPage  int
	Total    int
	LastPage int
}

// FeedAPI defines the remote feed operations used by the tray store.
type FeedAPI interface {
	UnreadCount(ctx context.Context) (int, error)
	Latest(ctx context.Context, limit int) ([]domain.Notification, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

// Event is a single record delivered over the push channel.
type Event struct {
	Notification domain.Notification
}

// EventHandler consumes pushed events. Handlers must not block: they run
// on the channel's delivery goroutine.
type EventHandler func(Event)

// Subscription is a live handle on a private push channel.
type Subscription interface {
	// Listen registers the handler for the named event.
	Listen(event string, handler EventHandler)
	Close() error
}

// PushBroker defines the push-channel operations used by the tray store.
type PushBroker interface {
	// Private opens (or returns) the private channel with the given name.
	Private(channel string) (Subscription, error)
	// Leave tears down the subscription on the named channel.
	Leave(channel string) error
}

// Chime plays the notification sound. Playback failures are the
// implementation's problem: Play must never return an error or panic.
type Chime interface {
	// Prime prepares the underlying resource. Called at most once per
	// store lifetime.
	Prime() error
	Play()
}
