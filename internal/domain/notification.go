// Package domain provides the domain layer for feed notifications.
// It contains the notification value object and read-status filtering.
package domain

import (
	"fmt"
	"time"
)

// LimitLatest is the maximum number of entries kept in the "recent
// activity" projection.
const LimitLatest = 10

// Notification represents a single notification record as delivered by
// the platform feed. ReadAt is nil while the notification is unread;
// its presence is the only read signal.
type Notification struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at"`
	RoleCode  string  `json:"role_code,omitempty"`
}

// IsRead reports whether the notification carries a read timestamp.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil && *n.ReadAt != ""
}

// StampRead sets the read timestamp if it is not already set and
// reports whether the notification transitioned from unread to read.
// An already-set timestamp is never overwritten.
func (n *Notification) StampRead(timestamp string) bool {
	if n.IsRead() {
		return false
	}
	n.ReadAt = &timestamp
	return true
}

// Normalize canonicalizes a payload received off the wire: an empty
// read timestamp is folded into nil so IsRead stays the single source
// of truth.
func (n *Notification) Normalize() {
	if n.ReadAt != nil && *n.ReadAt == "" {
		n.ReadAt = nil
	}
}

// Validate validates the notification and returns an error if invalid.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification ID cannot be empty")
	}
	if n.CreatedAt == "" {
		return fmt.Errorf("notification created_at cannot be empty")
	}
	if n.ReadAt != nil && *n.ReadAt != "" {
		if _, err := time.Parse(time.RFC3339, *n.ReadAt); err != nil {
			return fmt.Errorf("invalid read timestamp format: %w", err)
		}
	}
	return nil
}

// StatusFilter selects notifications by read status.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusRead   StatusFilter = "read"
	StatusUnread StatusFilter = "unread"
)

// IsValid checks if the status filter is valid.
func (s StatusFilter) IsValid() bool {
	switch s {
	case StatusAll, StatusRead, StatusUnread:
		return true
	default:
		return false
	}
}

// String returns the string representation of the filter.
func (s StatusFilter) String() string {
	return string(s)
}

// ParseStatusFilter parses a string into a StatusFilter.
func ParseStatusFilter(status string) (StatusFilter, error) {
	sf := StatusFilter(status)
	if !sf.IsValid() {
		return "", fmt.Errorf("invalid status filter: %s", status)
	}
	return sf, nil
}

// Matches checks if the notification matches the given status filter.
func (n *Notification) Matches(filter StatusFilter) bool {
	switch filter {
	case StatusRead:
		return n.IsRead()
	case StatusUnread:
		return !n.IsRead()
	default:
		return true
	}
}

// Now returns the current UTC time in the feed's timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
