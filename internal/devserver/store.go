// Package devserver implements a self-contained feed server for local
// development: a SQLite-backed notification store exposed over the same
// HTTP and websocket surface the client consumes in production.
package devserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	role_code  TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	read_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`

// Store persists notifications in SQLite. Use ":memory:" as the path
// for a throwaway database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewStore(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("devserver storage: db path cannot be empty")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("devserver storage: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devserver storage: set busy timeout: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devserver storage: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Seed inserts a fresh unread notification for the user and returns it.
func (s *Store) Seed(ctx context.Context, userID, title, content, roleCode string) (domain.Notification, error) {
	if userID == "" {
		return domain.Notification{}, fmt.Errorf("devserver storage: user id cannot be empty")
	}
	n := domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		RoleCode:  roleCode,
		CreatedAt: domain.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, content, role_code, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, userID, n.Title, n.Content, n.RoleCode, n.CreatedAt)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("devserver storage: seed notification: %w", err)
	}
	return n, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("devserver storage: unread count: %w", err)
	}
	return count, nil
}

// Latest returns up to limit notifications for the user, newest first.
func (s *Store) Latest(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = domain.LimitLatest
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, role_code, created_at, read_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("devserver storage: latest: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// List returns one page of notifications matching the status filter,
// newest first, together with the total match count.
func (s *Store) List(ctx context.Context, userID string, status domain.StatusFilter, page, perPage int) ([]domain.Notification, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 15
	}
	where := `user_id = ?`
	switch status {
	case domain.StatusRead:
		where += ` AND read_at IS NOT NULL`
	case domain.StatusUnread:
		where += ` AND read_at IS NULL`
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE `+where, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("devserver storage: list count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, role_code, created_at, read_at
		 FROM notifications WHERE `+where+`
		 ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("devserver storage: list: %w", err)
	}
	defer rows.Close()
	items, err := scanNotifications(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead stamps a single notification as read. Already-read records
// keep their original timestamp.
func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE user_id = ? AND id = ? AND read_at IS NULL`,
		domain.Now(), userID, id)
	if err != nil {
		return fmt.Errorf("devserver storage: mark read: %w", err)
	}
	return nil
}

// MarkAllRead stamps every unread notification for the user.
func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL`,
		domain.Now(), userID)
	if err != nil {
		return fmt.Errorf("devserver storage: mark all read: %w", err)
	}
	return nil
}

// Delete removes a notification.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("devserver storage: delete: %w", err)
	}
	return nil
}

func scanNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var readAt sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.RoleCode, &n.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("devserver storage: scan row: %w", err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.String
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("devserver storage: iterate rows: %w", err)
	}
	return out, nil
}
