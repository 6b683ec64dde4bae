// Package tui implements the interactive inbox: a terminal view over
// the notification store that re-renders whenever the cache changes,
// whether from a keypress, a background fetch, or a push event.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/tray"
)

// cacheChangedMsg signals that the store emitted an update; the model
// re-reads via Snapshot.
type cacheChangedMsg struct{}

// actionDoneMsg carries the outcome of a store mutation or fetch.
type actionDoneMsg struct{ err error }

// Model is the bubbletea model for the inbox.
type Model struct {
	store   *tray.Store
	snap    tray.Snapshot
	cursor  int
	width   int
	height  int
	keys    keyMap
	spinner spinner.Model
	lastErr error
}

// NewModel creates an inbox model over the given store. The store is
// expected to be bootstrapped by the caller.
func NewModel(store *tray.Store) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		store:   store,
		snap:    store.Snapshot(),
		keys:    defaultKeyMap(),
		spinner: sp,
	}
}

// Init starts the spinner, arms the update listener, and issues the
// initial list fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForUpdate(),
		m.runAction(func(ctx context.Context) error {
			return m.store.FetchItems(ctx, tray.FetchOptions{})
		}),
	)
}

// waitForUpdate blocks on the store's coalesced change signal.
func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.store.Updates()
	return func() tea.Msg {
		<-updates
		return cacheChangedMsg{}
	}
}

// runAction executes a store operation off the render loop.
func (m *Model) runAction(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: fn(context.Background())}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case cacheChangedMsg:
		m.snap = m.store.Snapshot()
		m.clampCursor()
		return m, m.waitForUpdate()

	case actionDoneMsg:
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.selected()
		if !ok || n.IsRead() {
			return m, nil
		}
		id := n.ID
		return m, m.runAction(func(ctx context.Context) error {
			return m.store.MarkAsRead(ctx, id)
		})

	case key.Matches(msg, m.keys.MarkAll):
		return m, m.runAction(m.store.MarkAllAsRead)

	case key.Matches(msg, m.keys.Dismiss):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := n.ID
		return m, m.runAction(func(ctx context.Context) error {
			return m.store.Destroy(ctx, id)
		})

	case key.Matches(msg, m.keys.Filter):
		m.store.SetStatusLocal(nextFilter(m.snap.Status))
		return m, m.fetchItems()

	case key.Matches(msg, m.keys.NextPage):
		if m.snap.Page < m.snap.LastPage {
			m.store.SetPageLocal(m.snap.Page + 1)
			return m, m.fetchItems()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.snap.Page > 1 {
			m.store.SetPageLocal(m.snap.Page - 1)
			return m, m.fetchItems()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(
			m.runAction(m.store.FetchUnreadCount),
			m.fetchItems(),
		)
	}
	return m, nil
}

func (m *Model) fetchItems() tea.Cmd {
	return m.runAction(func(ctx context.Context) error {
		return m.store.FetchItems(ctx, tray.FetchOptions{})
	})
}

func (m *Model) selected() (domain.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Items) {
		return domain.Notification{}, false
	}
	return m.snap.Items[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.snap.Items) {
		m.cursor = len(m.snap.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextFilter cycles all -> unread -> read -> all.
func nextFilter(s domain.StatusFilter) domain.StatusFilter {
	switch s {
	case domain.StatusAll:
		return domain.StatusUnread
	case domain.StatusUnread:
		return domain.StatusRead
	default:
		return domain.StatusAll
	}
}
