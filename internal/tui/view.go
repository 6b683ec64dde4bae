package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	unreadStyle   = lipgloss.NewStyle().Bold(true)
	readStyle     = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.snap.LoadingItems && len(m.snap.Items) == 0 {
		b.WriteString("  " + m.spinner.View() + " loading...\n")
	} else if len(m.snap.Items) == 0 {
		b.WriteString("  nothing here\n")
	} else {
		for i, n := range m.snap.Items {
			b.WriteString(m.rowView(i, n))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.lastErr != nil {
		b.WriteString(errStyle.Render("  error: "+m.lastErr.Error()) + "\n")
	}
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) headerView() string {
	title := headerStyle.Render("Inbox")
	badge := ""
	if m.snap.UnreadCount > 0 {
		badge = " " + badgeStyle.Render(fmt.Sprintf("%d unread", m.snap.UnreadCount))
	}
	filter := fmt.Sprintf("  filter: %s  page %d/%d", m.snap.Status, m.snap.Page, m.snap.LastPage)
	return title + badge + footerStyle.Render(filter)
}

func (m *Model) rowView(i int, n domain.Notification) string {
	marker := "  "
	style := readStyle
	if !n.IsRead() {
		marker = "* "
		style = unreadStyle
	}
	line := marker + n.Title
	if n.CreatedAt != "" {
		line += footerStyle.Render("  " + n.CreatedAt)
	}
	if i == m.cursor {
		return selectedStyle.Render("> ") + style.Render(line)
	}
	return "  " + style.Render(line)
}

func (m *Model) footerView() string {
	return footerStyle.Render("  j/k move · r read · a read all · d dismiss · s filter · n/p page · R refresh · q quit")
}
