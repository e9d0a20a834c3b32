package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/larkwiot/bookexplorer/internal/theme"
)

type clearActiveCmdMsg struct{}

// highlightCmd returns a 500ms tick that clears the footer highlight.
func highlightCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return clearActiveCmdMsg{}
	})
}

// renderFooterBar renders the key help; the binding matching activeCmd is
// highlighted, the rest are dim.
func renderFooterBar(bindings []key.Binding, activeCmd string, styles theme.Styles) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		label := h.Key + " " + h.Desc
		if activeCmd != "" && h.Key == activeCmd {
			parts = append(parts, styles.Accent.Bold(true).Render("[ "+label+" ]"))
		} else {
			parts = append(parts, styles.Subtitle.Render(label))
		}
	}
	return strings.Join(parts, styles.Subtitle.Render(" • "))
}
