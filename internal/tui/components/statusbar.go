package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar with the simulated clock.
func RenderStatusBar(width int, clock time.Time, step time.Duration, paused bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [space]pause  [+/-]speed  [s]tart  [q]uit"

	state := fmt.Sprintf("%s/tick", formatStep(step))
	if paused {
		state = "paused"
	}
	right := ""
	if !clock.IsZero() {
		right = fmt.Sprintf("%s  %s ", clock.Format("Mon 02 Jan 15:04"), state)
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}

func formatStep(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
	return fmt.Sprintf("%dh", int(d/time.Hour))
}
