package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block progress bar with its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	barColor := t.Funding(pct)
	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// GoalBar renders a labelled goal bar with the time left until its deadline,
// measured against the simulated clock.
func GoalBar(label string, pct float64, deadline, now time.Time, labelW, barWidth int) string {
	t := theme.Active
	pct = clamp01(pct)

	color := t.Funding(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	countdownStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	countdown := ""
	if !deadline.IsZero() {
		if d := deadline.Sub(now); d > 0 {
			countdown = formatCountdown(d)
		} else {
			countdown = "due"
		}
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		countdownStyle.Render(countdown)
}

// CompactBar renders a status-bar-sized funding indicator.
func CompactBar(label string, pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)

	barW := width - lipgloss.Width(label) - 6
	if barW < 4 {
		barW = 4
	}

	color := t.Funding(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%2.0f%%", pct*100))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func formatCountdown(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		return fmt.Sprintf("%dd %dh", h/24, h%24)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
