// Package components provides reusable widgets for the eventoo dashboard.
package components

import (
	"strings"

	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Metric is one headline number on the overview.
type Metric struct {
	Label string
	Value string
	Delta string
	Color lipgloss.Color // optional value color
}

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// MetricCard renders a small metric card. outerWidth includes the border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	valueColor := t.TextPrimary
	if m.Color != "" {
		valueColor = m.Color
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Background(t.Surface).
		Width(contentWidth).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle.Render(content)
}

// MetricCardRow renders metric cards side by side, summing to totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, 0, len(metrics))
	for i, m := range metrics {
		rendered = append(rendered, MetricCard(m, widths[i]))
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Background(t.Surface).
		Width(contentWidth).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body
	return cardStyle.Render(content)
}

// CardRow joins cards horizontally, padding shorter cards with styled
// background lines so the row has no unstyled gaps.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	tallest := 0
	for _, c := range cards {
		if h := lipgloss.Height(c); h > tallest {
			tallest = h
		}
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	padded := make([]string, len(cards))
	for i, c := range cards {
		h := lipgloss.Height(c)
		if h >= tallest {
			padded[i] = c
			continue
		}
		blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
		padded[i] = c + strings.Repeat("\n"+blank, tallest-h)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}

// CardInnerWidth returns the usable text width inside a ContentCard.
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}
