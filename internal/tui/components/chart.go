package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// WeekBars renders one horizontal bar per weekly goal, raised against target.
// Critical weeks are marked with an asterisk.
func WeekBars(goals []model.WeeklyGoal, width int) string {
	if len(goals) == 0 {
		return ""
	}
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	critStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	amountW := 0
	amounts := make([]string, len(goals))
	for i, g := range goals {
		amounts[i] = fmt.Sprintf("%s/%s", euroLabel(g.CurrentAmount), euroLabel(g.Target))
		amountW = max(amountW, len(amounts[i]))
	}

	barW := width - 6 - amountW - 1
	if barW < 5 {
		barW = 5
	}

	var b strings.Builder
	for i, g := range goals {
		pct := 0.0
		if g.Target > 0 {
			pct = clamp01(g.CurrentAmount / g.Target)
		}
		filled := int(pct * float64(barW))

		mark := labelStyle.Render(" ")
		if g.Critical {
			mark = critStyle.Render("*")
		}
		fillStyle := lipgloss.NewStyle().Foreground(t.Funding(pct)).Background(t.Surface)

		b.WriteString(labelStyle.Render(fmt.Sprintf("W%-3d", g.Week)))
		b.WriteString(mark)
		b.WriteString(labelStyle.Render(" "))
		b.WriteString(fillStyle.Render(strings.Repeat("█", filled)))
		b.WriteString(emptyStyle.Render(strings.Repeat("░", barW-filled)))
		b.WriteString(labelStyle.Render(" "))
		b.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, amounts[i])))
		if i < len(goals)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RevenueChart renders a vertical bar chart of values with a labelled Y axis.
func RevenueChart(values []float64, color lipgloss.Color, width, height int) string {
	if len(values) == 0 || height < 2 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step

	yLabelW := max(4, len(euroLabel(ceiling))+1)
	chartW := max(5, width-yLabelW-1)
	n := len(values)
	barW := max(1, min(4, (chartW-(n-1))/n))

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		if row == height {
			label = euroLabel(ceiling)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				idx = max(1, min(8, idx))
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", n*barW+n-1))))
	return b.String()
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func euroLabel(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("€%.1fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("€%.0fk", v/1e3)
	case v >= 1e3:
		return fmt.Sprintf("€%.1fk", v/1e3)
	default:
		return fmt.Sprintf("€%.0f", v)
	}
}
