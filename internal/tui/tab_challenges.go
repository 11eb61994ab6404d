package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/tui/components"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderChallengesTab(cw, h int) string {
	t := theme.Active
	p := a.exec.Plan()

	listW := cw * 3 / 5
	if listW < 50 {
		listW = cw
	}
	detailW := cw - listW

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	inner := components.CardInnerWidth(listW)
	titleW := max(10, inner-38)

	var list strings.Builder
	list.WriteString(header.Render(fmt.Sprintf("%-4s %-*s %-6s %9s %-9s %9s", "#", titleW, "Challenge", "Level", "Target", "Status", "Revenue")))
	list.WriteString("\n")

	// Keep the cursor row in view.
	rows := max(1, h-4)
	offset := 0
	if a.cursor >= rows {
		offset = a.cursor - rows + 1
	}
	for i := offset; i < len(p.Challenges) && i < offset+rows; i++ {
		c := p.Challenges[i]
		style := lipgloss.NewStyle().Foreground(t.ChallengeColor(c)).Background(t.Surface)
		if i == a.cursor {
			style = style.Background(t.SurfaceHover).Bold(true)
		}
		revenue := "-"
		if c.Result != nil {
			revenue = cli.FormatEuros(c.Result.Revenue)
		}
		list.WriteString(style.Render(fmt.Sprintf("%-4d %-*s %-6s %9s %-9s %9s",
			c.ID, titleW, truncStr(c.Title, titleW), c.Difficulty,
			cli.FormatEuros(c.TargetAmount), c.Status, revenue)))
		list.WriteString("\n")
	}

	listCard := components.ContentCard("Challenges", strings.TrimRight(list.String(), "\n"), listW)
	if detailW < 30 || a.cursor >= len(p.Challenges) {
		return listCard
	}
	return components.CardRow([]string{
		listCard,
		components.ContentCard("Detail", a.challengeDetail(&p.Challenges[a.cursor], components.CardInnerWidth(detailW)), detailW),
	})
}

func (a App) challengeDetail(c *model.Challenge, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	title := lipgloss.NewStyle().Foreground(t.ChallengeColor(*c)).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(title.Render(truncStr(c.Title, w)))
	b.WriteString("\n")
	b.WriteString(label.Render(wrap(c.Description, w)))
	b.WriteString("\n\n")

	field := func(k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-11s", k)))
		b.WriteString(value.Render(v))
		b.WriteString("\n")
	}
	field("Week", fmt.Sprintf("%d", c.Week))
	field("Estimate", cli.FormatEuros(c.EstimatedRevenue))
	field("Deadline", cli.FormatDate(c.Deadline))
	field("Scheduled", cli.FormatDate(c.ScheduledAt))
	field("Ready", cli.FormatDate(c.ReadyAt))
	field("Started", cli.FormatDate(c.StartedAt))
	field("Completed", cli.FormatDate(c.CompletedAt))
	if c.Result != nil {
		outcome := "missed"
		if c.Result.Success {
			outcome = "success"
		}
		field("Result", fmt.Sprintf("%s (%d%%, %d people)", outcome, c.Result.Efficiency, c.Result.Participants))
	}
	if c.Forced {
		field("Note", "closed when the plan completed")
	}
	if len(c.Resources) > 0 {
		field("Needs", truncStr(strings.Join(c.Resources, ", "), max(5, w-11)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// wrap breaks s into lines no wider than w at word boundaries.
func wrap(s string, w int) string {
	if w <= 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(s) {
		if lineLen > 0 && lineLen+1+len(word) > w {
			b.WriteString("\n")
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
