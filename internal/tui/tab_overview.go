package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/tui/components"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	p := a.exec.Plan()
	sum := a.exec.Summary()
	var b strings.Builder

	remaining := p.DepartureDate.Sub(a.clock)
	metrics := []components.Metric{
		{Label: "Raised", Value: cli.FormatEuros(p.CurrentAmount), Delta: "of " + cli.FormatEuros(p.TotalBudget),
			Color: t.Funding(float64(p.Progress()) / 100)},
		{Label: "Progress", Value: fmt.Sprintf("%d%%", p.Progress()), Delta: fmt.Sprintf("%s plan", p.Difficulty)},
		{Label: "Challenges", Value: fmt.Sprintf("%d/%d", sum.Completed, sum.Total),
			Delta: fmt.Sprintf("%d successful", sum.Successful)},
		{Label: "Departure", Value: cli.FormatDays(remaining), Delta: p.DepartureDate.Format("2006-01-02")},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	// Left: current challenge and milestones
	var left strings.Builder
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	if c := a.exec.NextChallenge(); c != nil {
		left.WriteString(lipgloss.NewStyle().Foreground(t.ChallengeColor(*c)).Background(t.Surface).Bold(true).
			Render(fmt.Sprintf("#%d %s", c.ID, truncStr(c.Title, components.CardInnerWidth(halves[0])-6))))
		left.WriteString("\n")
		left.WriteString(muted.Render(fmt.Sprintf("%s · target %s · %s", c.Status, cli.FormatEuros(c.TargetAmount), c.Difficulty)))
		left.WriteString("\n")
		left.WriteString(components.GoalBar("deadline", progressTowards(windowStart(c), c.Deadline, a.clock),
			c.Deadline, a.clock, 9, max(10, components.CardInnerWidth(halves[0])-26)))
	} else {
		left.WriteString(muted.Render("No open challenges"))
	}
	left.WriteString("\n\n")
	for _, m := range p.Milestones {
		mark := muted.Render("○ ")
		if m.Unlocked {
			mark = lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("● ")
		}
		left.WriteString(mark)
		left.WriteString(value.Render(fmt.Sprintf("%3d%% %-18s", m.Percentage, m.Title)))
		left.WriteString(muted.Render(cli.FormatEuros(m.Amount)))
		left.WriteString("\n")
	}

	// Right: marketing and risk
	var right strings.Builder
	for _, camp := range a.exec.Campaigns() {
		right.WriteString(value.Render(fmt.Sprintf("%-22s", truncStr(camp.Name, 22))))
		right.WriteString(muted.Render(fmt.Sprintf(" %s · %s imp · %d conv · ROI %s",
			camp.Status,
			cli.FormatCompact(int64(camp.Metrics.Impressions)),
			camp.Metrics.Conversions,
			cli.FormatPercent(camp.Metrics.ROI))))
		right.WriteString("\n")
	}
	right.WriteString("\n")
	right.WriteString(muted.Render(fmt.Sprintf("Risk %s (score %d) · backup %s",
		p.Risk.Level, p.Risk.Score, cli.FormatEuros(p.Risk.Backup.TargetAmount))))

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Now", strings.TrimRight(left.String(), "\n"), halves[0]),
		components.ContentCard("Marketing & Risk", right.String(), halves[1]),
	}))

	if r := a.exec.Report(); r != nil {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Final Report", fmt.Sprintf(
			"Raised %s of %s in %d days · %d/%d challenges successful · %d milestones",
			cli.FormatEuros(r.TotalRaised), cli.FormatEuros(r.TotalBudget), r.DurationDays,
			r.Challenges.Successful, r.Challenges.Total, len(r.Milestones)), cw))
	}
	return b.String()
}

// progressTowards returns how much of the window from start to end has elapsed at now.
func progressTowards(start, end, now time.Time) float64 {
	if !end.After(start) {
		return 1
	}
	return float64(now.Sub(start)) / float64(end.Sub(start))
}

func windowStart(c *model.Challenge) time.Time {
	if !c.ReadyAt.IsZero() {
		return c.ReadyAt
	}
	return c.ScheduledAt
}
