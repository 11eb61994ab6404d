package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/tui/components"
	"github.com/theirongolddev/eventoo/internal/tui/theme"
)

func (a App) renderWeeksTab(cw int) string {
	t := theme.Active
	p := a.exec.Plan()
	inner := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Weekly Goals (%s per week, * critical)", cli.FormatEuros(firstTarget(a))),
		components.WeekBars(p.WeeklyGoals, inner),
		cw,
	))
	b.WriteString("\n")

	raised := make([]float64, len(p.WeeklyGoals))
	for i, g := range p.WeeklyGoals {
		raised[i] = g.CurrentAmount
	}
	b.WriteString(components.ContentCard("Raised per Week",
		components.RevenueChart(raised, t.Green, inner, 6), cw))
	return b.String()
}

func firstTarget(a App) float64 {
	goals := a.exec.Plan().WeeklyGoals
	if len(goals) == 0 {
		return 0
	}
	return goals[0].Target
}
