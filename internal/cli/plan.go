package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

// RenderPlanHeader renders the one-screen overview of a plan.
func RenderPlanHeader(p *model.Plan) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%s  %s", p.Destination, mutedStyle.Render(shortID(p.ID)))))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Budget", FormatEuros(p.TotalBudget)},
		{"Raised", FormatEuros(p.CurrentAmount)},
		{"Departure", p.DepartureDate.Format("2006-01-02")},
		{"Timeframe", fmt.Sprintf("%d days / %d weeks", p.TimeFrameDays, p.Weeks())},
		{"Group", strconv.Itoa(p.NumPeople) + " people"},
		{"Difficulty", fmt.Sprintf("%s (%.2f)", p.Difficulty, p.DifficultyScore)},
		{"Risk", fmt.Sprintf("%s (score %d)", p.Risk.Level, p.Risk.Score)},
		{"Status", string(p.Status)},
	}
	b.WriteString(RenderTable(Table{Headers: []string{"Plan", "Value"}, Rows: rows}))
	b.WriteString("  ")
	b.WriteString(RenderProgressBar(p.CurrentAmount, p.TotalBudget, 30))
	b.WriteString("\n")
	return b.String()
}

// RenderWeeklyGoals renders the weekly goal table with a revenue sparkline.
func RenderWeeklyGoals(p *model.Plan) string {
	rows := make([][]string, 0, len(p.WeeklyGoals))
	raised := make([]float64, 0, len(p.WeeklyGoals))
	for _, g := range p.WeeklyGoals {
		week := strconv.Itoa(g.Week)
		if g.Critical {
			week += " *"
		}
		rows = append(rows, []string{
			week,
			FormatEuros(g.Target),
			FormatEuros(g.CumulativeTarget),
			FormatEuros(g.CurrentAmount),
			string(g.Status),
		})
		raised = append(raised, g.CurrentAmount)
	}

	var b strings.Builder
	b.WriteString(RenderTable(Table{
		Title:   "Weekly Goals",
		Headers: []string{"Week", "Target", "Cumulative", "Raised", "Status"},
		Rows:    rows,
	}))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render("raised/week "))
	b.WriteString(RenderSparkline(raised))
	b.WriteString("\n")
	return b.String()
}

// RenderChallenges renders the challenge schedule.
func RenderChallenges(p *model.Plan) string {
	rows := make([][]string, 0, len(p.Challenges)+2)
	var target, raised float64
	for _, c := range p.Challenges {
		result := "-"
		if c.Result != nil {
			mark := badStyle.Render("x")
			if c.Result.Success {
				mark = goodStyle.Render("ok")
			}
			result = fmt.Sprintf("%s %s", FormatEuros(c.Result.Revenue), mark)
			raised += c.Result.Revenue
		}
		target += c.TargetAmount
		rows = append(rows, []string{
			fmt.Sprintf("#%d %s", c.ID, c.Title),
			strconv.Itoa(c.Week),
			string(c.Difficulty),
			FormatEuros(c.TargetAmount),
			c.Deadline.Format("2006-01-02"),
			string(c.Status),
			result,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", "", FormatEuros(target), "", "", FormatEuros(raised)})

	return RenderTable(Table{
		Title:   "Challenges",
		Headers: []string{"Challenge", "Week", "Level", "Target", "Deadline", "Status", "Result"},
		Rows:    rows,
	})
}

// RenderMilestones renders milestone thresholds and their unlock state.
func RenderMilestones(p *model.Plan) string {
	rows := make([][]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		state := mutedStyle.Render("locked")
		if m.Unlocked {
			state = goodStyle.Render("unlocked " + m.UnlockedAt.Format("01-02"))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d%% %s", m.Percentage, m.Title),
			FormatEuros(m.Amount),
			m.Reward,
			state,
		})
	}
	return RenderTable(Table{
		Title:   "Milestones",
		Headers: []string{"Milestone", "Amount", "Reward", "State"},
		Rows:    rows,
	})
}

// RenderRisk renders the risk assessment and backup plan.
func RenderRisk(p *model.Plan) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Risk"))
	b.WriteString("\n")
	f := p.Risk.Factors
	fmt.Fprintf(&b, "  %s %s   time pressure %s, budget %s, group %s\n",
		riskStyle(p.Risk.Level).Render(strings.ToUpper(string(p.Risk.Level))),
		mutedStyle.Render(fmt.Sprintf("(score %d)", p.Risk.Score)),
		f.TimePressure, f.BudgetComplexity, f.GroupSize)
	for _, m := range p.Risk.Mitigation {
		fmt.Fprintf(&b, "    - %s\n", m)
	}
	fmt.Fprintf(&b, "  %s %s, %s\n",
		mutedStyle.Render("Backup:"),
		FormatEuros(p.Risk.Backup.TargetAmount),
		p.Risk.Backup.Timeline)
	return b.String()
}

// RenderRecommendations renders the advice attached to a plan.
func RenderRecommendations(p *model.Plan) string {
	if len(p.Recommendations) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Recommendations"))
	b.WriteString("\n")
	for _, r := range p.Recommendations {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", r.Priority, r.Title, mutedStyle.Render(r.Description))
	}
	return b.String()
}

// RenderPlan renders every section of a plan.
func RenderPlan(p *model.Plan) string {
	sections := []string{
		RenderPlanHeader(p),
		RenderWeeklyGoals(p),
		RenderChallenges(p),
		RenderMilestones(p),
		RenderRisk(p),
		RenderRecommendations(p),
	}
	return strings.Join(sections, "\n")
}

// RenderEvent renders one simulator event as a log line.
func RenderEvent(ev simulator.Event) string {
	style := valueStyle
	switch ev.Type {
	case simulator.EventChallengeCompleted:
		style = badStyle
		if ev.Success {
			style = goodStyle
		}
	case simulator.EventMilestoneUnlocked, simulator.EventPlanCompleted:
		style = moneyStyle
	case simulator.EventCampaignLaunched:
		style = mutedStyle
	}
	return fmt.Sprintf("%s %s %s %s",
		dimStyle.Render(FormatDate(ev.At)),
		mutedStyle.Render(fmt.Sprintf("%3d%%", ev.Progress)),
		style.Render(fmt.Sprintf("%-19s", ev.Type)),
		ev.Message)
}

// RenderReport renders the closing report of a completed plan.
func RenderReport(r *simulator.Report) string {
	if r == nil {
		return ""
	}
	rows := [][]string{
		{"Raised", fmt.Sprintf("%s of %s", FormatEuros(r.TotalRaised), FormatEuros(r.TotalBudget))},
		{"Progress", fmt.Sprintf("%d%%", r.Progress)},
		{"Duration", fmt.Sprintf("%d days", r.DurationDays)},
		{"Challenges", fmt.Sprintf("%d/%d completed, %d successful, %d forced",
			r.Challenges.Completed, r.Challenges.Total, r.Challenges.Successful, r.Challenges.Forced)},
		{"Milestones", fmt.Sprintf("%d unlocked", len(r.Milestones))},
	}
	if r.Marketing != nil {
		rows = append(rows, []string{"---"})
		rows = append(rows,
			[]string{"Impressions", FormatCompact(int64(r.Marketing.Impressions))},
			[]string{"Clicks", FormatNumber(int64(r.Marketing.Clicks))},
			[]string{"Conversions", FormatNumber(int64(r.Marketing.Conversions))},
			[]string{"ROI", FormatPercent(r.Marketing.ROI)},
		)
	}
	return RenderTable(Table{
		Title:   "Final Report: " + r.Destination,
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	})
}

func riskStyle(level model.RiskLevel) lipgloss.Style {
	switch level {
	case model.RiskHigh:
		return badStyle
	case model.RiskMedium:
		return warnStyle
	default:
		return goodStyle
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
