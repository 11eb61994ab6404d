package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/tui/theme"
)

func samplePlan(t *testing.T) *model.Plan {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p, err := planner.Generate(planner.Request{
		TotalBudget:   8500,
		DepartureDate: now.AddDate(0, 0, 90),
		NumPeople:     25,
		Destination:   "Barcelona",
	}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return p
}

func TestRenderPlanIncludesSections(t *testing.T) {
	out := RenderPlan(samplePlan(t))
	for _, want := range []string{"Barcelona", "Weekly Goals", "Challenges", "Milestones", "Risk", "€8,500", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderPlan output missing %q", want)
		}
	}
}

func TestRenderEvent(t *testing.T) {
	ev := simulator.Event{
		Type:     simulator.EventChallengeCompleted,
		At:       time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC),
		Progress: 42,
		Success:  true,
		Message:  "Bake Sale completed",
	}
	out := RenderEvent(ev)
	if !strings.Contains(out, "challenge_completed") || !strings.Contains(out, "Bake Sale completed") {
		t.Fatalf("RenderEvent = %q", out)
	}
	if !strings.Contains(out, "42%") {
		t.Fatalf("RenderEvent = %q, want progress", out)
	}
}

func TestRenderReportNil(t *testing.T) {
	if got := RenderReport(nil); got != "" {
		t.Fatalf("RenderReport(nil) = %q, want empty", got)
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(&simulator.Report{
		Destination: "Paris",
		TotalBudget: 1000,
		TotalRaised: 1000,
		Progress:    100,
		Marketing:   &simulator.CampaignMetrics{Impressions: 2400, ROI: 0.5},
	})
	for _, want := range []string{"Final Report: Paris", "100%", "2.4K", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderReport output missing %q", want)
		}
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	if got := RenderProgressBar(10, 0, 10); got != "" {
		t.Fatalf("RenderProgressBar with zero total = %q, want empty", got)
	}
	out := RenderProgressBar(200, 100, 10)
	if !strings.Contains(out, strings.Repeat("█", 10)) {
		t.Fatalf("RenderProgressBar overflow = %q, want full bar", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 4, 8}); got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
}

func TestRenderTableRulesAlignWithCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Plan", "Raised"},
		Rows:    [][]string{{"Barcelona", "€654"}, {"---"}, {"Lisbon", "€12,400"}},
	})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("RenderTable produced %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if n := lipgloss.Width(l); n != width {
			t.Fatalf("line %d is %d cells wide, want %d:\n%s", i, n, width, out)
		}
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.HasPrefix(lines[4], "├") || !strings.HasPrefix(lines[6], "╰") {
		t.Fatalf("unexpected borders:\n%s", out)
	}
	if !strings.Contains(lines[3], "│    €654 │") {
		t.Fatalf("numeric column not right-aligned: %q", lines[3])
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("empty table should render nothing")
	}
}

func TestUseThemeRecolorsOutput(t *testing.T) {
	t.Cleanup(func() { UseTheme(theme.FlexokiDark) })

	UseTheme(theme.Sunset)
	if got := moneyStyle.GetForeground(); got != theme.Sunset.Green {
		t.Fatalf("money color = %v, want %v", got, theme.Sunset.Green)
	}
	if frameColor != theme.Sunset.Border {
		t.Fatalf("frame color = %v, want %v", frameColor, theme.Sunset.Border)
	}
	if got := riskStyle(model.RiskHigh).GetForeground(); got != theme.Sunset.Red {
		t.Fatalf("high risk color = %v, want %v", got, theme.Sunset.Red)
	}
}
