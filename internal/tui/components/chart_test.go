package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/tui/theme"
)

func TestWeekBars(t *testing.T) {
	goals := []model.WeeklyGoal{
		{Week: 1, Target: 654, CurrentAmount: 654},
		{Week: 2, Target: 654, CurrentAmount: 0, Critical: true},
	}
	out := WeekBars(goals, 50)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("WeekBars lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "€654/€654") {
		t.Fatalf("line 0 = %q, want amounts", lines[0])
	}
	if !strings.Contains(lines[1], "*") {
		t.Fatalf("critical week not marked: %q", lines[1])
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(lines[1]) {
		t.Fatalf("week bars not aligned: %d vs %d", lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	}
}

func TestRevenueChartHeight(t *testing.T) {
	out := RevenueChart([]float64{100, 250, 0, 400}, theme.Active.Green, 40, 6)
	if got := len(strings.Split(out, "\n")); got != 7 {
		t.Fatalf("RevenueChart lines = %d, want 7", got)
	}
	if RevenueChart(nil, theme.Active.Green, 40, 6) != "" {
		t.Fatal("empty series should render nothing")
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{500, 100},
		{1000, 200},
		{2000, 500},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.in); got != tt.want {
			t.Fatalf("chartTickStep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEuroLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{800, "€800"},
		{8500, "€8.5k"},
		{25000, "€25k"},
		{1500000, "€1.5M"},
	}
	for _, tt := range tests {
		if got := euroLabel(tt.in); got != tt.want {
			t.Fatalf("euroLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
