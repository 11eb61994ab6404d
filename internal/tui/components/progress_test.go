package components

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Minute, "30m"},
		{3*time.Hour + 5*time.Minute, "3h 5m"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.in); got != tt.want {
			t.Fatalf("formatCountdown(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGoalBarDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	out := GoalBar("Week 1", 0.5, now.Add(-time.Hour), now, 8, 20)
	if !strings.Contains(out, "due") || !strings.Contains(out, "50%") {
		t.Fatalf("GoalBar = %q", out)
	}
	out = GoalBar("Week 2", 1.5, now.Add(26*time.Hour), now, 8, 20)
	if !strings.Contains(out, "100%") || !strings.Contains(out, "1d 2h") {
		t.Fatalf("GoalBar = %q", out)
	}
}

func TestProgressBarPercent(t *testing.T) {
	if out := ProgressBar(0.25, 20); !strings.Contains(out, "25%") {
		t.Fatalf("ProgressBar = %q", out)
	}
}

func TestStatusBarShowsClock(t *testing.T) {
	clock := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	out := RenderStatusBar(120, clock, 6*time.Hour, false)
	if !strings.Contains(out, "Wed 04 Mar 18:00") || !strings.Contains(out, "6h/tick") {
		t.Fatalf("RenderStatusBar = %q", out)
	}
	if out := RenderStatusBar(120, clock, 24*time.Hour, true); !strings.Contains(out, "paused") {
		t.Fatalf("RenderStatusBar paused = %q", out)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('w'); got != 2 {
		t.Fatalf("TabIdxByKey('w') = %d, want 2", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}
