package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/eventoo/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	widths := LayoutRow(100, 3)
	if len(widths) != 3 {
		t.Fatalf("len = %d, want 3", len(widths))
	}
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum != 100 {
		t.Fatalf("sum = %d, want 100", sum)
	}
	if widths[0] != 34 || widths[2] != 33 {
		t.Fatalf("widths = %v, want remainder on first", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow(10, 0) should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Fatalf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestMetricCardRow(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Raised", Value: "€1,200"},
		{Label: "Progress", Value: "14%", Delta: "+3%"},
	}, 60)
	if !strings.Contains(row, "€1,200") || !strings.Contains(row, "+3%") {
		t.Fatalf("MetricCardRow missing content: %q", row)
	}
	if w := lipgloss.Width(strings.Split(row, "\n")[0]); w != 60 {
		t.Fatalf("row width = %d, want 60", w)
	}
}
