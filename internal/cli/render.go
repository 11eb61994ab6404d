package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/eventoo/internal/tui/theme"
)

var (
	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	valueStyle  lipgloss.Style
	mutedStyle  lipgloss.Style
	moneyStyle  lipgloss.Style
	goodStyle   lipgloss.Style
	badStyle    lipgloss.Style
	warnStyle   lipgloss.Style
	dimStyle    lipgloss.Style
	frameColor  lipgloss.Color
)

func init() {
	UseTheme(theme.FlexokiDark)
}

// UseTheme recolors all CLI output with the roles of t.
func UseTheme(t theme.Theme) {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	titleStyle = fg(t.TextPrimary).Bold(true).Align(lipgloss.Center)
	headerStyle = fg(t.Accent).Bold(true)
	valueStyle = fg(t.TextPrimary)
	mutedStyle = fg(t.TextMuted)
	moneyStyle = fg(t.Green)
	goodStyle = fg(t.Green).Bold(true)
	badStyle = fg(t.Red)
	warnStyle = fg(t.Orange)
	dimStyle = fg(t.TextDim)
	frameColor = t.Border
}

// Table is a bordered text table. Widths are derived from the content
// when nil. A row holding the single cell "---" draws a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int
}

// RenderTitle boxes a centered title.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable renders t with box-drawing borders. Every column after the
// first is right-aligned.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}
	widths := columnWidths(t, cols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(widths, t.Headers, func(int) lipgloss.Style { return headerStyle }, false))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(line(widths, row, func(int) lipgloss.Style { return valueStyle }, true))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, cols int) []int {
	widths := make([]int, cols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, c := range cells {
			if i < cols {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	grow(t.Headers)
	for _, row := range t.Rows {
		grow(row)
	}
	return widths
}

// rule draws a horizontal border from its corner and junction runes.
func rule(widths []int, left, mid, right string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
}

func line(widths []int, cells []string, style func(int) lipgloss.Style, alignRight bool) string {
	sep := dimStyle.Render("│")
	var b strings.Builder
	b.WriteString(sep)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		format := " %-*s "
		if alignRight && i > 0 {
			format = " %*s "
		}
		b.WriteString(style(i).Render(fmt.Sprintf(format, w, cell)))
		b.WriteString(sep)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderProgressBar renders raised against budget as a block bar.
func RenderProgressBar(current, total float64, width int) string {
	if total <= 0 {
		return ""
	}
	filled := int(clamp01(current/total) * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		moneyStyle.Render(FormatEuros(current)),
		FormatEuros(total),
	)
}

// RenderSparkline draws values as unicode blocks scaled to the largest.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")

	top := 0.0
	for _, v := range values {
		top = max(top, v)
	}
	if top == 0 {
		top = 1
	}

	var b strings.Builder
	for _, v := range values {
		b.WriteRune(blocks[int(clamp01(v/top)*float64(len(blocks)-1))])
	}
	return b.String()
}

// RenderHorizontalBar renders a labelled bar of value out of maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	n := int(clamp01(value/maxValue) * float64(maxWidth))
	return fmt.Sprintf("  %s %s", label, strings.Repeat("█", n))
}

func clamp01(f float64) float64 {
	return max(0, min(f, 1))
}
