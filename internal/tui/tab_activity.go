package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/tui/components"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderActivityTab(cw, h int) string {
	t := theme.Active
	log := a.exec.Log()

	rows := max(1, h-3)
	if len(log) > rows {
		log = log[len(log)-rows:]
	}

	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	msgW := max(10, components.CardInnerWidth(cw)-41)

	var b strings.Builder
	// Newest first
	for i := len(log) - 1; i >= 0; i-- {
		ev := log[i]
		style := lipgloss.NewStyle().Foreground(eventColor(ev)).Background(t.Surface)
		b.WriteString(dim.Render(ev.At.Format("Jan 02 15:04") + fmt.Sprintf(" %3d%% ", ev.Progress)))
		b.WriteString(style.Render(fmt.Sprintf("%-20s", ev.Type)))
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(truncStr(ev.Message, msgW)))
		if i > 0 {
			b.WriteString("\n")
		}
	}
	if len(log) == 0 {
		b.WriteString(dim.Render("No activity yet"))
	}
	return components.ContentCard(fmt.Sprintf("Activity (last %d)", len(log)), b.String(), cw)
}

func eventColor(ev simulator.Event) lipgloss.Color {
	t := theme.Active
	switch ev.Type {
	case simulator.EventChallengeCompleted:
		if ev.Success {
			return t.Green
		}
		return t.Red
	case simulator.EventMilestoneUnlocked, simulator.EventPlanCompleted:
		return t.GreenBright
	case simulator.EventChallengeStarted:
		return t.AccentBright
	case simulator.EventChallengeReady:
		return t.Yellow
	case simulator.EventCampaignLaunched:
		return t.Magenta
	default:
		return t.TextMuted
	}
}
