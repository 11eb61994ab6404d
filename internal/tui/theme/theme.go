// Package theme defines color themes for the eventoo dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/eventoo/internal/model"
)

// Theme maps the dashboard's color roles to concrete colors.
type Theme struct {
	Name         string
	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color // running challenge
	Green        lipgloss.Color
	GreenBright  lipgloss.Color // fully funded
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Yellow       lipgloss.Color // ready challenge
	Magenta      lipgloss.Color
	Cyan         lipgloss.Color
}

// Active is the theme used for rendering.
var Active = FlexokiDark

// FlexokiDark is the default: warm ink on paper-dark.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   "#100F0F",
	Surface:      "#1C1B1A",
	SurfaceHover: "#282726",
	Border:       "#403E3C",
	BorderAccent: "#3AA99F",
	TextDim:      "#575653",
	TextMuted:    "#878580",
	TextPrimary:  "#FFFCF0",
	Accent:       "#3AA99F",
	AccentBright: "#5BC8BE",
	Green:        "#879A39",
	GreenBright:  "#A3B859",
	Orange:       "#DA702C",
	Red:          "#D14D41",
	Yellow:       "#D0A215",
	Magenta:      "#CE5D97",
	Cyan:         "#24837B",
}

// Sunset trades the teal accent for coral and sand, the colors of a group
// trip's last evening.
var Sunset = Theme{
	Name:         "sunset",
	Background:   "#1B1420",
	Surface:      "#271D2E",
	SurfaceHover: "#35283D",
	Border:       "#4A3A52",
	BorderAccent: "#FF7A5C",
	TextDim:      "#6B5A70",
	TextMuted:    "#B09BB0",
	TextPrimary:  "#FBEFE3",
	Accent:       "#FF7A5C",
	AccentBright: "#FFA38A",
	Green:        "#8FBF7A",
	GreenBright:  "#B5E29E",
	Orange:       "#F29E4C",
	Red:          "#E0556B",
	Yellow:       "#F2C66D",
	Magenta:      "#C77DBA",
	Cyan:         "#6CC3C9",
}

// Terminal sticks to the ANSI 16 colors.
var Terminal = Theme{
	Name:         "terminal",
	Background:   "0",
	Surface:      "0",
	SurfaceHover: "8",
	Border:       "8",
	BorderAccent: "6",
	TextDim:      "8",
	TextMuted:    "7",
	TextPrimary:  "15",
	Accent:       "6",
	AccentBright: "14",
	Green:        "2",
	GreenBright:  "10",
	Orange:       "3",
	Red:          "1",
	Yellow:       "3",
	Magenta:      "5",
	Cyan:         "6",
}

// All lists the selectable themes; the first is the default.
var All = []Theme{FlexokiDark, Sunset, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the available theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Funding picks a color for a funded share in [0,1]; fuller is greener.
func (t Theme) Funding(pct float64) lipgloss.Color {
	switch {
	case pct >= 1:
		return t.GreenBright
	case pct >= 0.75:
		return t.Green
	case pct >= 0.5:
		return t.Yellow
	case pct >= 0.25:
		return t.Orange
	default:
		return t.Red
	}
}

// ChallengeColor maps a challenge state to its display color.
func (t Theme) ChallengeColor(c model.Challenge) lipgloss.Color {
	switch c.Status {
	case model.ChallengeReady:
		return t.Yellow
	case model.ChallengeActive:
		return t.AccentBright
	case model.ChallengeCompleted:
		if c.Result != nil && c.Result.Success {
			return t.Green
		}
		return t.Red
	default:
		return t.TextDim
	}
}
