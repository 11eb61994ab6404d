package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/theirongolddev/eventoo/internal/config"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the setup wizard inputs.
type SetupValues struct {
	Destination  string
	People       string
	Theme        string
	RedisEnabled bool
	RedisURL     string
	LogLevel     string
}

// NewSetupValues seeds the wizard from an existing config.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Destination:  cfg.General.DefaultDestination,
		People:       strconv.Itoa(cfg.General.DefaultPeople),
		Theme:        cfg.Appearance.Theme,
		RedisEnabled: cfg.Redis.Enabled,
		RedisURL:     cfg.Redis.URL,
		LogLevel:     cfg.Log.Level,
	}
}

// Apply writes the wizard answers back into cfg.
func (v *SetupValues) Apply(cfg *config.Config) {
	cfg.General.DefaultDestination = strings.TrimSpace(v.Destination)
	if n, err := strconv.Atoi(strings.TrimSpace(v.People)); err == nil && n > 0 {
		cfg.General.DefaultPeople = n
	}
	cfg.Appearance.Theme = v.Theme
	cfg.Redis.Enabled = v.RedisEnabled
	if u := strings.TrimSpace(v.RedisURL); u != "" {
		cfg.Redis.URL = u
	}
	if v.LogLevel != "" {
		cfg.Log.Level = v.LogLevel
	}
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to eventoo").
				Description("Defaults for new plans. Run `eventoo setup` anytime to change them."),
			huh.NewInput().
				Title("Default destination").
				Placeholder("Generic").
				CharLimit(64).
				Value(&vals.Destination),
			huh.NewInput().
				Title("Default group size").
				Validate(intInRange(1, 10000)).
				Value(&vals.People),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&vals.LogLevel),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Publish events to Redis?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.RedisEnabled),
			huh.NewInput().
				Title("Redis URL").
				Validate(func(s string) error {
					if vals.RedisEnabled && !strings.HasPrefix(strings.TrimSpace(s), "redis") {
						return errors.New("expected redis:// or rediss:// URL")
					}
					return nil
				}).
				Value(&vals.RedisURL),
		),
	)
}
