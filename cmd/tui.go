package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/logger"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/store"
	"github.com/theirongolddev/eventoo/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	tuiPlanID string
	tuiSave   bool
	tuiStep   time.Duration
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Plan and watch a simulation interactively",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiPlanID, "id", "", "Simulate a saved draft plan instead of opening the form")
	tuiCmd.Flags().BoolVar(&tuiSave, "save", false, "Persist the plan and its events to the plan database")
	tuiCmd.Flags().DurationVar(&tuiStep, "step", 0, "Simulated time per tick (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alt screen.
	appLog = logger.Discard()

	opts := tui.Options{
		Simulator: newSimulator(),
		Step:      appConfig.Simulation.Step(),
		Defaults: tui.PlanValues{
			Budget:        "5000",
			DepartureDays: "60",
			People:        strconv.Itoa(appConfig.General.DefaultPeople),
			Destination:   appConfig.General.DefaultDestination,
		},
	}
	if tuiStep > 0 {
		opts.Step = tuiStep
	}

	if tuiSave || tuiPlanID != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if tuiSave {
			opts.Saver = st
		}
		if tuiPlanID != "" {
			p, err := st.LoadPlan(tuiPlanID)
			if err != nil {
				if errors.Is(err, store.ErrPlanNotFound) {
					return fmt.Errorf("no saved plan %q (see `eventoo plans`)", tuiPlanID)
				}
				return err
			}
			if p.Status != model.PlanDraft {
				return fmt.Errorf("plan %s is %s; only draft plans can be simulated", p.ID, p.Status)
			}
			opts.Plan = p
		}
	}

	app := tui.NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if a, ok := final.(tui.App); ok {
		if err := a.Err(); err != nil {
			return err
		}
		if exec := a.Execution(); exec != nil {
			fmt.Printf("  Plan %s: %s raised of %s\n",
				exec.Plan().ID, cli.FormatEuros(exec.Plan().CurrentAmount), cli.FormatEuros(exec.Plan().TotalBudget))
		}
	}
	return nil
}
