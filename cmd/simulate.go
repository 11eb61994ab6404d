package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/store"

	"github.com/spf13/cobra"
)

var (
	simFlags   planFlags
	simPlanID  string
	simStep    time.Duration
	simMaxDays int
	simSave    bool
	simJSON    bool
	simEvents  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a plan on a virtual clock",
	Long: "Simulate a saved plan (--id) or a freshly generated one until it completes,\n" +
		"runs out of challenges or reaches --max-days past its departure.",
	Example: "  eventoo simulate --budget 8500 --in 90 --people 25 --destination Barcelona --step 6h\n" +
		"  eventoo simulate --id 3f2c... --save",
	RunE: runSimulate,
}

func init() {
	simFlags.register(simulateCmd)
	simulateCmd.Flags().StringVar(&simPlanID, "id", "", "Simulate a saved draft plan")
	simulateCmd.Flags().DurationVar(&simStep, "step", 0, "Simulated time per tick (default from config)")
	simulateCmd.Flags().IntVar(&simMaxDays, "max-days", 30, "Keep ticking this many days past departure")
	simulateCmd.Flags().BoolVar(&simSave, "save", false, "Save the plan and its events to the plan database")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print the final report as JSON")
	simulateCmd.Flags().BoolVar(&simEvents, "events", true, "Print events as they happen")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(_ *cobra.Command, _ []string) error {
	now := time.Now()

	var st *store.Store
	if simSave || simPlanID != "" {
		var err error
		if st, err = openStore(); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
	}

	plan, err := loadOrGenerate(st, now)
	if err != nil {
		return err
	}

	step := simStep
	if step <= 0 {
		step = appConfig.Simulation.Step()
	}

	sim := newSimulator()
	exec, err := sim.Activate(plan, now)
	if err != nil {
		return err
	}
	activated := exec.Log()
	printEvents(activated)
	if st != nil {
		// Events reference the plan row, so it must exist first.
		if err := st.SavePlan(plan); err != nil {
			return fmt.Errorf("saving plan: %w", err)
		}
		if err := st.AppendEvents(activated); err != nil {
			return fmt.Errorf("saving events: %w", err)
		}
	}

	stop := plan.DepartureDate.AddDate(0, 0, simMaxDays)
	ticks := 0
	for clock := now; !exec.Done() && clock.Before(stop); {
		clock = clock.Add(step)
		events := sim.Tick(exec, clock)
		ticks++
		printEvents(events)
		if st != nil && len(events) > 0 {
			if err := st.AppendEvents(events); err != nil {
				return fmt.Errorf("saving events: %w", err)
			}
		}
	}
	appLog.WithField("plan", plan.ID).WithField("ticks", ticks).Debug("simulation finished")

	if st != nil {
		if err := st.SavePlan(plan); err != nil {
			return fmt.Errorf("saving plan: %w", err)
		}
		if !flagQuiet && !simJSON {
			fmt.Printf("\n  Saved plan %s and its events to %s\n", plan.ID, dbPath())
		}
	}

	if simJSON {
		if r := exec.Report(); r != nil {
			return printJSON(r)
		}
		return printJSON(exec.Summary())
	}

	fmt.Println()
	fmt.Print(cli.RenderPlanHeader(plan))
	fmt.Println()
	fmt.Print(cli.RenderChallenges(plan))
	fmt.Println()
	if r := exec.Report(); r != nil {
		fmt.Print(cli.RenderReport(r))
	} else if exec.Exhausted() {
		fmt.Printf("  Every challenge finished with %s of %s raised.\n", cli.FormatEuros(plan.CurrentAmount), cli.FormatEuros(plan.TotalBudget))
		fmt.Printf("  Backup plan: raise %s via %s\n", cli.FormatEuros(plan.Risk.Backup.TargetAmount), plan.Risk.Backup.Timeline)
	} else {
		fmt.Printf("  Stopped after %d ticks with the plan still running.\n", ticks)
	}
	fmt.Println()
	return nil
}

func loadOrGenerate(st *store.Store, now time.Time) (*model.Plan, error) {
	if simPlanID != "" {
		p, err := st.LoadPlan(simPlanID)
		if err != nil {
			if errors.Is(err, store.ErrPlanNotFound) {
				return nil, fmt.Errorf("no saved plan %q (see `eventoo plans`)", simPlanID)
			}
			return nil, err
		}
		if p.Status != model.PlanDraft {
			return nil, fmt.Errorf("plan %s is %s; only draft plans can be simulated", p.ID, p.Status)
		}
		return p, nil
	}

	req, err := simFlags.request(now)
	if err != nil {
		return nil, err
	}
	return planner.Generate(req, now)
}

func printEvents(events []simulator.Event) {
	if !simEvents || flagQuiet || simJSON {
		return
	}
	for _, ev := range events {
		fmt.Fprintln(os.Stdout, "  "+cli.RenderEvent(ev))
	}
}
