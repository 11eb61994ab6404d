package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"

	"github.com/spf13/cobra"
)

// planFlags are the plan parameters shared by generate and simulate.
type planFlags struct {
	budget      float64
	departure   string
	inDays      int
	people      int
	destination string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.budget, "budget", "b", 0, "Total trip budget in euros")
	cmd.Flags().StringVar(&f.departure, "departure", "", "Departure date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.inDays, "in", 0, "Departure in N days (alternative to --departure)")
	cmd.Flags().IntVarP(&f.people, "people", "p", 0, "Group size (default from config)")
	cmd.Flags().StringVarP(&f.destination, "destination", "d", "", "Destination (default from config)")
}

// request builds a planner request relative to now.
func (f *planFlags) request(now time.Time) (planner.Request, error) {
	req := planner.Request{
		TotalBudget: f.budget,
		NumPeople:   f.people,
		Destination: f.destination,
	}
	if req.NumPeople == 0 {
		req.NumPeople = appConfig.General.DefaultPeople
	}
	if req.Destination == "" {
		req.Destination = appConfig.General.DefaultDestination
	}

	switch {
	case f.departure != "":
		d, err := time.ParseInLocation("2006-01-02", f.departure, now.Location())
		if err != nil {
			return req, fmt.Errorf("invalid --departure %q: expected YYYY-MM-DD", f.departure)
		}
		req.DepartureDate = d
	case f.inDays > 0:
		req.DepartureDate = now.AddDate(0, 0, f.inDays)
	default:
		return req, fmt.Errorf("one of --departure or --in is required")
	}
	return req, nil
}

var (
	genFlags planFlags
	genSave  bool
	genJSON  bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a fundraising plan",
	Example: "  eventoo generate --budget 8500 --departure 2026-06-01 --people 25 --destination Barcelona",
	RunE:    runGenerate,
}

func init() {
	genFlags.register(generateCmd)
	generateCmd.Flags().BoolVar(&genSave, "save", false, "Save the plan to the plan database")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the plan as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	now := time.Now()
	req, err := genFlags.request(now)
	if err != nil {
		return err
	}
	plan, err := planner.Generate(req, now)
	if err != nil {
		return err
	}
	appLog.WithField("plan", plan.ID).WithField("challenges", len(plan.Challenges)).Debug("plan generated")

	if genSave {
		if err := savePlan(plan); err != nil {
			return err
		}
	}

	if genJSON {
		return printJSON(plan)
	}

	fmt.Println()
	fmt.Print(cli.RenderPlan(plan))
	if genSave {
		fmt.Printf("\n  Saved plan %s to %s\n", plan.ID, dbPath())
		fmt.Printf("  Simulate it with: eventoo simulate --id %s\n", plan.ID)
	}
	fmt.Println()
	return nil
}

func savePlan(p *model.Plan) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.SavePlan(p); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
