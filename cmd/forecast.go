package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/forecast"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/store"

	"github.com/spf13/cobra"
)

var (
	fcFlags   planFlags
	fcPlanID  string
	fcRuns    int
	fcMaxDays int
	fcWorkers int
	fcJSON    bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Estimate funding odds across many seeded simulations",
	Example: "  eventoo forecast --budget 8500 --in 90 --runs 500\n" +
		"  eventoo forecast --id 6f1c... --runs 200",
	RunE: runForecast,
}

func init() {
	fcFlags.register(forecastCmd)
	forecastCmd.Flags().StringVar(&fcPlanID, "id", "", "Forecast a saved draft plan")
	forecastCmd.Flags().IntVarP(&fcRuns, "runs", "n", 200, "Number of simulated runs")
	forecastCmd.Flags().IntVar(&fcMaxDays, "max-days", 30, "Days past departure before a run is cut off")
	forecastCmd.Flags().IntVar(&fcWorkers, "workers", 0, "Parallel workers (default GOMAXPROCS)")
	forecastCmd.Flags().BoolVar(&fcJSON, "json", false, "Print the forecast as JSON")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	now := time.Now()

	plan, err := forecastPlan(now)
	if err != nil {
		return err
	}

	progressFn := func(current, total int) {
		if flagQuiet || fcJSON {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Simulating [%d/%d]", current, total)
		}
	}

	start := time.Now()
	res, err := forecast.Run(plan, now, forecast.Options{
		Runs:    fcRuns,
		Seed:    appConfig.Simulation.Seed,
		Tuning:  appConfig.Simulation.Tuning(),
		Horizon: time.Duration(fcMaxDays) * 24 * time.Hour,
		Workers: fcWorkers,
	}, progressFn)
	if err != nil {
		return err
	}
	appLog.WithField("runs", fcRuns).WithField("elapsed", time.Since(start)).Debug("forecast finished")
	if !flagQuiet && !fcJSON {
		fmt.Fprintln(os.Stderr)
	}

	if fcJSON {
		return printJSON(res)
	}

	s := res.Summary
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Forecast: %s, %s", plan.Destination, cli.FormatEuros(plan.TotalBudget))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Outcomes",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Runs", cli.FormatNumber(int64(s.Runs))},
			{"Fully funded", fmt.Sprintf("%d (%s)", s.Funded, cli.FormatPercent(s.FundedRate))},
			{"Challenges exhausted", cli.FormatNumber(int64(s.Exhausted))},
			{"Mean days to funding", forecastDays(s)},
			{"---"},
			{"Raised (mean)", cli.FormatEuros(s.MeanRaised)},
			{"Raised (p10)", cli.FormatEuros(s.P10Raised)},
			{"Raised (median)", cli.FormatEuros(s.P50Raised)},
			{"Raised (p90)", cli.FormatEuros(s.P90Raised)},
			{"Raised (range)", cli.FormatEuros(s.MinRaised) + " to " + cli.FormatEuros(s.MaxRaised)},
		},
	}))
	fmt.Println()
	fmt.Printf("  Raised vs budget  0%% %s 100%%+\n", cli.RenderSparkline(forecast.Histogram(res.Outcomes, plan.TotalBudget, 20)))
	fmt.Println()
	bands := forecast.Histogram(res.Outcomes, plan.TotalBudget, 4)
	labels := []string{" 0-25%", "25-50%", "50-75%", "75%+  "}
	for i, n := range bands {
		fmt.Printf("%s %d\n", cli.RenderHorizontalBar(labels[i], n, float64(s.Runs), 40), int(n))
	}
	fmt.Println()
	return nil
}

func forecastDays(s forecast.Summary) string {
	if s.Funded == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", s.MeanDays)
}

// forecastPlan loads the draft plan named by --id, or generates one from the
// plan flags. Generated plans are never saved.
func forecastPlan(now time.Time) (*model.Plan, error) {
	if fcPlanID == "" {
		req, err := fcFlags.request(now)
		if err != nil {
			return nil, err
		}
		return planner.Generate(req, now)
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	p, err := st.LoadPlan(fcPlanID)
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return nil, fmt.Errorf("no saved plan %q (see `eventoo plans`)", fcPlanID)
		}
		return nil, err
	}
	return p, nil
}
