package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/eventoo/internal/cli"

	"github.com/spf13/cobra"
)

var (
	plansJSON        bool
	plansEventsLimit int
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List saved plans",
	RunE:  runPlansList,
}

var plansShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansShow,
}

var plansEventsCmd = &cobra.Command{
	Use:   "events ID",
	Short: "Show the journaled events of a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansEvents,
}

var plansRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a saved plan and its events",
	Args:    cobra.ExactArgs(1),
	RunE:    runPlansRm,
}

func init() {
	plansCmd.PersistentFlags().BoolVar(&plansJSON, "json", false, "Print as JSON")
	plansEventsCmd.Flags().IntVarP(&plansEventsLimit, "limit", "l", 50, "Number of most recent events to show")

	plansCmd.AddCommand(plansShowCmd, plansEventsCmd, plansRmCmd)
	rootCmd.AddCommand(plansCmd)
}

func runPlansList(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rows, err := st.ListPlans()
	if err != nil {
		return err
	}
	if plansJSON {
		return printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Println("\n  No saved plans.")
		fmt.Println("  Create one with: eventoo generate --budget 8500 --in 90 --save")
		return nil
	}

	var raised, budget float64
	tableRows := make([][]string, 0, len(rows)+2)
	for _, r := range rows {
		raised += r.CurrentAmount
		budget += r.TotalBudget
		tableRows = append(tableRows, []string{
			r.ID,
			r.Destination,
			string(r.Status),
			cli.FormatEuros(r.TotalBudget),
			cli.FormatEuros(r.CurrentAmount),
			strconv.Itoa(r.Progress) + "%",
			strconv.Itoa(r.NumPeople),
			r.DepartureDate.Format("2006-01-02"),
		})
	}
	tableRows = append(tableRows, []string{"---"})
	tableRows = append(tableRows, []string{
		fmt.Sprintf("%d plans", len(rows)), "", "", cli.FormatEuros(budget), cli.FormatEuros(raised), "", "", "",
	})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Saved Plans",
		Headers: []string{"ID", "Destination", "Status", "Budget", "Raised", "Progress", "People", "Departure"},
		Rows:    tableRows,
	}))
	fmt.Println()
	return nil
}

func runPlansShow(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	p, err := st.LoadPlan(args[0])
	if err != nil {
		return err
	}
	if plansJSON {
		return printJSON(p)
	}
	fmt.Println()
	fmt.Print(cli.RenderPlan(p))
	fmt.Println()
	return nil
}

func runPlansEvents(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if _, err := st.LoadPlan(args[0]); err != nil {
		return err
	}
	events, err := st.LoadEvents(args[0], plansEventsLimit)
	if err != nil {
		return err
	}
	if plansJSON {
		return printJSON(events)
	}
	if len(events) == 0 {
		fmt.Println("\n  No events recorded for this plan.")
		return nil
	}
	fmt.Println()
	for _, ev := range events {
		fmt.Println("  " + cli.RenderEvent(ev))
	}
	fmt.Println()
	return nil
}

func runPlansRm(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.DeletePlan(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted plan %s\n", args[0])
	return nil
}
