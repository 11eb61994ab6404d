package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/planner"

	"github.com/charmbracelet/huh"
)

// PlanValues holds the raw plan form inputs.
type PlanValues struct {
	Budget        string
	DepartureDays string
	People        string
	Destination   string
}

// Request converts the form inputs into a planner request departing
// DepartureDays after now.
func (v PlanValues) Request(now time.Time) (planner.Request, error) {
	budget, err := strconv.ParseFloat(strings.TrimSpace(v.Budget), 64)
	if err != nil {
		return planner.Request{}, errors.New("budget must be a number")
	}
	days, err := strconv.Atoi(strings.TrimSpace(v.DepartureDays))
	if err != nil {
		return planner.Request{}, errors.New("days until departure must be a whole number")
	}
	people, err := strconv.Atoi(strings.TrimSpace(v.People))
	if err != nil {
		return planner.Request{}, errors.New("group size must be a whole number")
	}
	return planner.Request{
		TotalBudget:   budget,
		DepartureDate: now.AddDate(0, 0, days),
		NumPeople:     people,
		Destination:   strings.TrimSpace(v.Destination),
	}, nil
}

func positiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return errors.New("enter an amount above zero")
	}
	return nil
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return errors.New("enter a whole number between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi))
		}
		return nil
	}
}

func newPlanForm(vals *PlanValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Plan a trip").
				Description("eventoo builds a week-by-week fundraising plan\nand simulates it against the clock."),

			huh.NewInput().
				Title("Total budget (EUR)").
				Placeholder("8500").
				Validate(positiveFloat).
				Value(&vals.Budget),

			huh.NewInput().
				Title("Days until departure").
				Placeholder("90").
				Validate(intInRange(1, 3650)).
				Value(&vals.DepartureDays),

			huh.NewInput().
				Title("Group size").
				Placeholder("25").
				Validate(intInRange(1, 10000)).
				Value(&vals.People),

			huh.NewInput().
				Title("Destination").
				Placeholder("Barcelona").
				CharLimit(64).
				Value(&vals.Destination),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}
