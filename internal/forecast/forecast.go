// Package forecast runs one plan through many independently seeded
// simulations and summarizes how the outcomes spread.
package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

// Options controls a forecast.
type Options struct {
	Runs    int
	Seed    int64 // run i uses Seed+i
	Tuning  simulator.Tuning
	Horizon time.Duration // simulated time past departure before a run is cut off
	Workers int           // defaults to GOMAXPROCS
}

// Outcome is the end state of one simulated run.
type Outcome struct {
	Seed       int64            `json:"seed"`
	Raised     float64          `json:"raised"`
	Progress   int              `json:"progress"`
	Status     model.PlanStatus `json:"status"`
	Funded     bool             `json:"funded"`
	Exhausted  bool             `json:"exhausted"`
	Days       int              `json:"days,omitempty"` // time to funding
	Successful int              `json:"successful"`
	Completed  int              `json:"completed"`
}

// Result holds every run plus the aggregate view.
type Result struct {
	PlanID      string    `json:"plan_id"`
	Destination string    `json:"destination"`
	Budget      float64   `json:"budget"`
	Outcomes    []Outcome `json:"outcomes"`
	Summary     Summary   `json:"summary"`
}

// ProgressFunc is called as runs finish.
// current is the number of runs done so far, total is the run count.
type ProgressFunc func(current, total int)

// ErrNoRuns is returned when Options.Runs is not positive.
var ErrNoRuns = errors.New("forecast needs at least one run")

// Run simulates copies of the draft plan p from now on, each with its own
// seeded outcome source. p itself is left untouched.
// It uses a bounded worker pool; runs share nothing but the input snapshot.
func Run(p *model.Plan, now time.Time, opts Options, progressFn ProgressFunc) (*Result, error) {
	if opts.Runs <= 0 {
		return nil, ErrNoRuns
	}
	if p.Status != model.PlanDraft {
		return nil, fmt.Errorf("plan %s is %s; only draft plans can be forecast", p.ID, p.Status)
	}
	snapshot, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("snapshot plan: %w", err)
	}

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > opts.Runs {
		numWorkers = opts.Runs
	}

	stop := p.DepartureDate.Add(opts.Horizon)
	work := make(chan int, opts.Runs)
	outcomes := make([]Outcome, opts.Runs)
	errs := make([]error, opts.Runs)
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := 0; i < opts.Runs; i++ {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				seed := opts.Seed + int64(idx)
				outcomes[idx], errs[idx] = runOnce(snapshot, seed, opts.Tuning, now, stop)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), opts.Runs)
				}
			}
		}()
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Result{
		PlanID:      p.ID,
		Destination: p.Destination,
		Budget:      p.TotalBudget,
		Outcomes:    outcomes,
		Summary:     Aggregate(outcomes),
	}, nil
}

func runOnce(snapshot []byte, seed int64, tuning simulator.Tuning, now, stop time.Time) (Outcome, error) {
	var p model.Plan
	if err := json.Unmarshal(snapshot, &p); err != nil {
		return Outcome{}, fmt.Errorf("seed %d: restore plan: %w", seed, err)
	}

	sim := simulator.New(
		simulator.WithTuning(tuning),
		simulator.WithRand(simulator.NewRand(seed)),
	)
	exec, err := sim.Activate(&p, now)
	if err != nil {
		return Outcome{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	// Transitions are stamped with their own instants, so one jump to the
	// horizon lands in the same state as stepping there.
	sim.Tick(exec, stop)

	s := exec.Summary()
	out := Outcome{
		Seed:       seed,
		Raised:     p.CurrentAmount,
		Progress:   p.Progress(),
		Status:     p.Status,
		Funded:     p.Status == model.PlanCompleted,
		Exhausted:  exec.Exhausted(),
		Successful: s.Successful,
		Completed:  s.Completed,
	}
	if r := exec.Report(); r != nil {
		out.Days = r.DurationDays
	}
	return out, nil
}
