package forecast

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newPlan(t testing.TB) *model.Plan {
	t.Helper()
	p, err := planner.Generate(planner.Request{
		TotalBudget:   8500,
		DepartureDate: t0.Add(90 * 24 * time.Hour),
		NumPeople:     25,
		Destination:   "Barcelona",
	}, t0)
	require.NoError(t, err)
	return p
}

func generous() simulator.Tuning {
	tun := simulator.DefaultTuning()
	tun.MinSuccessRate, tun.MaxSuccessRate = 0.95, 0.95
	tun.EffortBands = nil
	tun.OverflowMultiplier = 1.35
	return tun
}

func stingy() simulator.Tuning {
	tun := simulator.DefaultTuning()
	tun.MinSuccessRate, tun.MaxSuccessRate = 0.3, 0.3
	tun.EffortBands = nil
	tun.OverflowMultiplier = 0.8
	return tun
}

func TestRunFundsEveryGenerousRun(t *testing.T) {
	p := newPlan(t)
	var calls atomic.Int64
	res, err := Run(p, t0, Options{Runs: 12, Seed: 3, Tuning: generous(), Horizon: 30 * 24 * time.Hour, Workers: 4},
		func(current, total int) {
			calls.Add(1)
			assert.LessOrEqual(t, current, total)
		})
	require.NoError(t, err)

	assert.Equal(t, int64(12), calls.Load())
	require.Len(t, res.Outcomes, 12)
	assert.Equal(t, p.ID, res.PlanID)
	assert.Equal(t, 12, res.Summary.Funded)
	assert.InDelta(t, 1.0, res.Summary.FundedRate, 1e-9)
	assert.Positive(t, res.Summary.MeanDays)
	for i, o := range res.Outcomes {
		assert.Equal(t, int64(3+i), o.Seed)
		assert.True(t, o.Funded)
		assert.GreaterOrEqual(t, o.Progress, 100)
		assert.Equal(t, model.PlanCompleted, o.Status)
	}

	assert.Equal(t, model.PlanDraft, p.Status, "input plan is not mutated")
	assert.Zero(t, p.CurrentAmount)
}

func TestRunExhaustsStingyRuns(t *testing.T) {
	res, err := Run(newPlan(t), t0, Options{Runs: 5, Tuning: stingy(), Horizon: 90 * 24 * time.Hour}, nil)
	require.NoError(t, err)

	assert.Zero(t, res.Summary.Funded)
	assert.Equal(t, 5, res.Summary.Exhausted)
	assert.Zero(t, res.Summary.MeanDays)
	for _, o := range res.Outcomes {
		assert.Equal(t, model.PlanActive, o.Status)
		assert.Less(t, o.Progress, 100)
		assert.Zero(t, o.Successful)
	}
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	opts := Options{Runs: 6, Seed: 42, Tuning: simulator.DefaultTuning(), Horizon: 14 * 24 * time.Hour}
	a, err := Run(newPlan(t), t0, opts, nil)
	require.NoError(t, err)
	opts.Workers = 1
	b, err := Run(newPlan(t), t0, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Outcomes, b.Outcomes)
}

func TestRunRejectsBadInput(t *testing.T) {
	p := newPlan(t)
	_, err := Run(p, t0, Options{}, nil)
	assert.ErrorIs(t, err, ErrNoRuns)

	p.Status = model.PlanActive
	_, err = Run(p, t0, Options{Runs: 1}, nil)
	assert.ErrorContains(t, err, "only draft plans")
}

func TestAggregate(t *testing.T) {
	outcomes := []Outcome{
		{Raised: 100},
		{Raised: 400, Funded: true, Days: 30},
		{Raised: 200, Exhausted: true},
		{Raised: 300, Funded: true, Days: 50},
	}
	s := Aggregate(outcomes)
	assert.Equal(t, 4, s.Runs)
	assert.Equal(t, 2, s.Funded)
	assert.Equal(t, 1, s.Exhausted)
	assert.InDelta(t, 0.5, s.FundedRate, 1e-9)
	assert.InDelta(t, 250.0, s.MeanRaised, 1e-9)
	assert.Equal(t, 100.0, s.MinRaised)
	assert.Equal(t, 400.0, s.MaxRaised)
	assert.Equal(t, 100.0, s.P10Raised)
	assert.Equal(t, 200.0, s.P50Raised)
	assert.Equal(t, 400.0, s.P90Raised)
	assert.InDelta(t, 40.0, s.MeanDays, 1e-9)

	assert.Equal(t, Summary{}, Aggregate(nil))
}

func TestHistogram(t *testing.T) {
	outcomes := []Outcome{{Raised: 0}, {Raised: 260}, {Raised: 990}, {Raised: 1000}, {Raised: 1500}}
	assert.Equal(t, []float64{1, 1, 0, 3}, Histogram(outcomes, 1000, 4))
	assert.Nil(t, Histogram(outcomes, 0, 4))
}

func BenchmarkRun(b *testing.B) {
	p := newPlan(b)
	opts := Options{Runs: 64, Tuning: simulator.DefaultTuning(), Horizon: 30 * 24 * time.Hour}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(p, t0, opts, nil); err != nil {
			b.Fatal(err)
		}
	}
}
