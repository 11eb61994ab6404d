package forecast

import (
	"math"
	"sort"
)

// Summary is the spread of outcomes across runs.
type Summary struct {
	Runs       int     `json:"runs"`
	Funded     int     `json:"funded"`
	Exhausted  int     `json:"exhausted"`
	FundedRate float64 `json:"funded_rate"` // 0-1
	MeanRaised float64 `json:"mean_raised"`
	P10Raised  float64 `json:"p10_raised"`
	P50Raised  float64 `json:"p50_raised"`
	P90Raised  float64 `json:"p90_raised"`
	MinRaised  float64 `json:"min_raised"`
	MaxRaised  float64 `json:"max_raised"`
	MeanDays   float64 `json:"mean_days"` // over funded runs only
}

// Aggregate computes summary statistics from a slice of outcomes.
func Aggregate(outcomes []Outcome) Summary {
	s := Summary{Runs: len(outcomes)}
	if len(outcomes) == 0 {
		return s
	}

	raised := make([]float64, 0, len(outcomes))
	var total float64
	var days int
	for _, o := range outcomes {
		raised = append(raised, o.Raised)
		total += o.Raised
		if o.Funded {
			s.Funded++
			days += o.Days
		}
		if o.Exhausted {
			s.Exhausted++
		}
	}
	sort.Float64s(raised)

	s.FundedRate = float64(s.Funded) / float64(s.Runs)
	s.MeanRaised = total / float64(s.Runs)
	s.MinRaised = raised[0]
	s.MaxRaised = raised[len(raised)-1]
	s.P10Raised = percentile(raised, 10)
	s.P50Raised = percentile(raised, 50)
	s.P90Raised = percentile(raised, 90)
	if s.Funded > 0 {
		s.MeanDays = float64(days) / float64(s.Funded)
	}
	return s
}

// Histogram buckets raised amounts into n equal slices of [0, budget],
// with everything at or above budget in the last bucket.
func Histogram(outcomes []Outcome, budget float64, n int) []float64 {
	if n <= 0 || budget <= 0 {
		return nil
	}
	buckets := make([]float64, n)
	for _, o := range outcomes {
		idx := int(o.Raised / budget * float64(n))
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx]++
	}
	return buckets
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
