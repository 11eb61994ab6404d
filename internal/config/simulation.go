package config

import (
	"sort"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

// SimulationConfig holds the simulation clock settings and optional
// overrides of the outcome model. Unset overrides keep the built-in values.
type SimulationConfig struct {
	Seed      int64 `toml:"seed"`
	StepHours int   `toml:"step_hours"`

	AutoStartHours        *float64           `toml:"auto_start_hours,omitempty"`
	CampaignIntervalHours *float64           `toml:"campaign_interval_hours,omitempty"`
	SuccessThreshold      *float64           `toml:"success_threshold,omitempty"`
	MomentumBonus         *float64           `toml:"momentum_bonus,omitempty"`
	MinSuccessRate        *float64           `toml:"min_success_rate,omitempty"`
	MaxSuccessRate        *float64           `toml:"max_success_rate,omitempty"`
	EngagementRate        *float64           `toml:"engagement_rate,omitempty"`
	OverflowMultiplier    *float64           `toml:"overflow_multiplier,omitempty"`
	SuccessRates          map[string]float64 `toml:"success_rates,omitempty"`

	EffortBands []simulator.EffortBand `toml:"effort_bands,omitempty"`
}

// Step returns the simulated time advanced per CLI tick.
func (s SimulationConfig) Step() time.Duration {
	if s.StepHours <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(s.StepHours) * time.Hour
}

// Tuning returns the default outcome model with the configured overrides applied.
func (s SimulationConfig) Tuning() simulator.Tuning {
	t := simulator.DefaultTuning()

	if s.AutoStartHours != nil {
		t.AutoStartAfter = hours(*s.AutoStartHours)
	}
	if s.CampaignIntervalHours != nil {
		t.CampaignInterval = hours(*s.CampaignIntervalHours)
	}
	if s.SuccessThreshold != nil {
		t.SuccessThreshold = *s.SuccessThreshold
	}
	if s.MomentumBonus != nil {
		t.MomentumBonus = *s.MomentumBonus
	}
	if s.MinSuccessRate != nil {
		t.MinSuccessRate = *s.MinSuccessRate
	}
	if s.MaxSuccessRate != nil {
		t.MaxSuccessRate = *s.MaxSuccessRate
	}
	if s.EngagementRate != nil {
		t.EngagementRate = *s.EngagementRate
	}
	if s.OverflowMultiplier != nil {
		t.OverflowMultiplier = *s.OverflowMultiplier
	}
	for name, rate := range s.SuccessRates {
		if d := model.Difficulty(name); d.Valid() {
			t.SuccessRates[d] = rate
		}
	}
	if len(s.EffortBands) > 0 {
		t.EffortBands = append([]simulator.EffortBand(nil), s.EffortBands...)
		// EffortMultiplier walks the bands in order.
		sort.Slice(t.EffortBands, func(i, j int) bool {
			return t.EffortBands[i].MaxParticipants < t.EffortBands[j].MaxParticipants
		})
	}
	return t
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
