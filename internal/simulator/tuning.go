package simulator

import (
	"math"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
)

// EffortBand maps turnout up to MaxParticipants to a revenue multiplier.
type EffortBand struct {
	MaxParticipants int     `toml:"max_participants" json:"max_participants"`
	Multiplier      float64 `toml:"multiplier" json:"multiplier"`
}

// Tuning holds the constants of the outcome model.
type Tuning struct {
	SuccessRates   map[model.Difficulty]float64 `toml:"success_rates" json:"success_rates"`
	MomentumBonus  float64                      `toml:"momentum_bonus" json:"momentum_bonus"`
	HighProgress   int                          `toml:"high_progress" json:"high_progress"`
	LowProgress    int                          `toml:"low_progress" json:"low_progress"`
	MinSuccessRate float64                      `toml:"min_success_rate" json:"min_success_rate"`
	MaxSuccessRate float64                      `toml:"max_success_rate" json:"max_success_rate"`

	// EffortBands must be sorted by MaxParticipants.
	EffortBands        []EffortBand `toml:"effort_bands" json:"effort_bands"`
	OverflowMultiplier float64      `toml:"overflow_multiplier" json:"overflow_multiplier"`
	SuccessThreshold   float64      `toml:"success_threshold" json:"success_threshold"`

	AutoStartAfter time.Duration `toml:"-" json:"auto_start_after"`
	EngagementRate float64       `toml:"engagement_rate" json:"engagement_rate"`
	MinSignups     int           `toml:"min_signups" json:"min_signups"`
	MaxSignups     int           `toml:"max_signups" json:"max_signups"`
	MinJitterDays  int           `toml:"min_jitter_days" json:"min_jitter_days"`
	MaxJitterDays  int           `toml:"max_jitter_days" json:"max_jitter_days"`

	CampaignShare           float64       `toml:"campaign_share" json:"campaign_share"`
	MilestoneCampaignShare  float64       `toml:"milestone_campaign_share" json:"milestone_campaign_share"`
	CompletionCampaignShare float64       `toml:"completion_campaign_share" json:"completion_campaign_share"`
	CampaignInterval        time.Duration `toml:"-" json:"campaign_interval"`
	RevenuePerConversion    float64       `toml:"revenue_per_conversion" json:"revenue_per_conversion"`
}

// DefaultTuning returns the stock outcome model.
func DefaultTuning() Tuning {
	return Tuning{
		SuccessRates: map[model.Difficulty]float64{
			model.DifficultyEasy:   0.9,
			model.DifficultyMedium: 0.75,
			model.DifficultyHard:   0.6,
			model.DifficultyExpert: 0.45,
		},
		MomentumBonus:  0.1,
		HighProgress:   75,
		LowProgress:    25,
		MinSuccessRate: 0.3,
		MaxSuccessRate: 0.95,
		EffortBands: []EffortBand{
			{MaxParticipants: 5, Multiplier: 0.8},
			{MaxParticipants: 10, Multiplier: 1.0},
			{MaxParticipants: 20, Multiplier: 1.2},
			{MaxParticipants: 30, Multiplier: 1.3},
		},
		OverflowMultiplier:      1.35,
		SuccessThreshold:        0.8,
		AutoStartAfter:          24 * time.Hour,
		EngagementRate:          0.7,
		MinSignups:              5,
		MaxSignups:              20,
		MinJitterDays:           1,
		MaxJitterDays:           3,
		CampaignShare:           0.05,
		MilestoneCampaignShare:  0.2,
		CompletionCampaignShare: 0.5,
		CampaignInterval:        2 * time.Hour,
		RevenuePerConversion:    25,
	}
}

// SuccessRate returns the difficulty's base rate nudged by plan momentum.
func (t Tuning) SuccessRate(d model.Difficulty, progress int) float64 {
	rate := t.SuccessRates[d]
	switch {
	case progress > t.HighProgress:
		rate += t.MomentumBonus
	case progress < t.LowProgress:
		rate -= t.MomentumBonus
	}
	return math.Min(math.Max(rate, t.MinSuccessRate), t.MaxSuccessRate)
}

// EffortMultiplier bands a participant count.
func (t Tuning) EffortMultiplier(participants int) float64 {
	for _, b := range t.EffortBands {
		if participants <= b.MaxParticipants {
			return b.Multiplier
		}
	}
	return t.OverflowMultiplier
}

// Turnout draws how many of numPeople actually take part in a challenge.
func (t Tuning) Turnout(r Rand, numPeople int) int {
	signups := min(between(r, t.MinSignups, t.MaxSignups), numPeople)
	return int(math.Floor(float64(signups) * t.EngagementRate))
}

// ComputeResult evaluates a completed challenge. progress is the plan
// progress before the challenge's revenue is added.
func ComputeResult(t Tuning, d model.Difficulty, target float64, participants, progress int) model.ChallengeResult {
	revenue := math.Round(target * t.SuccessRate(d, progress) * t.EffortMultiplier(participants))
	return model.ChallengeResult{
		Revenue:      revenue,
		Participants: participants,
		Success:      revenue >= t.SuccessThreshold*target,
		Efficiency:   model.Percent(revenue, target),
	}
}
