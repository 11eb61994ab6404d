package model

import "time"

// Difficulty classifies a challenge template pool and its base success rate.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// ChallengeStatus is the execution state of a challenge. Transitions are
// linear: scheduled -> ready -> active -> completed.
type ChallengeStatus string

const (
	ChallengeScheduled ChallengeStatus = "scheduled"
	ChallengeReady     ChallengeStatus = "ready"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)

// Open reports whether the challenge is ready or running.
func (s ChallengeStatus) Open() bool {
	return s == ChallengeReady || s == ChallengeActive
}

// Challenge is a scheduled fundraising activity with a revenue target.
type Challenge struct {
	ID               int        `json:"id"`
	Week             int        `json:"week"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeRequiredDays int        `json:"time_required_days"`
	Resources        []string   `json:"resources,omitempty"`

	BaseRevenue      float64   `json:"base_revenue"`
	TargetAmount     float64   `json:"target_amount"`
	EstimatedRevenue float64   `json:"estimated_revenue"`
	Deadline         time.Time `json:"deadline"`

	Status      ChallengeStatus `json:"status"`
	ScheduledAt time.Time       `json:"scheduled_at,omitempty"`
	ReadyAt     time.Time       `json:"ready_at,omitempty"`
	StartedAt   time.Time       `json:"started_at,omitempty"`
	CompletedAt time.Time       `json:"completed_at,omitempty"`

	Participants int              `json:"participants"`
	Result       *ChallengeResult `json:"result,omitempty"`
	// Forced is set when the plan completed while this challenge was open.
	Forced bool `json:"forced,omitempty"`
}

// ChallengeResult is computed once when a challenge completes on its own.
type ChallengeResult struct {
	Revenue      float64 `json:"revenue"`
	Participants int     `json:"participants"`
	Success      bool    `json:"success"`
	Efficiency   int     `json:"efficiency"` // revenue as a percentage of target
}
