// Package model defines domain types for eventoo fundraising plans.
package model

import (
	"math"
	"time"
)

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

// Plan is a fundraising campaign targeting a fixed budget within a fixed timeframe.
//
// TotalBudget, TimeFrameDays, DepartureDate and Destination are fixed once the
// plan is generated. Only the simulator mutates the rest after activation.
type Plan struct {
	ID            string    `json:"id"`
	TotalBudget   float64   `json:"total_budget"`
	TimeFrameDays int       `json:"time_frame_days"`
	NumPeople     int       `json:"num_people"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	CreatedAt     time.Time `json:"created_at"`
	ActivatedAt   time.Time `json:"activated_at,omitempty"`
	CompletedAt   time.Time `json:"completed_at,omitempty"`

	CurrentAmount float64    `json:"current_amount"`
	Status        PlanStatus `json:"status"`

	Difficulty      Difficulty `json:"difficulty"`
	DifficultyScore float64    `json:"difficulty_score"`

	WeeklyGoals     []WeeklyGoal     `json:"weekly_goals"`
	Challenges      []Challenge      `json:"challenges"`
	Milestones      []Milestone      `json:"milestones"`
	Rewards         Rewards          `json:"rewards"`
	Risk            RiskAssessment   `json:"risk"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Progress returns the funded share of the budget as a rounded percentage.
func (p *Plan) Progress() int {
	return Percent(p.CurrentAmount, p.TotalBudget)
}

// Weeks returns the number of weekly buckets in the plan timeframe.
func (p *Plan) Weeks() int {
	return len(p.WeeklyGoals)
}

// Challenge returns the challenge with the given id, or nil.
func (p *Plan) Challenge(id int) *Challenge {
	for i := range p.Challenges {
		if p.Challenges[i].ID == id {
			return &p.Challenges[i]
		}
	}
	return nil
}

// Percent returns round(part/whole*100), or 0 when whole is not positive.
func Percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

// GoalStatus is the state of a weekly goal.
type GoalStatus string

const (
	GoalPending    GoalStatus = "pending"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// WeeklyGoal is the fundraising target for one 7-day bucket of the timeframe.
type WeeklyGoal struct {
	Week             int        `json:"week"`
	Target           float64    `json:"target"`
	CumulativeTarget float64    `json:"cumulative_target"`
	CurrentAmount    float64    `json:"current_amount"`
	Critical         bool       `json:"critical"` // prioritization hint only
	Status           GoalStatus `json:"status"`
}

// Progress returns the goal's funded share as a rounded percentage.
func (g *WeeklyGoal) Progress() int {
	return Percent(g.CurrentAmount, g.Target)
}

// Milestone is a fixed percentage-of-budget threshold that unlocks a reward.
type Milestone struct {
	Percentage  int       `json:"percentage"`
	Amount      float64   `json:"amount"`
	Title       string    `json:"title"`
	Reward      string    `json:"reward"`
	Celebration string    `json:"celebration"`
	Unlocked    bool      `json:"unlocked"`
	UnlockedAt  time.Time `json:"unlocked_at,omitempty"`
}

// Recommendation is a canned piece of planning advice attached to a plan.
type Recommendation struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}
