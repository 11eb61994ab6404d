package simulator

import (
	"math"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
)

// ChallengeSummary counts challenges by state.
type ChallengeSummary struct {
	Total        int     `json:"total"`
	Scheduled    int     `json:"scheduled"`
	Ready        int     `json:"ready"`
	Active       int     `json:"active"`
	Completed    int     `json:"completed"`
	Successful   int     `json:"successful"`
	Forced       int     `json:"forced"`
	TotalRevenue float64 `json:"total_revenue"`
}

// Report is the closing summary of a completed plan.
type Report struct {
	PlanID       string            `json:"plan_id"`
	Destination  string            `json:"destination"`
	TotalBudget  float64           `json:"total_budget"`
	TotalRaised  float64           `json:"total_raised"`
	Progress     int               `json:"progress"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	DurationDays int               `json:"duration_days"`
	Challenges   ChallengeSummary  `json:"challenges"`
	Milestones   []model.Milestone `json:"milestones"`
	Marketing    *CampaignMetrics  `json:"marketing,omitempty"`
	Efficiency   int               `json:"efficiency"`
	Status       model.PlanStatus  `json:"status"`
}

// Summarize counts the plan's challenges by state.
func Summarize(p *model.Plan) ChallengeSummary {
	s := ChallengeSummary{Total: len(p.Challenges)}
	for _, c := range p.Challenges {
		switch c.Status {
		case model.ChallengeScheduled:
			s.Scheduled++
		case model.ChallengeReady:
			s.Ready++
		case model.ChallengeActive:
			s.Active++
		case model.ChallengeCompleted:
			s.Completed++
			if c.Forced {
				s.Forced++
			}
		}
		if c.Result != nil {
			s.TotalRevenue += c.Result.Revenue
			if c.Result.Success {
				s.Successful++
			}
		}
	}
	return s
}

func buildReport(p *model.Plan, main *Campaign) *Report {
	r := &Report{
		PlanID:       p.ID,
		Destination:  p.Destination,
		TotalBudget:  p.TotalBudget,
		TotalRaised:  p.CurrentAmount,
		Progress:     p.Progress(),
		StartDate:    p.ActivatedAt,
		EndDate:      p.CompletedAt,
		DurationDays: int(math.Ceil(p.CompletedAt.Sub(p.ActivatedAt).Hours() / 24)),
		Challenges:   Summarize(p),
		Efficiency:   p.Progress(),
		Status:       p.Status,
	}
	for _, m := range p.Milestones {
		if m.Unlocked {
			r.Milestones = append(r.Milestones, m)
		}
	}
	if main != nil {
		metrics := main.Metrics
		r.Marketing = &metrics
	}
	return r
}
