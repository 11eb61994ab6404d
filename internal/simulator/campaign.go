package simulator

import (
	"math"
	"time"
)

// CampaignKind distinguishes the plan's running campaign from one-shot pushes.
type CampaignKind string

const (
	CampaignMain       CampaignKind = "main"
	CampaignMilestone  CampaignKind = "milestone"
	CampaignCompletion CampaignKind = "completion"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive   CampaignStatus = "active"
	CampaignLaunched CampaignStatus = "launched"
	CampaignEnded    CampaignStatus = "ended"
)

// CampaignMetrics are the simulated marketing counters of a campaign.
type CampaignMetrics struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	ROI         float64 `json:"roi"`
	Budget      float64 `json:"budget"`
}

// Campaign is simulated marketing activity attached to a plan.
type Campaign struct {
	ID         string          `json:"id"`
	Kind       CampaignKind    `json:"kind"`
	Name       string          `json:"name"`
	Budget     float64         `json:"budget"`
	Channels   []string        `json:"channels"`
	Status     CampaignStatus  `json:"status"`
	LaunchedAt time.Time       `json:"launched_at"`
	EndedAt    time.Time       `json:"ended_at,omitempty"`
	NextUpdate time.Time       `json:"-"`
	Metrics    CampaignMetrics `json:"metrics"`
}

var campaignChannels = []string{"social", "email", "web"}

func newCampaign(id string, kind CampaignKind, name string, budget float64) *Campaign {
	return &Campaign{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Budget:   math.Round(budget),
		Channels: append([]string(nil), campaignChannels...),
	}
}

// launch seeds the opening metrics. Only the main campaign keeps running.
func (c *Campaign) launch(r Rand, t Tuning, at time.Time) {
	c.LaunchedAt = at
	c.Metrics.Impressions = between(r, 500, 1499)
	c.Metrics.Clicks = c.Metrics.Impressions / 10
	c.Metrics.Budget = c.Budget
	c.Status = CampaignLaunched
	if c.Kind == CampaignMain && t.CampaignInterval > 0 {
		c.Status = CampaignActive
		c.NextUpdate = at.Add(t.CampaignInterval)
	}
}

// advance applies one monitoring interval of growth.
func (c *Campaign) advance(r Rand, t Tuning) {
	c.Metrics.Impressions += r.Intn(100)
	c.Metrics.Clicks += r.Intn(10)
	c.Metrics.Conversions += r.Intn(2)
	c.Metrics.Revenue = float64(c.Metrics.Conversions) * t.RevenuePerConversion
	if c.Budget > 0 {
		c.Metrics.ROI = c.Metrics.Revenue / c.Budget
	}
	c.NextUpdate = c.NextUpdate.Add(t.CampaignInterval)
}

func (c *Campaign) end(at time.Time) {
	c.Status = CampaignEnded
	c.EndedAt = at
}
