package simulator

import "time"

// EventType names a domain event emitted by the simulator.
type EventType string

const (
	// EventAny matches every event type in Subscribe.
	EventAny EventType = "*"

	EventPlanActivated      EventType = "plan_activated"
	EventChallengeReady     EventType = "challenge_ready"
	EventChallengeStarted   EventType = "challenge_started"
	EventChallengeCompleted EventType = "challenge_completed"
	EventMilestoneUnlocked  EventType = "milestone_unlocked"
	EventPlanCompleted      EventType = "plan_completed"
	EventCampaignLaunched   EventType = "campaign_launched"
)

// Event is one entry of a plan's activity stream. At is the simulated time
// the transition happened, which may be earlier than the tick that produced it.
type Event struct {
	Seq         int64     `json:"seq"`
	Type        EventType `json:"type"`
	PlanID      string    `json:"plan_id"`
	At          time.Time `json:"at"`
	ChallengeID int       `json:"challenge_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Revenue     float64   `json:"revenue,omitempty"`
	Success     bool      `json:"success,omitempty"`
	Percentage  int       `json:"percentage,omitempty"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message"`
}

type subscription struct {
	id  int
	typ EventType
	fn  func(Event)
}
