package simulator

import (
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
)

// activityLogSize caps the per-plan activity log.
const activityLogSize = 50

// Execution is the simulator's handle for an activated plan.
type Execution struct {
	plan      *model.Plan
	clock     time.Time
	seq       int64
	log       []Event
	pending   []Event
	campaigns []*Campaign
	report    *Report

	subs    []subscription
	nextSub int
}

// ID returns the plan ID.
func (e *Execution) ID() string { return e.plan.ID }

// Plan returns the live plan. Callers must not mutate it.
func (e *Execution) Plan() *model.Plan { return e.plan }

// Clock returns the simulated time the execution has been advanced to.
func (e *Execution) Clock() time.Time { return e.clock }

// Log returns the most recent activity, oldest first.
func (e *Execution) Log() []Event {
	out := make([]Event, len(e.log))
	copy(out, e.log)
	return out
}

// Campaigns returns copies of the plan's marketing campaigns.
func (e *Execution) Campaigns() []Campaign {
	out := make([]Campaign, len(e.campaigns))
	for i, c := range e.campaigns {
		out[i] = *c
	}
	return out
}

// Report returns the final report, or nil until the plan completes.
func (e *Execution) Report() *Report { return e.report }

// Summary counts the plan's challenges by state.
func (e *Execution) Summary() ChallengeSummary { return Summarize(e.plan) }

// NextChallenge returns the ready challenge, else the next scheduled one, else nil.
func (e *Execution) NextChallenge() *model.Challenge {
	for i := range e.plan.Challenges {
		if e.plan.Challenges[i].Status == model.ChallengeReady {
			return &e.plan.Challenges[i]
		}
	}
	return e.nextScheduled()
}

// Current returns the ready or active challenge, if any.
func (e *Execution) Current() *model.Challenge {
	for i := range e.plan.Challenges {
		if e.plan.Challenges[i].Status.Open() {
			return &e.plan.Challenges[i]
		}
	}
	return nil
}

// Exhausted reports whether every challenge closed without funding the plan.
func (e *Execution) Exhausted() bool {
	if e.plan.Status != model.PlanActive {
		return false
	}
	for _, c := range e.plan.Challenges {
		if c.Status != model.ChallengeCompleted {
			return false
		}
	}
	return true
}

// Done reports whether no further transitions can happen.
func (e *Execution) Done() bool {
	return e.plan.Status == model.PlanCompleted || e.Exhausted()
}

func (e *Execution) nextScheduled() *model.Challenge {
	for i := range e.plan.Challenges {
		if e.plan.Challenges[i].Status == model.ChallengeScheduled {
			return &e.plan.Challenges[i]
		}
	}
	return nil
}

func (e *Execution) mainCampaign() *Campaign {
	for _, c := range e.campaigns {
		if c.Kind == CampaignMain {
			return c
		}
	}
	return nil
}

func (e *Execution) record(ev Event) Event {
	e.seq++
	ev.Seq = e.seq
	ev.PlanID = e.plan.ID
	ev.Progress = e.plan.Progress()

	e.log = append(e.log, ev)
	if len(e.log) > activityLogSize {
		e.log = e.log[len(e.log)-activityLogSize:]
	}
	e.pending = append(e.pending, ev)

	for _, s := range e.subs {
		if s.typ == EventAny || s.typ == ev.Type {
			s.fn(ev)
		}
	}
	return ev
}

func (e *Execution) drain() []Event {
	out := e.pending
	e.pending = nil
	return out
}
