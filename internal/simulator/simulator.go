// Package simulator drives activated plans through simulated time.
//
// A Simulator owns its executions explicitly. Time only moves when the host
// calls Tick with a new "now", and every transition is stamped with the
// simulated instant it happened at, so one large tick yields the same state
// and events as many small ones. The Simulator is not safe for concurrent use;
// hosts serialize calls.
package simulator

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/eventoo/internal/model"
)

const week = 7 * 24 * time.Hour

// Simulator advances plan executions.
type Simulator struct {
	tuning Tuning
	rand   Rand
	log    logrus.FieldLogger
	execs  map[string]*Execution
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTuning replaces the outcome model constants.
func WithTuning(t Tuning) Option {
	return func(s *Simulator) { s.tuning = t }
}

// WithRand sets the outcome source.
func WithRand(r Rand) Option {
	return func(s *Simulator) { s.rand = r }
}

// WithLogger sets the logger for transition tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulator) { s.log = l }
}

// New creates a simulator. Without options it uses DefaultTuning, a source
// seeded with 1 and a discarding logger.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		tuning: DefaultTuning(),
		execs:  make(map[string]*Execution),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = NewRand(1)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// Tuning returns the active outcome model.
func (s *Simulator) Tuning() Tuning { return s.tuning }

// Validate reports the structural problems that prevent p from being activated.
func Validate(p *model.Plan) error {
	if p == nil {
		return &InvalidPlanError{Missing: []string{"plan"}}
	}
	var missing []string
	if p.ID == "" {
		missing = append(missing, "id")
	}
	if !(p.TotalBudget > 0) || math.IsInf(p.TotalBudget, 0) {
		missing = append(missing, "total_budget")
	}
	if p.TimeFrameDays <= 0 {
		missing = append(missing, "time_frame_days")
	}
	if p.NumPeople <= 0 {
		missing = append(missing, "num_people")
	}
	if len(p.Challenges) == 0 {
		missing = append(missing, "challenges")
	}
	for i, c := range p.Challenges {
		if !c.Difficulty.Valid() {
			missing = append(missing, fmt.Sprintf("challenges[%d].difficulty", i))
		}
	}
	if len(p.Milestones) == 0 {
		missing = append(missing, "milestones")
	}
	if len(missing) > 0 {
		return &InvalidPlanError{PlanID: p.ID, Missing: missing}
	}
	return nil
}

// Activate starts executing a draft plan at now. The first challenge is made
// ready immediately and the rest are scheduled week by week.
func (s *Simulator) Activate(p *model.Plan, now time.Time) (*Execution, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if _, ok := s.execs[p.ID]; ok || (p.Status != model.PlanDraft && p.Status != "") {
		return nil, fmt.Errorf("activate %s: %w", p.ID, ErrAlreadyActive)
	}

	e := &Execution{plan: p, clock: now}
	s.execs[p.ID] = e

	p.Status = model.PlanActive
	p.ActivatedAt = now
	for i := range p.Challenges {
		c := &p.Challenges[i]
		jitter := between(s.rand, s.tuning.MinJitterDays, s.tuning.MaxJitterDays)
		c.Status = model.ChallengeScheduled
		c.ScheduledAt = now.Add(time.Duration(c.Week-1)*week + time.Duration(jitter)*24*time.Hour)
	}
	if len(p.WeeklyGoals) > 0 {
		p.WeeklyGoals[0].Status = model.GoalInProgress
	}

	e.record(Event{
		Type:    EventPlanActivated,
		At:      now,
		Message: fmt.Sprintf("Plan activated for %s: %d challenges over %d weeks", p.Destination, len(p.Challenges), p.Weeks()),
	})

	first := &p.Challenges[0]
	first.ScheduledAt = now
	s.ready(e, first, now)
	s.launchMain(e, now)

	s.log.WithFields(logrus.Fields{"plan": p.ID, "destination": p.Destination}).Debug("plan activated")
	e.drain()
	return e, nil
}

// Resume adopts an already active plan, for example one restored from a
// snapshot, continuing from at.
func (s *Simulator) Resume(p *model.Plan, at time.Time) (*Execution, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if _, ok := s.execs[p.ID]; ok {
		return nil, fmt.Errorf("resume %s: %w", p.ID, ErrAlreadyActive)
	}
	e := &Execution{plan: p, clock: at}
	s.execs[p.ID] = e
	if p.Status == model.PlanActive {
		s.launchMain(e, at)
	}
	e.drain()
	return e, nil
}

// Get returns the execution for a plan ID.
func (s *Simulator) Get(planID string) (*Execution, error) {
	e, ok := s.execs[planID]
	if !ok {
		return nil, fmt.Errorf("execution %s: %w", planID, ErrUnknownExecution)
	}
	return e, nil
}

// Executions returns every owned execution ordered by plan ID.
func (s *Simulator) Executions() []*Execution {
	out := make([]*Execution, 0, len(s.execs))
	for _, e := range s.execs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Release drops an execution and its subscribers.
func (s *Simulator) Release(h *Execution) {
	if h == nil {
		return
	}
	if cur, ok := s.execs[h.ID()]; ok && cur == h {
		delete(s.execs, h.ID())
		h.subs = nil
	}
}

// Subscribe registers fn for events of typ (or EventAny) on h. Events emitted
// while nobody is subscribed are only kept in the activity log.
func (s *Simulator) Subscribe(h *Execution, typ EventType, fn func(Event)) (cancel func(), err error) {
	if !s.owns(h) {
		return nil, ErrUnknownExecution
	}
	h.nextSub++
	id := h.nextSub
	h.subs = append(h.subs, subscription{id: id, typ: typ, fn: fn})
	return func() {
		for i, sub := range h.subs {
			if sub.id == id {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}, nil
}

// Start moves a ready challenge to active at now, after catching up on any
// transitions due before now.
func (s *Simulator) Start(h *Execution, challengeID int, now time.Time) ([]Event, error) {
	if !s.owns(h) {
		return nil, ErrUnknownExecution
	}
	s.advance(h, now)

	c := h.plan.Challenge(challengeID)
	if c == nil || c.Status != model.ChallengeReady || h.plan.Status != model.PlanActive {
		return h.drain(), fmt.Errorf("start challenge %d: %w", challengeID, ErrChallengeNotReady)
	}
	s.start(h, c, h.clock)
	return h.drain(), nil
}

// Tick advances h to now and returns the events produced, in order.
// Ticks with a now earlier than the execution clock are no-ops.
func (s *Simulator) Tick(h *Execution, now time.Time) []Event {
	if !s.owns(h) {
		return nil
	}
	s.advance(h, now)
	return h.drain()
}

// TickAll advances every execution to now.
func (s *Simulator) TickAll(now time.Time) []Event {
	var out []Event
	for _, e := range s.Executions() {
		out = append(out, s.Tick(e, now)...)
	}
	return out
}

func (s *Simulator) owns(h *Execution) bool {
	if h == nil {
		return false
	}
	cur, ok := s.execs[h.ID()]
	return ok && cur == h
}

// advance applies due transitions in time order up to now.
func (s *Simulator) advance(h *Execution, now time.Time) {
	for {
		at, run, ok := s.nextStep(h, now)
		if !ok {
			break
		}
		if at.After(h.clock) {
			h.clock = at
		}
		run(h.clock)
	}
	if now.After(h.clock) {
		h.clock = now
	}
}

// nextStep finds the earliest transition due at or before now. Challenge
// transitions win ties against campaign updates.
func (s *Simulator) nextStep(h *Execution, now time.Time) (time.Time, func(time.Time), bool) {
	p := h.plan
	if p.Status != model.PlanActive {
		return time.Time{}, nil, false
	}

	var (
		best  time.Time
		run   func(time.Time)
		found bool
	)
	consider := func(at time.Time, fn func(time.Time)) {
		if at.After(now) {
			return
		}
		if !found || at.Before(best) {
			best, run, found = at, fn, true
		}
	}

	if c := h.Current(); c != nil {
		switch c.Status {
		case model.ChallengeReady:
			consider(c.ReadyAt.Add(s.tuning.AutoStartAfter), func(at time.Time) { s.start(h, c, at) })
		case model.ChallengeActive:
			consider(later(c.Deadline, c.StartedAt), func(at time.Time) { s.complete(h, c, at) })
		}
	} else if c := h.nextScheduled(); c != nil {
		consider(later(c.ScheduledAt, h.clock), func(at time.Time) { s.ready(h, c, at) })
	}

	if m := h.mainCampaign(); m != nil && m.Status == CampaignActive {
		consider(m.NextUpdate, func(time.Time) { m.advance(s.rand, s.tuning) })
	}
	return best, run, found
}

func (s *Simulator) ready(h *Execution, c *model.Challenge, at time.Time) {
	c.Status = model.ChallengeReady
	c.ReadyAt = at
	s.emit(h, Event{
		Type:        EventChallengeReady,
		At:          at,
		ChallengeID: c.ID,
		Title:       c.Title,
		Message:     fmt.Sprintf("Challenge ready: %s", c.Title),
	})
}

func (s *Simulator) start(h *Execution, c *model.Challenge, at time.Time) {
	c.Status = model.ChallengeActive
	c.StartedAt = at
	c.Participants = s.tuning.Turnout(s.rand, h.plan.NumPeople)
	s.emit(h, Event{
		Type:        EventChallengeStarted,
		At:          at,
		ChallengeID: c.ID,
		Title:       c.Title,
		Message:     fmt.Sprintf("Challenge started: %s with %d participants", c.Title, c.Participants),
	})
}

func (s *Simulator) complete(h *Execution, c *model.Challenge, at time.Time) {
	p := h.plan
	res := ComputeResult(s.tuning, c.Difficulty, c.TargetAmount, c.Participants, p.Progress())
	c.Result = &res
	c.Status = model.ChallengeCompleted
	c.CompletedAt = at

	p.CurrentAmount += res.Revenue
	s.creditWeek(p, c.Week, res.Revenue)

	s.emit(h, Event{
		Type:        EventChallengeCompleted,
		At:          at,
		ChallengeID: c.ID,
		Title:       c.Title,
		Revenue:     res.Revenue,
		Success:     res.Success,
		Message:     fmt.Sprintf("Challenge completed: %s raised €%.0f", c.Title, res.Revenue),
	})

	s.unlockMilestones(h, at)

	if p.Progress() >= 100 {
		s.completePlan(h, at)
		return
	}
	if next := h.nextScheduled(); next != nil {
		s.ready(h, next, at)
	}
}

// creditWeek adds revenue to the weekly goal of the challenge's week. A
// challenge completes at the end of its week, so the completion instant
// would already fall into the next bucket.
func (s *Simulator) creditWeek(p *model.Plan, challengeWeek int, revenue float64) {
	if len(p.WeeklyGoals) == 0 {
		return
	}
	idx := max(0, min(challengeWeek-1, len(p.WeeklyGoals)-1))

	g := &p.WeeklyGoals[idx]
	g.CurrentAmount += revenue
	if g.CurrentAmount >= g.Target {
		g.Status = model.GoalCompleted
	} else {
		g.Status = model.GoalInProgress
	}
}

func (s *Simulator) unlockMilestones(h *Execution, at time.Time) {
	p := h.plan
	progress := p.Progress()
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if m.Unlocked || progress < m.Percentage {
			continue
		}
		m.Unlocked = true
		m.UnlockedAt = at
		s.emit(h, Event{
			Type:       EventMilestoneUnlocked,
			At:         at,
			Percentage: m.Percentage,
			Title:      m.Title,
			Message:    fmt.Sprintf("%s Milestone reached: %d%% - %s", m.Celebration, m.Percentage, m.Reward),
		})
		if m.Percentage < 100 {
			if main := h.mainCampaign(); main != nil {
				s.launch(h, newCampaign(
					fmt.Sprintf("%s_milestone_%d", main.ID, m.Percentage),
					CampaignMilestone,
					fmt.Sprintf("%d%% milestone push", m.Percentage),
					main.Budget*s.tuning.MilestoneCampaignShare,
				), at)
			}
		}
	}
}

func (s *Simulator) completePlan(h *Execution, at time.Time) {
	p := h.plan
	p.Status = model.PlanCompleted
	p.CompletedAt = at
	for i := range p.Challenges {
		c := &p.Challenges[i]
		if c.Status.Open() {
			c.Status = model.ChallengeCompleted
			c.CompletedAt = at
			c.Forced = true
		}
	}

	main := h.mainCampaign()
	if main != nil {
		main.end(at)
		s.launch(h, newCampaign(main.ID+"_completion", CampaignCompletion, p.Destination+" trip funded", main.Budget*s.tuning.CompletionCampaignShare), at)
	}
	h.report = buildReport(p, main)

	s.emit(h, Event{
		Type:    EventPlanCompleted,
		At:      at,
		Revenue: p.CurrentAmount,
		Message: fmt.Sprintf("Goal complete! The %s trip is funded", p.Destination),
	})
}

func (s *Simulator) launchMain(h *Execution, at time.Time) {
	p := h.plan
	s.launch(h, newCampaign("campaign_"+p.ID, CampaignMain, p.Destination+" trip campaign", p.TotalBudget*s.tuning.CampaignShare), at)
}

func (s *Simulator) launch(h *Execution, c *Campaign, at time.Time) {
	for i, existing := range h.campaigns {
		if existing.ID == c.ID {
			h.campaigns = append(h.campaigns[:i], h.campaigns[i+1:]...)
			break
		}
	}
	c.launch(s.rand, s.tuning, at)
	h.campaigns = append(h.campaigns, c)
	s.emit(h, Event{
		Type:    EventCampaignLaunched,
		At:      at,
		Title:   c.Name,
		Message: fmt.Sprintf("Marketing campaign launched: %s", c.Name),
	})
}

func (s *Simulator) emit(h *Execution, ev Event) {
	ev = h.record(ev)
	s.log.WithFields(logrus.Fields{
		"plan":      ev.PlanID,
		"event":     ev.Type,
		"challenge": ev.ChallengeID,
		"at":        ev.At.Format(time.RFC3339),
	}).Debug(ev.Message)
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
