// Package daemon provides the long-running simulation host and its HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration // real time between ticks
	Speed        float64       // simulated seconds per real second
	EventsBuffer int
	CORSOrigins  []string
	StartAt      time.Time // simulated clock origin, defaults to now
}

// Persister stores plan snapshots and journals their events.
type Persister interface {
	SavePlan(p *model.Plan) error
	AppendEvents(events []simulator.Event) error
	ActivePlans() ([]*model.Plan, error)
	DeletePlan(id string) error
}

// Sink receives every batch of simulator events.
type Sink interface {
	Publish(ctx context.Context, events []simulator.Event) error
}

// Event wraps a simulator event with its position in the daemon stream.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Event     simulator.Event `json:"event"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	SimulatedNow    time.Time `json:"simulated_now"`
	LastTickAt      time.Time `json:"last_tick_at"`
	TickIntervalSec int       `json:"tick_interval_sec"`
	Speed           float64   `json:"speed"`
	TickCount       int64     `json:"tick_count"`
	Plans           int       `json:"plans"`
	ActivePlans     int       `json:"active_plans"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists plans and events after every change.
func WithStore(p Persister) Option {
	return func(s *Service) { s.store = p }
}

// WithSink forwards events to an external channel.
func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	log   logrus.FieldLogger
	gen   *planner.Generator
	store Persister
	sink  Sink

	mu          sync.RWMutex
	sim         *simulator.Simulator
	startedAt   time.Time
	simNow      time.Time
	lastTickAt  time.Time
	tickCount   int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service driving sim.
func New(cfg Config, sim *simulator.Simulator, opts ...Option) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 3600
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8742"
	}
	if cfg.StartAt.IsZero() {
		cfg.StartAt = time.Now().UTC()
	}
	if sim == nil {
		sim = simulator.New()
	}

	s := &Service{
		cfg:       cfg,
		gen:       planner.NewGenerator(),
		sim:       sim,
		startedAt: time.Now(),
		simNow:    cfg.StartAt,
		subs:      make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// Restore resumes every active plan found in the store.
func (s *Service) Restore() (int, error) {
	if s.store == nil {
		return 0, nil
	}
	plans, err := s.store.ActivePlans()
	if err != nil {
		return 0, fmt.Errorf("loading active plans: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range plans {
		if _, err := s.sim.Resume(p, s.simNow); err != nil {
			s.log.WithError(err).WithField("plan", p.ID).Warn("skipping stored plan")
			continue
		}
		n++
	}
	return n, nil
}

// Run starts HTTP endpoints and the simulation clock until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.tickOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// Step returns how much simulated time one tick covers.
func (s *Service) Step() time.Duration {
	return time.Duration(float64(s.cfg.Interval) * s.cfg.Speed)
}

// tickOnce advances the simulated clock by one step and fans out the events.
func (s *Service) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.simNow = s.simNow.Add(s.Step())
	events := s.sim.TickAll(s.simNow)
	s.tickCount++
	s.lastTickAt = time.Now()
	err := s.persistLocked(events)
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Warn("persisting tick")
	}
	s.fanOut(ctx, events)
}

// persistLocked saves the plans touched by events. Callers hold s.mu.
func (s *Service) persistLocked(events []simulator.Event) error {
	if s.store == nil || len(events) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	for _, ev := range events {
		if seen[ev.PlanID] {
			continue
		}
		seen[ev.PlanID] = true
		h, err := s.sim.Get(ev.PlanID)
		if err != nil {
			continue
		}
		if err := s.store.SavePlan(h.Plan()); err != nil {
			return err
		}
	}
	return s.store.AppendEvents(events)
}

func (s *Service) fanOut(ctx context.Context, events []simulator.Event) {
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		s.log.WithFields(logrus.Fields{
			"plan":  ev.PlanID,
			"event": ev.Type,
			"at":    ev.At.Format(time.RFC3339),
		}).Info(ev.Message)
		s.publishEvent(ev)
	}
	if s.sink != nil {
		if err := s.sink.Publish(ctx, events); err != nil {
			s.log.WithError(err).Warn("publishing events")
		}
	}
}

func (s *Service) publishEvent(sev simulator.Event) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      string(sev.Type),
		Timestamp: time.Now(),
		Event:     sev,
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execs := s.sim.Executions()
	active := 0
	for _, e := range execs {
		if e.Plan().Status == model.PlanActive {
			active++
		}
	}

	return Status{
		StartedAt:       s.startedAt,
		SimulatedNow:    s.simNow,
		LastTickAt:      s.lastTickAt,
		TickIntervalSec: int(s.cfg.Interval.Seconds()),
		Speed:           s.cfg.Speed,
		TickCount:       s.tickCount,
		Plans:           len(execs),
		ActivePlans:     active,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
