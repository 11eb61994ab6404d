package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/store"
)

var simStart = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	mu     sync.Mutex
	plans  map[string]model.Plan
	events []simulator.Event
	active []*model.Plan
}

func (m *memStore) SavePlan(p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plans == nil {
		m.plans = make(map[string]model.Plan)
	}
	m.plans[p.ID] = *p
	return nil
}

func (m *memStore) AppendEvents(events []simulator.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *memStore) ActivePlans() ([]*model.Plan, error) { return m.active, nil }

func (m *memStore) DeletePlan(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, id)
	return nil
}

type memSink struct {
	batches [][]simulator.Event
}

func (m *memSink) Publish(_ context.Context, events []simulator.Event) error {
	m.batches = append(m.batches, events)
	return nil
}

func newTestService(opts ...Option) *Service {
	return New(Config{
		Interval:     time.Second,
		Speed:        6 * 3600, // six simulated hours per tick
		EventsBuffer: 500,
		StartAt:      simStart,
	}, simulator.New(), opts...)
}

func createPlan(t *testing.T, h http.Handler, body string) model.Plan {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/plans = %d (%s), want 201", rec.Code, rec.Body.String())
	}
	var p model.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	return p
}

const barcelona = `{"total_budget": 8500, "departure_in_days": 90, "num_people": 25, "destination": "Barcelona"}`

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, nil)

	s.publishEvent(simulator.Event{Seq: 1})
	s.publishEvent(simulator.Event{Seq: 2})
	s.publishEvent(simulator.Event{Seq: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].Event.Seq != 2 || s.events[1].Event.Seq != 3 {
		t.Fatalf("events ring contains seqs [%d, %d], want [2, 3]", s.events[0].Event.Seq, s.events[1].Event.Seq)
	}
	if s.events[1].ID != 3 {
		t.Fatalf("last event ID = %d, want 3", s.events[1].ID)
	}
}

func TestStepScalesInterval(t *testing.T) {
	s := newTestService()
	if got := s.Step(); got != 6*time.Hour {
		t.Fatalf("Step() = %v, want 6h", got)
	}
}

func TestCreatePlanActivatesAndPersists(t *testing.T) {
	mem := &memStore{}
	sink := &memSink{}
	s := newTestService(WithStore(mem), WithSink(sink))

	p := createPlan(t, s.Handler(), barcelona)
	if p.Status != model.PlanActive {
		t.Fatalf("Status = %q, want active", p.Status)
	}
	if p.TimeFrameDays != 90 {
		t.Fatalf("TimeFrameDays = %d, want 90", p.TimeFrameDays)
	}
	if _, ok := mem.plans[p.ID]; !ok {
		t.Fatal("plan not persisted")
	}
	if len(mem.events) != 3 {
		t.Fatalf("journaled %d events, want 3 activation events", len(mem.events))
	}
	if len(sink.batches) != 1 {
		t.Fatalf("sink batches = %d, want 1", len(sink.batches))
	}
	if st := s.snapshotStatus(); st.Plans != 1 || st.ActivePlans != 1 || st.EventCount != 3 {
		t.Fatalf("status = %+v, want 1 active plan and 3 events", st)
	}
}

func TestCreatePlanRejectsInvalidInput(t *testing.T) {
	s := newTestService()
	for _, body := range []string{
		`{"total_budget": 0, "departure_in_days": 30, "num_people": 10}`,
		`{"total_budget": 1000, "num_people": 10}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("POST %s = %d, want 400", body, rec.Code)
		}
	}
}

func TestTickOnceAdvancesClockAndFansOut(t *testing.T) {
	mem := &memStore{}
	sink := &memSink{}
	s := newTestService(WithStore(mem), WithSink(sink))
	p := createPlan(t, s.Handler(), barcelona)

	for range 4 * 8 { // eight simulated days
		s.tickOnce(context.Background())
	}

	st := s.snapshotStatus()
	if want := simStart.Add(8 * 24 * time.Hour); !st.SimulatedNow.Equal(want) {
		t.Fatalf("SimulatedNow = %v, want %v", st.SimulatedNow, want)
	}
	if st.TickCount != 32 {
		t.Fatalf("TickCount = %d, want 32", st.TickCount)
	}

	saved := mem.plans[p.ID]
	if saved.Challenges[0].Status != model.ChallengeCompleted {
		t.Fatalf("first challenge status = %q, want completed after its deadline", saved.Challenges[0].Status)
	}
	if saved.CurrentAmount <= 0 {
		t.Fatal("CurrentAmount not persisted")
	}
	if len(sink.batches) < 2 {
		t.Fatalf("sink batches = %d, want tick batches after activation", len(sink.batches))
	}

	var types []string
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	joined := strings.Join(types, ",")
	for _, want := range []string{"challenge_started", "challenge_completed", "challenge_ready"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("event stream %q missing %s", joined, want)
		}
	}
}

func TestPlanEndpoints(t *testing.T) {
	s := newTestService()
	h := s.Handler()
	p := createPlan(t, h, barcelona)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))
	var rows []PlanSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != p.ID || rows[0].Current == "" {
		t.Fatalf("plans = %+v, want one row with a current challenge", rows)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans/"+p.ID, nil))
	var view PlanView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode plan view: %v", err)
	}
	if view.Next == nil || view.Next.ID != 1 {
		t.Fatalf("next challenge = %+v, want challenge 1", view.Next)
	}
	if view.Summary.Total != 12 || view.Summary.Ready != 1 {
		t.Fatalf("summary = %+v, want 12 total with 1 ready", view.Summary)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plans/"+p.ID+"/challenges/1/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("start challenge = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	var c model.Challenge
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}
	if c.Status != model.ChallengeActive || !c.StartedAt.Equal(simStart) {
		t.Fatalf("challenge = %s at %v, want active at %v", c.Status, c.StartedAt, simStart)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plans/"+p.ID+"/challenges/2/start", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("start scheduled challenge = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans/"+p.ID+"/report", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("report before completion = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown plan = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/plans/"+p.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("release plan = %d, want 204", rec.Code)
	}
	if st := s.snapshotStatus(); st.Plans != 0 {
		t.Fatalf("plans after release = %d, want 0", st.Plans)
	}
}

func TestRestoreResumesActivePlans(t *testing.T) {
	seed := newTestService()
	p := createPlan(t, seed.Handler(), barcelona)
	restored := p

	mem := &memStore{active: []*model.Plan{&restored}}
	s := newTestService(WithStore(mem))
	n, err := s.Restore()
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("Restore() = %d, want 1", n)
	}
	if st := s.snapshotStatus(); st.ActivePlans != 1 {
		t.Fatalf("ActivePlans = %d, want 1", st.ActivePlans)
	}
}

func TestReleaseDeletesStoredPlan(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "eventoo.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close() }()

	s := newTestService(WithStore(st))
	p := createPlan(t, s.Handler(), barcelona)
	if n, err := newTestService(WithStore(st)).Restore(); err != nil || n != 1 {
		t.Fatalf("Restore() before delete = %d, %v; want 1", n, err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/plans/"+p.ID, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d (%s), want 204", rec.Code, rec.Body.String())
	}

	if _, err := st.LoadPlan(p.ID); !errors.Is(err, store.ErrPlanNotFound) {
		t.Fatalf("LoadPlan after delete err = %v, want ErrPlanNotFound", err)
	}
	restarted := newTestService(WithStore(st))
	n, err := restarted.Restore()
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if n != 0 {
		t.Fatalf("Restore() after delete = %d, want 0", n)
	}
}

func TestCreatePlanRejectsOversizedBody(t *testing.T) {
	s := newTestService()
	body := `{"destination": "` + strings.Repeat("x", maxRequestBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("POST oversized = %d, want 413", rec.Code)
	}
	if st := s.snapshotStatus(); st.Plans != 0 {
		t.Fatalf("Plans = %d, want 0", st.Plans)
	}
}

func TestHealthAndCORS(t *testing.T) {
	s := newTestService()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSSE(rec, "challenge_ready", Event{ID: 7, Type: "challenge_ready"})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: challenge_ready\ndata: {") {
		t.Fatalf("SSE frame = %q", body)
	}
	if !bytes.HasSuffix(rec.Body.Bytes(), []byte("}\n\n")) {
		t.Fatalf("SSE frame not terminated: %q", body)
	}
}
