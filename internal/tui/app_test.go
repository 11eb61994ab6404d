package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/tui/components"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type memSaver struct {
	saves  int
	events []simulator.Event
}

func (m *memSaver) SavePlan(*model.Plan) error { m.saves++; return nil }

func (m *memSaver) AppendEvents(evs []simulator.Event) error {
	m.events = append(m.events, evs...)
	return nil
}

func newTestApp(t *testing.T, saver Saver) App {
	t.Helper()
	p, err := planner.Generate(planner.Request{
		TotalBudget:   8500,
		DepartureDate: testNow.AddDate(0, 0, 90),
		NumPeople:     25,
		Destination:   "Barcelona",
	}, testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return NewApp(Options{
		Simulator: simulator.New(simulator.WithRand(simulator.NewRand(7))),
		Step:      6 * time.Hour,
		Plan:      p,
		Saver:     saver,
		Now:       func() time.Time { return testNow },
	})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewAppWithPlanActivates(t *testing.T) {
	a := newTestApp(t, nil)
	if a.Execution() == nil {
		t.Fatalf("execution not started: %v", a.Err())
	}
	if got := a.Execution().Plan().Status; got != model.PlanActive {
		t.Fatalf("status = %s, want active", got)
	}
	if !a.clock.Equal(testNow) {
		t.Fatalf("clock = %v, want %v", a.clock, testNow)
	}
	if a.form != nil {
		t.Fatal("form should be skipped when a plan is supplied")
	}
}

func TestTickAdvancesClock(t *testing.T) {
	a := update(t, newTestApp(t, nil), tickMsg{})
	if want := testNow.Add(6 * time.Hour); !a.clock.Equal(want) {
		t.Fatalf("clock = %v, want %v", a.clock, want)
	}
	if !a.Execution().Clock().Equal(a.clock) {
		t.Fatalf("execution clock = %v, want %v", a.Execution().Clock(), a.clock)
	}
}

func TestPauseStopsTicks(t *testing.T) {
	a := update(t, newTestApp(t, nil), key(" "))
	if !a.paused {
		t.Fatal("space should pause")
	}
	a = update(t, a, tickMsg{})
	if !a.clock.Equal(testNow) {
		t.Fatalf("paused tick moved clock to %v", a.clock)
	}

	a = update(t, a, key("n"))
	if want := testNow.Add(6 * time.Hour); !a.clock.Equal(want) {
		t.Fatalf("single step clock = %v, want %v", a.clock, want)
	}
}

func TestSpeedKeys(t *testing.T) {
	a := newTestApp(t, nil)
	if speeds[a.speedIdx] != 6*time.Hour {
		t.Fatalf("initial speed = %v, want 6h", speeds[a.speedIdx])
	}
	a = update(t, a, key("+"))
	if speeds[a.speedIdx] != 12*time.Hour {
		t.Fatalf("speed after + = %v, want 12h", speeds[a.speedIdx])
	}
	for i := 0; i < 10; i++ {
		a = update(t, a, key("-"))
	}
	if a.speedIdx != 0 {
		t.Fatalf("speed index = %d, want clamped at 0", a.speedIdx)
	}
}

func TestStartKeyStartsReadyChallenge(t *testing.T) {
	a := newTestApp(t, nil)
	first := a.Execution().Plan().Challenges[0]
	if first.Status != model.ChallengeReady {
		t.Fatalf("first challenge status = %s, want ready", first.Status)
	}
	a = update(t, a, key("s"))
	if got := a.Execution().Plan().Challenges[0].Status; got != model.ChallengeActive {
		t.Fatalf("after s status = %s, want active", got)
	}

	// Nothing left to start.
	a = update(t, a, key("s"))
	if a.banner != "No challenge is ready to start" {
		t.Fatalf("banner = %q", a.banner)
	}
}

func TestRunsUntilDone(t *testing.T) {
	saver := &memSaver{}
	a := newTestApp(t, saver)
	a.speedIdx = len(speeds) - 1
	for i := 0; i < 1000 && !a.finished; i++ {
		a = update(t, a, tickMsg{})
	}
	if !a.finished {
		t.Fatal("simulation never finished")
	}
	if !a.Execution().Done() {
		t.Fatal("finished but execution not done")
	}
	if !a.paused {
		t.Fatal("finished simulation should stay paused")
	}
	if saver.saves == 0 || len(saver.events) == 0 {
		t.Fatalf("saver got %d saves and %d events", saver.saves, len(saver.events))
	}

	clock := a.clock
	a = update(t, a, key(" "))
	a = update(t, a, tickMsg{})
	if !a.clock.Equal(clock) {
		t.Fatal("finished simulation should not advance")
	}
}

func TestTabKeys(t *testing.T) {
	a := newTestApp(t, nil)
	a = update(t, a, key("w"))
	if a.activeTab != 2 {
		t.Fatalf("activeTab = %d, want 2", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != 3 {
		t.Fatalf("activeTab = %d, want 3", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != 0 {
		t.Fatalf("activeTab = %d, want wrap to 0", a.activeTab)
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("tabAtX past end = %d, want -1", got)
		}
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := update(t, newTestApp(t, nil), tea.WindowSizeMsg{Width: 140, Height: 40})
	for i := 0; i < 8; i++ {
		a = update(t, a, tickMsg{})
	}
	for tab := range components.Tabs {
		a.activeTab = tab
		out := a.View()
		if !strings.Contains(out, "Barcelona") {
			t.Fatalf("tab %d view missing destination", tab)
		}
		if got := len(strings.Split(out, "\n")); got != 40 {
			t.Fatalf("tab %d view has %d lines, want 40", tab, got)
		}
	}

	a.showHelp = true
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay missing")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := update(t, newTestApp(t, nil), tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "Terminal too narrow") {
		t.Fatal("narrow terminal warning missing")
	}
}

func TestNewAppWithoutPlanShowsForm(t *testing.T) {
	a := NewApp(Options{Defaults: PlanValues{Budget: "8500", DepartureDays: "90", People: "25"}})
	if a.form == nil {
		t.Fatal("form should be shown without a plan")
	}
	if a.Execution() != nil {
		t.Fatal("execution should wait for the form")
	}
	if a.formVals.Budget != "8500" {
		t.Fatalf("defaults not bound: %+v", a.formVals)
	}
}

func TestPlanValuesRequest(t *testing.T) {
	req, err := PlanValues{Budget: " 8500 ", DepartureDays: "90", People: "25", Destination: " Paris "}.Request(testNow)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.TotalBudget != 8500 || req.NumPeople != 25 || req.Destination != "Paris" {
		t.Fatalf("Request = %+v", req)
	}
	if want := testNow.AddDate(0, 0, 90); !req.DepartureDate.Equal(want) {
		t.Fatalf("DepartureDate = %v, want %v", req.DepartureDate, want)
	}

	bad := []PlanValues{
		{Budget: "lots", DepartureDays: "90", People: "25"},
		{Budget: "100", DepartureDays: "soon", People: "25"},
		{Budget: "100", DepartureDays: "90", People: "many"},
	}
	for _, v := range bad {
		if _, err := v.Request(testNow); err == nil {
			t.Fatalf("Request(%+v) should fail", v)
		}
	}
}

func TestFormValidators(t *testing.T) {
	if positiveFloat("0") == nil || positiveFloat("x") == nil {
		t.Fatal("positiveFloat should reject 0 and non-numbers")
	}
	if positiveFloat("12.5") != nil {
		t.Fatal("positiveFloat should accept 12.5")
	}
	check := intInRange(1, 10)
	if check("0") == nil || check("11") == nil || check("5") != nil {
		t.Fatal("intInRange(1, 10) bounds wrong")
	}
}

func TestWrap(t *testing.T) {
	got := wrap("sell homemade cakes at the weekly market", 12)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 12 {
			t.Fatalf("line %q wider than 12", line)
		}
	}
}
