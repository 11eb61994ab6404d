package daemon

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/theirongolddev/eventoo/internal/model"
)

func TestClientRoundTrip(t *testing.T) {
	svc := newTestService()
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL)

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Plans != 0 || !st.SimulatedNow.Equal(simStart) {
		t.Fatalf("status = %+v, want empty daemon at %v", st, simStart)
	}

	p, err := c.CreatePlan(ctx, CreatePlanRequest{
		TotalBudget:     8500,
		DepartureInDays: 90,
		NumPeople:       25,
		Destination:     "Barcelona",
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if p.Status != model.PlanActive || p.ID == "" {
		t.Fatalf("created plan status=%s id=%q", p.Status, p.ID)
	}

	plans, err := c.Plans(ctx)
	if err != nil {
		t.Fatalf("Plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Destination != "Barcelona" {
		t.Fatalf("plans = %+v", plans)
	}

	view, err := c.Plan(ctx, p.ID)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if view.Next == nil || view.Next.ID != 1 {
		t.Fatalf("next challenge = %+v, want challenge 1", view.Next)
	}

	if _, err := c.Report(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Report before completion err = %v, want ErrNotFound", err)
	}

	ch, err := c.StartChallenge(ctx, p.ID, 1)
	if err != nil {
		t.Fatalf("StartChallenge: %v", err)
	}
	if ch.Status != model.ChallengeActive {
		t.Fatalf("challenge status = %s, want active", ch.Status)
	}
	_, err = c.StartChallenge(ctx, p.ID, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second start err = %v, want ErrConflict", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message == "" {
		t.Fatalf("conflict should carry the daemon message, got %v", err)
	}

	events, err := c.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected buffered events after activation")
	}

	if err := c.Release(ctx, p.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := c.Plan(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Plan after release err = %v, want ErrNotFound", err)
	}
}

func TestNewClientNormalizesAddr(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:8742":         "http://127.0.0.1:8742",
		" localhost:1/ ":         "http://localhost:1",
		"https://eventoo.local/": "https://eventoo.local",
	}
	for in, want := range cases {
		if got := NewClient(in).baseURL; got != want {
			t.Errorf("NewClient(%q).baseURL = %q, want %q", in, got, want)
		}
	}
}
