package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/planner"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

const maxRequestBody = 64 << 10 // 64 KB

// PlanSummary is one row of /v1/plans.
type PlanSummary struct {
	ID            string           `json:"id"`
	Destination   string           `json:"destination"`
	Status        model.PlanStatus `json:"status"`
	TotalBudget   float64          `json:"total_budget"`
	CurrentAmount float64          `json:"current_amount"`
	Progress      int              `json:"progress"`
	Current       string           `json:"current_challenge,omitempty"`
	Exhausted     bool             `json:"exhausted,omitempty"`
}

// PlanView is served at /v1/plans/{id}.
type PlanView struct {
	Plan      *model.Plan                `json:"plan"`
	Progress  int                        `json:"progress"`
	Summary   simulator.ChallengeSummary `json:"summary"`
	Next      *model.Challenge           `json:"next_challenge,omitempty"`
	Exhausted bool                       `json:"exhausted"`
	Campaigns []simulator.Campaign       `json:"campaigns"`
}

// CreatePlanRequest is the body of POST /v1/plans. DepartureInDays is
// relative to the simulated clock and used when DepartureDate is empty.
type CreatePlanRequest struct {
	TotalBudget     float64   `json:"total_budget"`
	DepartureDate   time.Time `json:"departure_date"`
	DepartureInDays int       `json:"departure_in_days,omitempty"`
	NumPeople       int       `json:"num_people"`
	Destination     string    `json:"destination"`
}

// Handler returns the HTTP API with CORS applied.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/v1/plans", s.handleListPlans).Methods("GET")
	r.HandleFunc("/v1/plans", s.handleCreatePlan).Methods("POST")
	r.HandleFunc("/v1/plans/{id}", s.handleGetPlan).Methods("GET")
	r.HandleFunc("/v1/plans/{id}", s.handleReleasePlan).Methods("DELETE")
	r.HandleFunc("/v1/plans/{id}/report", s.handleReport).Methods("GET")
	r.HandleFunc("/v1/plans/{id}/challenges/{cid}/start", s.handleStartChallenge).Methods("POST")
	r.HandleFunc("/v1/events", s.handleEvents).Methods("GET")
	r.HandleFunc("/v1/stream", s.handleStream).Methods("GET")
	r.Use(s.logRequests)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleListPlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	execs := s.sim.Executions()
	out := make([]PlanSummary, 0, len(execs))
	for _, e := range execs {
		p := e.Plan()
		row := PlanSummary{
			ID:            p.ID,
			Destination:   p.Destination,
			Status:        p.Status,
			TotalBudget:   p.TotalBudget,
			CurrentAmount: p.CurrentAmount,
			Progress:      p.Progress(),
			Exhausted:     e.Exhausted(),
		}
		if c := e.Current(); c != nil {
			row.Current = c.Title
		}
		out = append(out, row)
	}
	data, err := json.Marshal(out)
	s.mu.RUnlock()

	writeRaw(w, http.StatusOK, data, err)
}

func (s *Service) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var body CreatePlanRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	s.mu.Lock()
	now := s.simNow
	req := planner.Request{
		TotalBudget:   body.TotalBudget,
		DepartureDate: body.DepartureDate,
		NumPeople:     body.NumPeople,
		Destination:   body.Destination,
	}
	if req.DepartureDate.IsZero() && body.DepartureInDays > 0 {
		req.DepartureDate = now.AddDate(0, 0, body.DepartureInDays)
	}

	plan, err := s.gen.Generate(req, now)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h, err := s.sim.Activate(plan, now)
	if err != nil {
		s.mu.Unlock()
		status := http.StatusUnprocessableEntity
		if errors.Is(err, simulator.ErrAlreadyActive) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	events := h.Log()
	persistErr := s.persistLocked(events)
	data, err := json.Marshal(plan)
	s.mu.Unlock()

	if persistErr != nil {
		s.log.WithError(persistErr).WithField("plan", plan.ID).Warn("persisting new plan")
	}
	s.fanOut(r.Context(), events)
	writeRaw(w, http.StatusCreated, data, err)
}

func (s *Service) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h, err := s.sim.Get(mux.Vars(r)["id"])
	if err != nil {
		s.mu.RUnlock()
		writeError(w, http.StatusNotFound, err)
		return
	}
	view := PlanView{
		Plan:      h.Plan(),
		Progress:  h.Plan().Progress(),
		Summary:   h.Summary(),
		Next:      h.NextChallenge(),
		Exhausted: h.Exhausted(),
		Campaigns: h.Campaigns(),
	}
	data, err := json.Marshal(view)
	s.mu.RUnlock()

	writeRaw(w, http.StatusOK, data, err)
}

func (s *Service) handleReleasePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	h, err := s.sim.Get(id)
	var deleteErr error
	if err == nil {
		s.sim.Release(h)
		// Restore would otherwise resume the plan on the next start.
		if s.store != nil {
			deleteErr = s.store.DeletePlan(id)
		}
	}
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if deleteErr != nil {
		s.log.WithError(deleteErr).WithField("plan", id).Warn("deleting released plan")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("plan released but not deleted: %w", deleteErr))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h, err := s.sim.Get(mux.Vars(r)["id"])
	if err != nil {
		s.mu.RUnlock()
		writeError(w, http.StatusNotFound, err)
		return
	}
	report := h.Report()
	var data []byte
	if report != nil {
		data, err = json.Marshal(report)
	}
	s.mu.RUnlock()

	if report == nil {
		writeError(w, http.StatusNotFound, errors.New("report is available once the plan completes"))
		return
	}
	writeRaw(w, http.StatusOK, data, err)
}

func (s *Service) handleStartChallenge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cid, err := strconv.Atoi(vars["cid"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid challenge id %q", vars["cid"]))
		return
	}

	s.mu.Lock()
	h, err := s.sim.Get(vars["id"])
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, err)
		return
	}
	events, startErr := s.sim.Start(h, cid, s.simNow)
	persistErr := s.persistLocked(events)
	var data []byte
	if startErr == nil {
		data, err = json.Marshal(h.Plan().Challenge(cid))
	}
	s.mu.Unlock()

	if persistErr != nil {
		s.log.WithError(persistErr).Warn("persisting challenge start")
	}
	s.fanOut(r.Context(), events)
	if startErr != nil {
		writeError(w, http.StatusConflict, startErr)
		return
	}
	writeRaw(w, http.StatusOK, data, err)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, "status", s.snapshotStatus())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev.Type, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	writeRaw(w, status, data, err)
}

func writeRaw(w http.ResponseWriter, status int, data []byte, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
