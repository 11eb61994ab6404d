// Package store persists plan snapshots and their event journal in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrPlanNotFound is returned when no snapshot exists for a plan ID.
var ErrPlanNotFound = errors.New("plan not found")

// Store provides SQLite-backed plan snapshots.
type Store struct {
	db *sql.DB
}

// DefaultDir returns the platform-appropriate data directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "eventoo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "eventoo")
}

// DefaultPath returns the full path to the plan database.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "eventoo.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening plan db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PlanRow is the listing view of a stored plan.
type PlanRow struct {
	ID            string
	Destination   string
	Status        model.PlanStatus
	TotalBudget   float64
	CurrentAmount float64
	Progress      int
	NumPeople     int
	DepartureDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SavePlan stores or replaces the snapshot of p.
func (s *Store) SavePlan(p *model.Plan) error {
	snapshot, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding plan %s: %w", p.ID, err)
	}

	_, err = s.db.Exec(`INSERT INTO plans
		(plan_id, destination, status, total_budget, current_amount, progress,
		 num_people, departure_date, created_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id) DO UPDATE SET
		 status = excluded.status,
		 current_amount = excluded.current_amount,
		 progress = excluded.progress,
		 updated_at = excluded.updated_at,
		 snapshot = excluded.snapshot`,
		p.ID, p.Destination, string(p.Status), p.TotalBudget, p.CurrentAmount, p.Progress(),
		p.NumPeople, formatTime(p.DepartureDate), formatTime(p.CreatedAt),
		formatTime(time.Now()), string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("saving plan %s: %w", p.ID, err)
	}
	return nil
}

// LoadPlan reads the latest snapshot of a plan.
func (s *Store) LoadPlan(id string) (*model.Plan, error) {
	var snapshot string
	err := s.db.QueryRow("SELECT snapshot FROM plans WHERE plan_id = ?", id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return nil, err
	}

	var p model.Plan
	if err := json.Unmarshal([]byte(snapshot), &p); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", id, err)
	}
	return &p, nil
}

// ListPlans returns every stored plan, most recently updated first.
func (s *Store) ListPlans() ([]PlanRow, error) {
	rows, err := s.db.Query(`SELECT
		plan_id, destination, status, total_budget, current_amount, progress,
		num_people, departure_date, created_at, updated_at
		FROM plans ORDER BY updated_at DESC, plan_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []PlanRow
	for rows.Next() {
		var r PlanRow
		var status, departure, created, updated string
		if err := rows.Scan(&r.ID, &r.Destination, &status, &r.TotalBudget, &r.CurrentAmount,
			&r.Progress, &r.NumPeople, &departure, &created, &updated); err != nil {
			return nil, err
		}
		r.Status = model.PlanStatus(status)
		r.DepartureDate = parseTime(departure)
		r.CreatedAt = parseTime(created)
		r.UpdatedAt = parseTime(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ActivePlans loads the snapshots of every plan still being executed.
func (s *Store) ActivePlans() ([]*model.Plan, error) {
	rows, err := s.db.Query("SELECT plan_id FROM plans WHERE status = ? ORDER BY plan_id", string(model.PlanActive))
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plans := make([]*model.Plan, 0, len(ids))
	for _, id := range ids {
		p, err := s.LoadPlan(id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// DeletePlan removes a plan and its events.
func (s *Store) DeletePlan(id string) error {
	res, err := s.db.Exec("DELETE FROM plans WHERE plan_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrPlanNotFound)
	}
	return nil
}

// AppendEvents journals events. Their plans must already be stored.
func (s *Store) AppendEvents(events []simulator.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO plan_events (plan_id, seq, type, at, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(ev.PlanID, ev.Seq, string(ev.Type), formatTime(ev.At), string(payload)); err != nil {
			return fmt.Errorf("journaling event %d of %s: %w", ev.Seq, ev.PlanID, err)
		}
	}
	return tx.Commit()
}

// LoadEvents returns the journal of a plan in insertion order. A positive
// limit keeps only the most recent events.
func (s *Store) LoadEvents(planID string, limit int) ([]simulator.Event, error) {
	query := `SELECT payload FROM (
		SELECT event_id, payload FROM plan_events WHERE plan_id = ? ORDER BY event_id DESC LIMIT ?
	) ORDER BY event_id`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(query, planID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []simulator.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev simulator.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// PlanCount returns the number of stored plans.
func (s *Store) PlanCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&count)
	return count, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
