package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/eventoo/internal/model"
	"github.com/theirongolddev/eventoo/internal/simulator"
)

const (
	requestTimeout = 5 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
)

var (
	// ErrNotFound indicates the plan or report does not exist on the daemon.
	ErrNotFound = errors.New("daemon: not found")
	// ErrConflict indicates the daemon rejected a state change.
	ErrConflict = errors.New("daemon: conflict")
)

// APIError carries the daemon's error message with the HTTP status.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("daemon: %s", e.Message)
}

// Unwrap lets callers match ErrNotFound and ErrConflict.
func (e *APIError) Unwrap() error { return e.kind }

// Client talks to a running daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening on addr
// ("host:port" or a full http:// URL).
func NewClient(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: addr,
		http:    &http.Client{},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Plans lists the plans the daemon is driving.
func (c *Client) Plans(ctx context.Context) ([]PlanSummary, error) {
	var out []PlanSummary
	if err := c.do(ctx, http.MethodGet, "/v1/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Plan fetches one plan with its execution view.
func (c *Client) Plan(ctx context.Context, id string) (*PlanView, error) {
	var view PlanView
	if err := c.do(ctx, http.MethodGet, "/v1/plans/"+id, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CreatePlan generates and activates a plan on the daemon's clock.
func (c *Client) CreatePlan(ctx context.Context, req CreatePlanRequest) (*model.Plan, error) {
	var p model.Plan
	if err := c.do(ctx, http.MethodPost, "/v1/plans", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Release stops driving a plan.
func (c *Client) Release(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/plans/"+id, nil, nil)
}

// Report fetches the closing report of a completed plan.
func (c *Client) Report(ctx context.Context, id string) (*simulator.Report, error) {
	var r simulator.Report
	if err := c.do(ctx, http.MethodGet, "/v1/plans/"+id+"/report", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// StartChallenge starts a ready challenge ahead of its auto-start.
func (c *Client) StartChallenge(ctx context.Context, planID string, challengeID int) (*model.Challenge, error) {
	var ch model.Challenge
	path := fmt.Sprintf("/v1/plans/%s/challenges/%d/start", planID, challengeID)
	if err := c.do(ctx, http.MethodPost, path, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Events returns the daemon's buffered event history.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var out []Event
	if err := c.do(ctx, http.MethodGet, "/v1/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs a request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("daemon: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("daemon: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Error
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			apiErr.kind = ErrNotFound
		case http.StatusConflict:
			apiErr.kind = ErrConflict
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("daemon: parsing response: %w", err)
	}
	return nil
}
