package simulator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPlan is wrapped by every InvalidPlanError.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrUnknownExecution is returned for handles the simulator does not own.
	ErrUnknownExecution = errors.New("unknown execution")
	// ErrChallengeNotReady is returned when starting a challenge that is not ready.
	ErrChallengeNotReady = errors.New("challenge not ready")
	// ErrAlreadyActive is returned when activating a plan twice.
	ErrAlreadyActive = errors.New("plan already activated")
)

// InvalidPlanError lists the structural problems that prevent activation.
type InvalidPlanError struct {
	PlanID  string
	Missing []string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid plan %q: missing or invalid %s", e.PlanID, strings.Join(e.Missing, ", "))
}

func (e *InvalidPlanError) Unwrap() error {
	return ErrInvalidPlan
}
