// Package services provides the wizard orchestration service used by the
// HTTP layer: session lifecycle, step navigation, grid mutations, section
// saves, and dependent dropdown loading.
package services

import (
	"errors"
	"fmt"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnknownStep          = errors.New("unknown wizard step")
	ErrUnknownSection       = errors.New("unknown draft section")
	ErrPeriodNotApplicable  = errors.New("subscription period does not apply to this request type")
	ErrRequestNumberMissing = errors.New("request number is required")
)

// StepBlockedError indicates a step validator refused a forward move or a
// section save. The first invalid field tells the client what to focus.
type StepBlockedError struct {
	Step  models.StepID
	Field string
}

func (e *StepBlockedError) Error() string {
	return fmt.Sprintf("step %s blocked by required field %s", e.Step, e.Field)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	var blocked *StepBlockedError

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUnknownStep) ||
		errors.Is(err, ErrUnknownSection) ||
		errors.Is(err, ErrPeriodNotApplicable) ||
		errors.Is(err, ErrRequestNumberMissing) ||
		errors.As(err, &blocked)
}

// IsStepBlocked checks if an error carries a failed step validation.
func IsStepBlocked(err error) (*StepBlockedError, bool) {
	var blocked *StepBlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}

	return nil, false
}
