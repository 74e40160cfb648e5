// Package draft persists wizard sections to the procurement backend: an
// incremental, resumable draft keyed by request number.
package draft

import (
	"errors"
	"fmt"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
)

var (
	// ErrNotEditable indicates the request left the editable statuses; the
	// user must start a new request, there is nothing to retry.
	ErrNotEditable = errors.New("request is no longer editable")

	// ErrUnknownSection indicates a section name outside the draft contract.
	ErrUnknownSection = errors.New("unknown draft section")

	// ErrNoRequestNumber indicates an operation that needs an allocated
	// request number before it can run.
	ErrNoRequestNumber = errors.New("request number not allocated yet")
)

// NotEditableError carries the offending status alongside ErrNotEditable.
type NotEditableError struct {
	RequestNumber string
	Status        models.RequestStatus
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("request %s is %s and cannot be edited", e.RequestNumber, e.Status)
}

func (e *NotEditableError) Is(target error) bool {
	return target == ErrNotEditable
}

// SectionValidationError reports a section payload that failed its schema
// before any network call was issued.
type SectionValidationError struct {
	Section models.SectionName
	Detail  string
}

func (e *SectionValidationError) Error() string {
	return fmt.Sprintf("section %s payload invalid: %s", e.Section, e.Detail)
}

// IsNotEditable checks if an error indicates a non-editable request.
func IsNotEditable(err error) bool {
	return errors.Is(err, ErrNotEditable)
}

// IsSectionValidation checks if an error is a section payload rejection.
func IsSectionValidation(err error) bool {
	var target *SectionValidationError

	return errors.As(err, &target)
}
