// Package models defines the core domain models for the purchase-request wizard.
package models

import "time"

// RequestStatus represents the backend lifecycle state of a purchase request.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"     // Editable, resumable
	RequestStatusRejected  RequestStatus = "rejected"  // Returned by an approver, editable again
	RequestStatusSubmitted RequestStatus = "submitted" // In the approval flow, read-only
)

// Editable reports whether a draft in this status may still be loaded
// into the wizard for editing.
func (s RequestStatus) Editable() bool {
	return s == RequestStatusDraft || s == RequestStatusRejected
}

// StepID identifies one wizard step.
type StepID string

const (
	StepBasicInformation      StepID = "basic_information"
	StepAdditionalInformation StepID = "additional_information" // Conditional, see rules.go
	StepItems                 StepID = "items"
	StepAssignees             StepID = "assignees"
	StepDocuments             StepID = "documents"
	StepSummary               StepID = "summary"
)

// BaseStepOrder is the step sequence without the conditional
// additional-information step.
func BaseStepOrder() []StepID {
	return []StepID{
		StepBasicInformation,
		StepItems,
		StepAssignees,
		StepDocuments,
		StepSummary,
	}
}

// WizardSession is the live state of one wizard run. RequestNumber stays
// empty until the first draft save allocates one on the backend.
type WizardSession struct {
	ID            string        `json:"id"`
	RequestNumber string        `json:"request_number,omitempty"`
	CurrentStepID StepID        `json:"current_step_id"`
	StepOrder     []StepID      `json:"step_order"`
	Status        RequestStatus `json:"status"`
	TypeID        int           `json:"type_id,omitempty"`
	SubTypeID     int           `json:"sub_type_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewWizardSession returns a session positioned on the first step with the
// unconditional step order.
func NewWizardSession(id string) *WizardSession {
	now := time.Now().UTC()

	return &WizardSession{
		ID:            id,
		CurrentStepID: StepBasicInformation,
		StepOrder:     BaseStepOrder(),
		Status:        RequestStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// StepIndex returns the position of id in the session's step order, or -1.
func (s *WizardSession) StepIndex(id StepID) int {
	for i, step := range s.StepOrder {
		if step == id {
			return i
		}
	}

	return -1
}

// HasStep reports whether id is part of the session's current step order.
func (s *WizardSession) HasStep(id StepID) bool {
	return s.StepIndex(id) >= 0
}

// Assignee is one entry of the approval chain attached to a request.
type Assignee struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Name       string `json:"name"        validate:"required"`
	Role       string `json:"role"`
	Sequence   int    `json:"sequence"    validate:"min=1"`
}

// Document is a reference to an uploaded supporting document. Upload
// mechanics belong to the backend; the wizard only tracks the reference.
type Document struct {
	FileID   string `json:"file_id"  validate:"required"`
	FileName string `json:"file_name" validate:"required"`
	Remark   string `json:"remark,omitempty"`
}
