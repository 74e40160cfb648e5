// Package web provides HTTP request and response types for the wizard API.
package web

import (
	"github.com/shopspring/decimal"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/grid"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/wizard"
)

// CreateSessionRequest starts a wizard run. The type pair is optional;
// zero values mean the user has not picked a request type yet.
type CreateSessionRequest struct {
	TypeID    int `json:"type_id"     validate:"min=0"`
	SubTypeID int `json:"sub_type_id" validate:"min=0"`
}

// SetRequestTypeRequest changes the request type of a running session.
type SetRequestTypeRequest struct {
	TypeID    int `json:"type_id"     validate:"required,min=1"`
	SubTypeID int `json:"sub_type_id" validate:"required,min=1"`
}

// SetFieldsRequest merges field values into one step.
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

// ItemRequest is the body for adding or editing a grid row.
type ItemRequest struct {
	ItemID      string          `json:"item_id"     validate:"required"`
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit"        validate:"required"`
	Currency    string          `json:"currency"    validate:"required,len=3"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ToInput converts the request body into a grid mutation input.
func (r ItemRequest) ToInput() grid.ItemInput {
	return grid.ItemInput{
		ItemID:      r.ItemID,
		Description: r.Description,
		Unit:        r.Unit,
		Currency:    r.Currency,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
}

// ApplyPeriodRequest runs the subscription bulk rule over the grid.
type ApplyPeriodRequest struct {
	Length int64 `json:"length" validate:"required,min=1"`
}

// SetAssigneesRequest replaces the approval chain.
type SetAssigneesRequest struct {
	Assignees []models.Assignee `json:"assignees" validate:"required,min=1,dive"`
}

// SetDocumentsRequest replaces the supporting document references.
type SetDocumentsRequest struct {
	Documents []models.Document `json:"documents" validate:"required,min=1,dive"`
}

// ResumeRequest reopens a saved draft in a fresh session.
type ResumeRequest struct {
	RequestNumber string `json:"request_number" validate:"required"`
}

// CascadeChangeRequest records a dropdown value change. An empty value
// clears the field and everything downstream of it.
type CascadeChangeRequest struct {
	Value string `json:"value"`
}

// SessionResponse is the full session view returned by every mutating
// endpoint, so clients never need a follow-up read.
type SessionResponse struct {
	Session   models.WizardSession                `json:"session"`
	Fields    map[models.StepID]map[string]string `json:"fields,omitempty"`
	Items     []models.LineItem                   `json:"items"`
	Assignees []models.Assignee                   `json:"assignees,omitempty"`
	Documents []models.Document                   `json:"documents,omitempty"`
	Dirty     []models.SectionName                `json:"dirty_sections,omitempty"`
	Total     string                              `json:"total"`
	Currency  string                              `json:"currency"`
}

// AdvanceResponse pairs the session view with the validation outcome of
// the attempted forward move.
type AdvanceResponse struct {
	SessionResponse

	Result wizard.Result `json:"result"`
}

// TransformSessionResponse builds the session view from stored state.
func TransformSessionResponse(state *session.State, total, currency string) SessionResponse {
	dirty := make([]models.SectionName, 0, len(state.Dirty))

	for _, section := range models.SectionNames() {
		if state.Dirty[section] {
			dirty = append(dirty, section)
		}
	}

	items := state.Items
	if items == nil {
		items = []models.LineItem{}
	}

	return SessionResponse{
		Session:   state.Session,
		Fields:    state.Fields,
		Items:     items,
		Assignees: state.Assignees,
		Documents: state.Documents,
		Dirty:     dirty,
		Total:     total,
		Currency:  currency,
	}
}
