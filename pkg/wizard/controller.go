// Package wizard owns the purchase-request wizard's step sequencing:
// which steps exist for a given request type, which one is active, and
// how validation gates forward navigation.
package wizard

import (
	"log/slog"
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
)

// FieldRef points a caller at the first offending field of a failed step
// validation so it can scroll/focus it. Validators never touch rendering.
type FieldRef struct {
	Step  models.StepID `json:"step"`
	Field string        `json:"field"`
}

// Result is the outcome of validating one step.
type Result struct {
	Valid             bool      `json:"valid"`
	FirstInvalidField *FieldRef `json:"first_invalid_field,omitempty"`
}

// StepState is the read-only snapshot a validator inspects. Only the
// slices relevant to the step in question need to be populated.
type StepState struct {
	Step      models.StepID
	Fields    map[string]string
	Items     []models.LineItem
	Assignees []models.Assignee
	Documents []models.Document
}

// Validator is a pure predicate gating forward navigation out of a step.
type Validator func(state StepState) Result

// Controller mutates a wizard session according to the transition rules:
// forward moves are validator-gated, backward moves always succeed, and
// the conditional additional-information step is inserted or removed when
// the request type changes.
type Controller struct {
	session    *models.WizardSession
	validators map[models.StepID]Validator
	logger     *slog.Logger
}

func NewController(session *models.WizardSession, validators map[models.StepID]Validator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		session:    session,
		validators: validators,
		logger:     logger.With("module", "wizard_controller", "session_id", session.ID),
	}
}

// Session exposes the controlled session.
func (c *Controller) Session() *models.WizardSession {
	return c.session
}

// Advance validates the active step and, on success, moves to the next
// step in the visible order. A failed validation leaves the session
// untouched; the returned result carries the first invalid field.
func (c *Controller) Advance(state StepState) Result {
	state.Step = c.session.CurrentStepID

	result := c.validate(state)
	if !result.Valid {
		c.logger.Debug("Advance blocked by step validation",
			"step", c.session.CurrentStepID,
			"field", result.FirstInvalidField)

		return result
	}

	idx := c.session.StepIndex(c.session.CurrentStepID)
	if idx >= 0 && idx < len(c.session.StepOrder)-1 {
		c.moveTo(c.session.StepOrder[idx+1])
	}

	return result
}

// Retreat moves to the previous visible step. Backward navigation is
// never validated; on the first step it is a no-op.
func (c *Controller) Retreat() {
	idx := c.session.StepIndex(c.session.CurrentStepID)
	if idx > 0 {
		c.moveTo(c.session.StepOrder[idx-1])
	}
}

// SetConditionalStep records the chosen request type and recomputes
// whether the additional-information step belongs to the step order. The
// step sits directly after basic information. Re-applying the same pair
// is idempotent. If the active step is the one being removed, the
// controller falls back to the nearest preceding remaining step.
func (c *Controller) SetConditionalStep(typeID, subTypeID int) {
	c.session.TypeID = typeID
	c.session.SubTypeID = subTypeID

	_, want := models.ConditionalSectionFor(typeID, subTypeID)
	has := c.session.HasStep(models.StepAdditionalInformation)

	switch {
	case want && !has:
		c.insertAdditionalStep()
	case !want && has:
		c.removeAdditionalStep()
	}

	c.session.UpdatedAt = time.Now().UTC()
}

func (c *Controller) insertAdditionalStep() {
	anchor := c.session.StepIndex(models.StepBasicInformation)
	at := anchor + 1

	order := make([]models.StepID, 0, len(c.session.StepOrder)+1)
	order = append(order, c.session.StepOrder[:at]...)
	order = append(order, models.StepAdditionalInformation)
	order = append(order, c.session.StepOrder[at:]...)
	c.session.StepOrder = order

	c.logger.Debug("Inserted additional information step",
		"type_id", c.session.TypeID, "sub_type_id", c.session.SubTypeID)
}

func (c *Controller) removeAdditionalStep() {
	idx := c.session.StepIndex(models.StepAdditionalInformation)

	if c.session.CurrentStepID == models.StepAdditionalInformation {
		// Never leave the session pointing at a step that no longer exists.
		c.session.CurrentStepID = c.session.StepOrder[idx-1]
	}

	c.session.StepOrder = append(c.session.StepOrder[:idx], c.session.StepOrder[idx+1:]...)

	c.logger.Debug("Removed additional information step",
		"type_id", c.session.TypeID, "sub_type_id", c.session.SubTypeID)
}

func (c *Controller) moveTo(step models.StepID) {
	c.session.CurrentStepID = step
	c.session.UpdatedAt = time.Now().UTC()
}

func (c *Controller) validate(state StepState) Result {
	validator, ok := c.validators[state.Step]
	if !ok {
		return Result{Valid: true}
	}

	return validator(state)
}
