package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cascade"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/draft"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/eventbus"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/events"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/grid"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/reference"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/wizard"
)

// Wizard orchestrates the purchase-request wizard: it loads session state
// from the store, routes navigation through the step controller, mutates
// the line item grid, and hands section saves to the draft service.
//
// Dropdown loaders hold fetch closures and in-flight bookkeeping, so they
// live in process memory keyed by session ID rather than in the store.
type Wizard struct {
	store    session.Store
	drafts   *draft.Service
	provider *reference.Provider
	bus      eventbus.EventPublisher
	logger   *slog.Logger

	mu      sync.Mutex
	loaders map[string]*cascade.Loader
}

func NewWizard(
	store session.Store,
	drafts *draft.Service,
	provider *reference.Provider,
	bus eventbus.EventPublisher,
	logger *slog.Logger,
) *Wizard {
	if logger == nil {
		logger = slog.Default()
	}

	return &Wizard{
		store:    store,
		drafts:   drafts,
		provider: provider,
		bus:      bus,
		logger:   logger.With("module", "wizard_service"),
		loaders:  make(map[string]*cascade.Loader),
	}
}

// CreateSession starts a fresh wizard run. When a request type pair is
// already known it is applied immediately so the step order is right from
// the first render.
func (w *Wizard) CreateSession(ctx context.Context, typeID, subTypeID int) (*session.State, error) {
	sess := models.NewWizardSession(uuid.New().String())

	controller := wizard.NewController(sess, nil, w.logger)
	controller.SetConditionalStep(typeID, subTypeID)

	state := session.NewState(sess)
	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}

	w.publish(ctx, sess.ID, events.NewSessionStarted(sess.ID, typeID, subTypeID))

	w.logger.InfoContext(ctx, "Started wizard session",
		"session_id", sess.ID, "type_id", typeID, "sub_type_id", subTypeID)

	return state, nil
}

// GetSession loads one session's full state.
func (w *Wizard) GetSession(ctx context.Context, id string) (*session.State, error) {
	return w.store.Get(ctx, id)
}

// Advance validates the active step and moves forward on success. A
// blocked move is not an error: the result names the first invalid field
// and the session stays put.
func (w *Wizard) Advance(ctx context.Context, id string) (*session.State, wizard.Result, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, wizard.Result{}, err
	}

	controller := w.controller(state)
	result := controller.Advance(stepState(state, state.Session.CurrentStepID))

	if result.Valid {
		if err := w.store.Save(ctx, state); err != nil {
			return nil, wizard.Result{}, fmt.Errorf("save session: %w", err)
		}
	}

	return state, result, nil
}

// Retreat moves one step back without validation.
func (w *Wizard) Retreat(ctx context.Context, id string) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	w.controller(state).Retreat()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// SetRequestType records a new type pair and recomputes the step order.
func (w *Wizard) SetRequestType(ctx context.Context, id string, typeID, subTypeID int) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	w.controller(state).SetConditionalStep(typeID, subTypeID)

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// SetFields merges field values into one step and marks the owning
// section dirty. Unknown steps are rejected before anything is stored.
func (w *Wizard) SetFields(ctx context.Context, id string, step models.StepID, fields map[string]string) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !state.Session.HasStep(step) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	target := state.StepFields(step)
	for name, value := range fields {
		target[name] = value
	}

	if section, ok := models.SectionForStep(step); ok {
		state.MarkDirty(section)
	}

	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// SetAssignees replaces the request's approval chain.
func (w *Wizard) SetAssignees(ctx context.Context, id string, assignees []models.Assignee) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state.Assignees = assignees
	state.MarkDirty(models.SectionAssignees)
	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// SetDocuments replaces the supporting document references.
func (w *Wizard) SetDocuments(ctx context.Context, id string, documents []models.Document) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state.Documents = documents
	state.MarkDirty(models.SectionDocuments)
	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// AddItem appends a row to the session's line item grid.
func (w *Wizard) AddItem(ctx context.Context, id string, input grid.ItemInput) (*session.State, models.LineItem, error) {
	return w.mutateGrid(ctx, id, func(editor *grid.Editor) (models.LineItem, error) {
		return editor.AddItem(input)
	})
}

// EditItem replaces a row in place, keeping its local ID.
func (w *Wizard) EditItem(ctx context.Context, id, localID string, input grid.ItemInput) (*session.State, models.LineItem, error) {
	return w.mutateGrid(ctx, id, func(editor *grid.Editor) (models.LineItem, error) {
		return editor.EditItem(localID, input)
	})
}

// RemoveItem deletes a row.
func (w *Wizard) RemoveItem(ctx context.Context, id, localID string) (*session.State, error) {
	state, _, err := w.mutateGrid(ctx, id, func(editor *grid.Editor) (models.LineItem, error) {
		return models.LineItem{}, editor.RemoveItem(localID)
	})

	return state, err
}

// ApplyPeriod runs the subscription bulk rule: the period length becomes
// every row's quantity. Refused for request types without a period.
func (w *Wizard) ApplyPeriod(ctx context.Context, id string, length int64) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.RequiresSubscriptionPeriod(state.Session.TypeID, state.Session.SubTypeID) {
		return nil, ErrPeriodNotApplicable
	}

	if length <= 0 {
		return nil, fmt.Errorf("%w: period length must be positive", ErrInvalidRequest)
	}

	editor := w.editor(state)
	editor.ApplyPeriod(length)
	state.Items = editor.Items()

	state.StepFields(models.StepAdditionalInformation)["period_length"] = strconv.FormatInt(length, 10)
	state.MarkDirty(models.SectionAdditional)
	state.MarkDirty(models.SectionItems)
	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// Total returns the grid total rounded to the currency's precision, with
// the currency it was computed in.
func (w *Wizard) Total(state *session.State) (string, string) {
	currency := gridCurrency(state.Items)

	return w.editor(state).Total().StringFixed(grid.CurrencyPrecision(currency)), currency
}

// SaveSection persists one section of the draft. The owning step's
// validator gates the save, so an incomplete section never produces a
// network call.
func (w *Wizard) SaveSection(ctx context.Context, id string, sectionName models.SectionName) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	step, ok := stepForSection(sectionName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, sectionName)
	}

	validators := wizard.DefaultValidators(state.Session.TypeID, state.Session.SubTypeID)
	if validate, ok := validators[step]; ok {
		if result := validate(stepState(state, step)); !result.Valid {
			return nil, &StepBlockedError{
				Step:  result.FirstInvalidField.Step,
				Field: result.FirstInvalidField.Field,
			}
		}
	}

	payload := sectionPayload(state, sectionName)

	if err := w.drafts.SaveSection(ctx, &state.Session, sectionName, payload); err != nil {
		return nil, err
	}

	state.MarkSaved(sectionName)
	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// Submit validates every visible step, then hands the draft to the
// approval flow and drops the live session.
func (w *Wizard) Submit(ctx context.Context, id string) (*session.State, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	validators := wizard.DefaultValidators(state.Session.TypeID, state.Session.SubTypeID)
	for _, step := range state.Session.StepOrder {
		validate, ok := validators[step]
		if !ok {
			continue
		}

		if result := validate(stepState(state, step)); !result.Valid {
			return nil, &StepBlockedError{
				Step:  result.FirstInvalidField.Step,
				Field: result.FirstInvalidField.Field,
			}
		}
	}

	total, currency := w.Total(state)

	if err := w.drafts.Submit(ctx, &state.Session, total, currency); err != nil {
		return nil, err
	}

	w.dropLoader(id)

	if err := w.store.Delete(ctx, id); err != nil {
		w.logger.WarnContext(ctx, "Failed to drop submitted session", "session_id", id, "error", err)
	}

	return state, nil
}

// Cancel discards the draft and the live session.
func (w *Wizard) Cancel(ctx context.Context, id string) error {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := w.drafts.Cancel(ctx, &state.Session); err != nil {
		return err
	}

	w.dropLoader(id)

	return w.store.Delete(ctx, id)
}

// Resume loads a saved draft into a fresh session so the user continues
// where they left off, with every saved section prefilled.
func (w *Wizard) Resume(ctx context.Context, requestNumber string) (*session.State, error) {
	record, err := w.drafts.LoadExisting(ctx, requestNumber)
	if err != nil {
		return nil, err
	}

	sess := models.NewWizardSession(uuid.New().String())
	sess.RequestNumber = record.RequestNumber
	sess.Status = record.Status

	controller := wizard.NewController(sess, nil, w.logger)
	controller.SetConditionalStep(record.TypeID, record.SubTypeID)

	state := session.NewState(sess)
	if err := hydrateSections(state, record.Sections); err != nil {
		return nil, err
	}

	if err := w.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save resumed session: %w", err)
	}

	w.logger.InfoContext(ctx, "Resumed draft",
		"session_id", sess.ID, "request_number", requestNumber)

	return state, nil
}

// CascadeChange reacts to a dropdown value change for the basic step's
// vendor chain: downstream fields clear and their options reload.
func (w *Wizard) CascadeChange(ctx context.Context, id string, index int, value string) ([]cascade.FieldState, error) {
	loader, err := w.loader(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := loader.OnFieldChanged(ctx, index, value); err != nil {
		return nil, err
	}

	return loader.States(), nil
}

// CascadeStates returns the current dropdown states of the vendor chain.
func (w *Wizard) CascadeStates(ctx context.Context, id string) ([]cascade.FieldState, error) {
	loader, err := w.loader(ctx, id)
	if err != nil {
		return nil, err
	}

	return loader.States(), nil
}

// HealthCheck reports store reachability for the health endpoint.
func (w *Wizard) HealthCheck(ctx context.Context) (string, bool) {
	if err := w.store.HealthCheck(ctx); err != nil {
		return err.Error(), false
	}

	return "ok", true
}

func (w *Wizard) controller(state *session.State) *wizard.Controller {
	validators := wizard.DefaultValidators(state.Session.TypeID, state.Session.SubTypeID)

	return wizard.NewController(&state.Session, validators, w.logger)
}

func (w *Wizard) editor(state *session.State) *grid.Editor {
	editor := grid.NewEditor(grid.CurrencyPrecision(gridCurrency(state.Items)))
	editor.Load(state.Items)

	return editor
}

func (w *Wizard) mutateGrid(ctx context.Context, id string, mutate func(*grid.Editor) (models.LineItem, error)) (*session.State, models.LineItem, error) {
	state, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, models.LineItem{}, err
	}

	editor := w.editor(state)

	item, err := mutate(editor)
	if err != nil {
		return nil, models.LineItem{}, err
	}

	state.Items = editor.Items()
	state.MarkDirty(models.SectionItems)
	state.Session.UpdatedAt = time.Now().UTC()

	if err := w.store.Save(ctx, state); err != nil {
		return nil, models.LineItem{}, fmt.Errorf("save session: %w", err)
	}

	return state, item, nil
}

// loader returns the session's dropdown loader, creating and root-loading
// it on first use. The store is consulted first so a loader is never
// created for a dead session.
func (w *Wizard) loader(ctx context.Context, id string) (*cascade.Loader, error) {
	w.mu.Lock()
	if loader, ok := w.loaders[id]; ok {
		w.mu.Unlock()

		return loader, nil
	}
	w.mu.Unlock()

	if _, err := w.store.Get(ctx, id); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if loader, ok := w.loaders[id]; ok {
		return loader, nil
	}

	loader := cascade.NewLoader(w.provider.VendorChain(), w.logger)
	loader.LoadRoot(ctx)
	w.loaders[id] = loader

	return loader, nil
}

func (w *Wizard) dropLoader(id string) {
	w.mu.Lock()
	delete(w.loaders, id)
	w.mu.Unlock()
}

func (w *Wizard) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.bus == nil {
		return
	}

	if err := w.bus.Publish(ctx, key, event); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish wizard event",
			"event_type", event.GetType(), "error", err)
	}
}

func stepState(state *session.State, step models.StepID) wizard.StepState {
	return wizard.StepState{
		Step:      step,
		Fields:    state.Fields[step],
		Items:     state.Items,
		Assignees: state.Assignees,
		Documents: state.Documents,
	}
}

func stepForSection(section models.SectionName) (models.StepID, bool) {
	for _, step := range []models.StepID{
		models.StepBasicInformation,
		models.StepAdditionalInformation,
		models.StepItems,
		models.StepAssignees,
		models.StepDocuments,
	} {
		if owned, ok := models.SectionForStep(step); ok && owned == section {
			return step, true
		}
	}

	return "", false
}

func sectionPayload(state *session.State, section models.SectionName) map[string]any {
	switch section {
	case models.SectionBasic:
		return fieldsPayload(state.Fields[models.StepBasicInformation])
	case models.SectionAdditional:
		return fieldsPayload(state.Fields[models.StepAdditionalInformation])
	case models.SectionItems:
		return map[string]any{"items": state.Items}
	case models.SectionAssignees:
		return map[string]any{"assignees": state.Assignees}
	case models.SectionDocuments:
		return map[string]any{"documents": state.Documents}
	default:
		return nil
	}
}

func fieldsPayload(fields map[string]string) map[string]any {
	payload := make(map[string]any, len(fields))
	for name, value := range fields {
		payload[name] = value
	}

	return payload
}

func gridCurrency(items []models.LineItem) string {
	if len(items) == 0 {
		return "IDR"
	}

	return items[0].Currency
}

func hydrateSections(state *session.State, sections map[models.SectionName]json.RawMessage) error {
	for section, raw := range sections {
		switch section {
		case models.SectionBasic, models.SectionAdditional:
			var fields map[string]string
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("decode section %s: %w", section, err)
			}

			step := models.StepBasicInformation
			if section == models.SectionAdditional {
				step = models.StepAdditionalInformation
			}

			target := state.StepFields(step)
			for name, value := range fields {
				target[name] = value
			}
		case models.SectionItems:
			var payload struct {
				Items []models.LineItem `json:"items"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode section %s: %w", section, err)
			}

			editor := grid.NewEditor(grid.CurrencyPrecision(gridCurrency(payload.Items)))
			editor.Load(payload.Items)
			state.Items = editor.Items()
		case models.SectionAssignees:
			var payload struct {
				Assignees []models.Assignee `json:"assignees"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode section %s: %w", section, err)
			}

			state.Assignees = payload.Assignees
		case models.SectionDocuments:
			var payload struct {
				Documents []models.Document `json:"documents"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode section %s: %w", section, err)
			}

			state.Documents = payload.Documents
		}
	}

	return nil
}
