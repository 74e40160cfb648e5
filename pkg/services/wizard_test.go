package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/backend"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cache"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/draft"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/grid"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/reference"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
)

type backendStub struct {
	mu       sync.Mutex
	requests []string
	record   *draft.Record
	options  []map[string]string
}

func (f *backendStub) handler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		var data any

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/purchase-requests":
			data = map[string]string{"requestNumber": "PR-2026-0100"}
		case r.Method == http.MethodGet && f.record != nil && r.URL.Path == "/purchase-requests/"+f.record.RequestNumber:
			data = f.record
		case r.Method == http.MethodGet:
			options := f.options
			if options == nil {
				options = []map[string]string{{"value": "V-1", "label": "Vendor One"}}
			}

			data = options
		default:
			data = map[string]bool{"ok": true}
		}

		raw, err := json.Marshal(data)
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(backend.Envelope{
			StatusCode: http.StatusOK,
			Data:       raw,
		}))
	}
}

func (f *backendStub) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

func newTestWizard(t *testing.T, stub *backendStub) (*Wizard, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	client := backend.NewClient(server.URL, nil)
	drafts := draft.NewService(client, nil, nil)
	provider := reference.NewProvider(client, cache.NewMemoryCache(), nil)

	return NewWizard(session.NewMemoryStore(), drafts, provider, nil, nil), server
}

func fillBasicStep(t *testing.T, w *Wizard, id string) {
	t.Helper()

	_, err := w.SetFields(context.Background(), id, models.StepBasicInformation, map[string]string{
		"subject":            "Annual connectivity renewal",
		"department_id":      "D-07",
		"vendor_id":          "V-1",
		"term_of_payment_id": "TOP-30",
	})
	require.NoError(t, err)
}

func addItem(t *testing.T, w *Wizard, id string, quantity, unitPrice int64) models.LineItem {
	t.Helper()

	_, item, err := w.AddItem(context.Background(), id, grid.ItemInput{
		ItemID:      "ITM-1",
		Description: "Bandwidth 100Mbps",
		Unit:        "month",
		Currency:    "IDR",
		Quantity:    decimal.NewFromInt(quantity),
		UnitPrice:   decimal.NewFromInt(unitPrice),
	})
	require.NoError(t, err)

	return item
}

func TestWizard_CreateSessionAppliesConditionalStep(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 6, 2)
	require.NoError(t, err)

	assert.True(t, state.Session.HasStep(models.StepAdditionalInformation))
	assert.Equal(t, models.StepBasicInformation, state.Session.CurrentStepID)
}

func TestWizard_AdvanceBlockedReportsFirstField(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	_, result, err := w.Advance(context.Background(), state.Session.ID)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.NotNil(t, result.FirstInvalidField)
	assert.Equal(t, "subject", result.FirstInvalidField.Field)

	reloaded, err := w.GetSession(context.Background(), state.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepBasicInformation, reloaded.Session.CurrentStepID)
}

func TestWizard_AdvanceMovesForwardWhenValid(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	fillBasicStep(t, w, state.Session.ID)

	updated, result, err := w.Advance(context.Background(), state.Session.ID)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, models.StepItems, updated.Session.CurrentStepID)

	// And persisted.
	reloaded, err := w.GetSession(context.Background(), state.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepItems, reloaded.Session.CurrentStepID)
}

func TestWizard_RetreatNeverValidates(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	fillBasicStep(t, w, state.Session.ID)

	_, _, err = w.Advance(context.Background(), state.Session.ID)
	require.NoError(t, err)

	back, err := w.Retreat(context.Background(), state.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepBasicInformation, back.Session.CurrentStepID)
}

func TestWizard_GridMutations(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	id := state.Session.ID

	item := addItem(t, w, id, 3, 1000)
	assert.Equal(t, "3000", item.Amount.String())

	_, edited, err := w.EditItem(context.Background(), id, item.LocalID, grid.ItemInput{
		ItemID:      item.ItemID,
		Description: item.Description,
		Unit:        item.Unit,
		Currency:    item.Currency,
		Quantity:    decimal.NewFromInt(5),
		UnitPrice:   item.UnitPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, item.LocalID, edited.LocalID)
	assert.Equal(t, "5000", edited.Amount.String())

	updated, err := w.RemoveItem(context.Background(), id, item.LocalID)
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
}

func TestWizard_ApplyPeriodOnlyForSubscriptionTypes(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	// (6,1) carries the subscribe flavour.
	state, err := w.CreateSession(context.Background(), 6, 1)
	require.NoError(t, err)

	id := state.Session.ID
	addItem(t, w, id, 1, 1000)

	updated, err := w.ApplyPeriod(context.Background(), id, 12)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "12", updated.Items[0].Quantity.String())
	assert.Equal(t, "12000", updated.Items[0].Amount.String())
	assert.Equal(t, "12", updated.Fields[models.StepAdditionalInformation]["period_length"])

	plain, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = w.ApplyPeriod(context.Background(), plain.Session.ID, 12)
	assert.ErrorIs(t, err, ErrPeriodNotApplicable)
	assert.True(t, IsValidationError(err))
}

func TestWizard_SaveSectionGatedByStepValidator(t *testing.T) {
	stub := &backendStub{}
	w, _ := newTestWizard(t, stub)

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = w.SaveSection(context.Background(), state.Session.ID, models.SectionItems)

	blocked, ok := IsStepBlocked(err)
	require.True(t, ok)
	assert.Equal(t, models.StepItems, blocked.Step)

	for _, call := range stub.calls() {
		assert.NotContains(t, call, "/purchase-requests", "blocked save must never reach the wire")
	}
}

func TestWizard_SaveSectionPersistsAndClearsDirty(t *testing.T) {
	stub := &backendStub{}
	w, _ := newTestWizard(t, stub)

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	id := state.Session.ID
	fillBasicStep(t, w, id)

	updated, err := w.SaveSection(context.Background(), id, models.SectionBasic)
	require.NoError(t, err)

	assert.Equal(t, "PR-2026-0100", updated.Session.RequestNumber)
	assert.NotContains(t, updated.Dirty, models.SectionBasic)
	assert.Contains(t, stub.calls(), "POST /purchase-requests/PR-2026-0100/sections/basic")
}

func TestWizard_SubmitValidatesEveryStep(t *testing.T) {
	stub := &backendStub{}
	w, _ := newTestWizard(t, stub)

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	id := state.Session.ID
	fillBasicStep(t, w, id)
	addItem(t, w, id, 3, 1000)

	_, err = w.Submit(context.Background(), id)
	require.Error(t, err)

	blocked, ok := IsStepBlocked(err)
	require.True(t, ok)
	assert.Equal(t, models.StepAssignees, blocked.Step)
}

func TestWizard_SubmitDropsSession(t *testing.T) {
	stub := &backendStub{}
	w, _ := newTestWizard(t, stub)

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	id := state.Session.ID
	fillBasicStep(t, w, id)
	addItem(t, w, id, 3, 1000)

	_, err = w.SaveSection(context.Background(), id, models.SectionBasic)
	require.NoError(t, err)

	_, err = w.SetAssignees(context.Background(), id, []models.Assignee{
		{EmployeeID: "E-1", Name: "Reviewer", Sequence: 1},
	})
	require.NoError(t, err)

	_, err = w.SetDocuments(context.Background(), id, []models.Document{
		{FileID: "F-1", FileName: "quote.pdf"},
	})
	require.NoError(t, err)

	submitted, err := w.Submit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusSubmitted, submitted.Session.Status)

	_, err = w.GetSession(context.Background(), id)
	assert.True(t, session.IsSessionNotFound(err))
}

func TestWizard_ResumeHydratesSections(t *testing.T) {
	stub := &backendStub{record: &draft.Record{
		RequestNumber: "PR-2026-0100",
		Status:        models.RequestStatusRejected,
		TypeID:        6,
		SubTypeID:     2,
		Sections: map[models.SectionName]json.RawMessage{
			models.SectionBasic: json.RawMessage(`{"subject":"Laptops","department_id":"D-01","vendor_id":"V-1","term_of_payment_id":"TOP-30"}`),
			models.SectionItems: json.RawMessage(`{"items":[{"local_id":"row-1","item_id":"ITM-1","description":"Laptop","unit":"pc","currency":"IDR","quantity":"2","unit_price":"1500"}]}`),
		},
	}}
	w, _ := newTestWizard(t, stub)

	state, err := w.Resume(context.Background(), "PR-2026-0100")
	require.NoError(t, err)

	assert.Equal(t, "PR-2026-0100", state.Session.RequestNumber)
	assert.True(t, state.Session.HasStep(models.StepAdditionalInformation))
	assert.Equal(t, "Laptops", state.Fields[models.StepBasicInformation]["subject"])

	require.Len(t, state.Items, 1)
	assert.Equal(t, "3000", state.Items[0].Amount.String(), "amount recomputed on load")
}

func TestWizard_CascadeStatesLoadRoot(t *testing.T) {
	stub := &backendStub{}
	w, _ := newTestWizard(t, stub)

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	states, err := w.CascadeStates(context.Background(), state.Session.ID)
	require.NoError(t, err)
	require.Len(t, states, 4)
	assert.Equal(t, "vendor", states[0].Field)

	_, err = w.CascadeStates(context.Background(), "missing")
	assert.True(t, session.IsSessionNotFound(err))
}

func TestWizard_TotalUsesCurrencyPrecision(t *testing.T) {
	w, _ := newTestWizard(t, &backendStub{})

	state, err := w.CreateSession(context.Background(), 1, 1)
	require.NoError(t, err)

	addItem(t, w, state.Session.ID, 3, 1000)

	loaded, err := w.GetSession(context.Background(), state.Session.ID)
	require.NoError(t, err)

	total, currency := w.Total(loaded)
	assert.Equal(t, "3000", total)
	assert.Equal(t, "IDR", currency)
}
