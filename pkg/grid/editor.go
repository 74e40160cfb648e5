// Package grid implements the in-memory line item grid of the wizard's
// items step. Rows live here until submission; the backend never sees a
// partially edited grid.
package grid

import (
	"fmt"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldError reports a rejected item mutation at field granularity.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrItemNotFound indicates no row carries the given local ID.
type ErrItemNotFound struct {
	LocalID string
}

func (e *ErrItemNotFound) Error() string {
	return fmt.Sprintf("line item %s not found", e.LocalID)
}

// ItemInput is the editable slice of a line item.
type ItemInput struct {
	ItemID      string          `json:"item_id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Currency    string          `json:"currency"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Editor owns the grid rows and their derived total. Mutations validate
// before touching the grid, so a rejected call leaves rows unchanged.
type Editor struct {
	items     []models.LineItem
	precision int32
}

// NewEditor creates an empty grid. Precision is the currency's display
// precision used when rounding the total.
func NewEditor(precision int32) *Editor {
	return &Editor{precision: precision}
}

// Load replaces the grid contents, recomputing every row's amount so a
// resumed draft can never carry a drifted total.
func (e *Editor) Load(items []models.LineItem) {
	e.items = make([]models.LineItem, len(items))
	copy(e.items, items)

	for i := range e.items {
		e.items[i].Recompute()
	}
}

// Items returns a copy of the current rows.
func (e *Editor) Items() []models.LineItem {
	out := make([]models.LineItem, len(e.items))
	copy(out, e.items)

	return out
}

// Len returns the row count.
func (e *Editor) Len() int {
	return len(e.items)
}

// AddItem validates the input, assigns a fresh local ID, computes the
// amount, and appends the row.
func (e *Editor) AddItem(input ItemInput) (models.LineItem, error) {
	if err := validateInput(input); err != nil {
		return models.LineItem{}, err
	}

	item := models.LineItem{
		LocalID:     uuid.New().String(),
		ItemID:      input.ItemID,
		Description: input.Description,
		Unit:        input.Unit,
		Currency:    input.Currency,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
	}
	item.Recompute()

	e.items = append(e.items, item)

	return item, nil
}

// EditItem replaces the row in place, keeping its local ID stable.
func (e *Editor) EditItem(localID string, input ItemInput) (models.LineItem, error) {
	idx := e.indexOf(localID)
	if idx < 0 {
		return models.LineItem{}, &ErrItemNotFound{LocalID: localID}
	}

	if err := validateInput(input); err != nil {
		return models.LineItem{}, err
	}

	item := models.LineItem{
		LocalID:     localID,
		ItemID:      input.ItemID,
		Description: input.Description,
		Unit:        input.Unit,
		Currency:    input.Currency,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
	}
	item.Recompute()

	e.items[idx] = item

	return item, nil
}

// RemoveItem deletes the row with the given local ID.
func (e *Editor) RemoveItem(localID string) error {
	idx := e.indexOf(localID)
	if idx < 0 {
		return &ErrItemNotFound{LocalID: localID}
	}

	e.items = append(e.items[:idx], e.items[idx+1:]...)

	return nil
}

// ApplyPeriod is the subscription-type bulk rule: the billing period
// length becomes every row's quantity and all amounts are recomputed.
func (e *Editor) ApplyPeriod(length int64) {
	quantity := decimal.NewFromInt(length)

	for i := range e.items {
		e.items[i].Quantity = quantity
		e.items[i].Recompute()
	}
}

// Total sums every row's amount, rounded to the display precision.
func (e *Editor) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.items {
		total = total.Add(item.Amount)
	}

	return total.Round(e.precision)
}

func (e *Editor) indexOf(localID string) int {
	for i, item := range e.items {
		if item.LocalID == localID {
			return i
		}
	}

	return -1
}

func validateInput(input ItemInput) error {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return &FieldError{Field: "quantity", Message: "must be greater than zero"}
	}

	if input.UnitPrice.IsNegative() {
		return &FieldError{Field: "unit_price", Message: "must not be negative"}
	}

	return nil
}

// CurrencyPrecision returns the display precision for a currency code.
// Zero-decimal currencies round to whole units; everything else uses two
// decimal places.
func CurrencyPrecision(currency string) int32 {
	switch currency {
	case "IDR", "JPY", "KRW", "VND":
		return 0
	default:
		return 2
	}
}
