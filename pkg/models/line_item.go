package models

import "github.com/shopspring/decimal"

// LineItem is one row of the request's item grid. LocalID is generated on
// the client side of the wizard and stays stable across edits; the row is
// owned by the in-memory grid until submission.
type LineItem struct {
	LocalID     string          `json:"local_id"`
	ItemID      string          `json:"item_id"     validate:"required"`
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit"        validate:"required"`
	Currency    string          `json:"currency"    validate:"required,len=3"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Recompute refreshes the derived amount from quantity and unit price.
func (li *LineItem) Recompute() {
	li.Amount = li.Quantity.Mul(li.UnitPrice)
}
