package grid

import (
	"testing"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tonerInput() ItemInput {
	return ItemInput{
		ItemID:      "ITM-001",
		Description: "Toner cartridge",
		Unit:        "pcs",
		Currency:    "IDR",
		Quantity:    decimal.NewFromInt(3),
		UnitPrice:   decimal.NewFromInt(1000),
	}
}

func TestEditor_AddItemComputesAmount(t *testing.T) {
	editor := NewEditor(0)

	item, err := editor.AddItem(tonerInput())
	require.NoError(t, err)

	assert.NotEmpty(t, item.LocalID)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(3000)))
	assert.True(t, editor.Total().Equal(decimal.NewFromInt(3000)))
}

func TestEditor_AddItemRejectsZeroQuantity(t *testing.T) {
	editor := NewEditor(0)

	input := tonerInput()
	input.Quantity = decimal.Zero

	_, err := editor.AddItem(input)

	var fieldErr *FieldError

	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "quantity", fieldErr.Field)
	assert.Equal(t, 0, editor.Len())
}

func TestEditor_AddItemRejectsNegativePrice(t *testing.T) {
	editor := NewEditor(0)

	input := tonerInput()
	input.UnitPrice = decimal.NewFromInt(-1)

	_, err := editor.AddItem(input)

	var fieldErr *FieldError

	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "unit_price", fieldErr.Field)
}

func TestEditor_AddItemAllowsZeroPrice(t *testing.T) {
	editor := NewEditor(0)

	input := tonerInput()
	input.UnitPrice = decimal.Zero

	_, err := editor.AddItem(input)
	assert.NoError(t, err)
}

func TestEditor_EditItemReplacesRowInPlace(t *testing.T) {
	// Adding {quantity: 3, unitPrice: 1000} then editing to quantity 5
	// yields a 5000 total, not 3000 and not 8000.
	editor := NewEditor(0)

	item, err := editor.AddItem(tonerInput())
	require.NoError(t, err)

	input := tonerInput()
	input.Quantity = decimal.NewFromInt(5)

	edited, err := editor.EditItem(item.LocalID, input)
	require.NoError(t, err)

	assert.Equal(t, item.LocalID, edited.LocalID)
	assert.Equal(t, 1, editor.Len())
	assert.True(t, editor.Total().Equal(decimal.NewFromInt(5000)))
}

func TestEditor_EditUnknownItem(t *testing.T) {
	editor := NewEditor(0)

	_, err := editor.EditItem("nope", tonerInput())

	var notFound *ErrItemNotFound

	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.LocalID)
}

func TestEditor_RemoveItemRecomputesTotal(t *testing.T) {
	editor := NewEditor(0)

	first, err := editor.AddItem(tonerInput())
	require.NoError(t, err)

	second := tonerInput()
	second.Quantity = decimal.NewFromInt(1)
	_, err = editor.AddItem(second)
	require.NoError(t, err)

	require.NoError(t, editor.RemoveItem(first.LocalID))
	assert.Equal(t, 1, editor.Len())
	assert.True(t, editor.Total().Equal(decimal.NewFromInt(1000)))
}

func TestEditor_TotalMatchesRowsAfterMutationSequence(t *testing.T) {
	editor := NewEditor(2)

	var kept []string

	for i := 1; i <= 5; i++ {
		input := tonerInput()
		input.Currency = "USD"
		input.Quantity = decimal.NewFromInt(int64(i))
		input.UnitPrice = decimal.RequireFromString("19.99")

		item, err := editor.AddItem(input)
		require.NoError(t, err)

		kept = append(kept, item.LocalID)
	}

	require.NoError(t, editor.RemoveItem(kept[2]))

	input := tonerInput()
	input.Quantity = decimal.NewFromInt(10)
	input.UnitPrice = decimal.NewFromInt(2)
	_, err := editor.EditItem(kept[0], input)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, item := range editor.Items() {
		expected = expected.Add(item.Quantity.Mul(item.UnitPrice))
	}

	assert.True(t, editor.Total().Equal(expected.Round(2)),
		"total %s != sum of rows %s", editor.Total(), expected)
}

func TestEditor_ApplyPeriodUpdatesEveryRow(t *testing.T) {
	editor := NewEditor(0)

	for i := 0; i < 3; i++ {
		_, err := editor.AddItem(tonerInput())
		require.NoError(t, err)
	}

	editor.ApplyPeriod(12)

	for _, item := range editor.Items() {
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(12)))
		assert.True(t, item.Amount.Equal(decimal.NewFromInt(12000)))
	}

	assert.True(t, editor.Total().Equal(decimal.NewFromInt(36000)))
}

func TestEditor_LoadRecomputesDriftedAmounts(t *testing.T) {
	editor := NewEditor(0)

	editor.Load([]models.LineItem{{
		LocalID:   "local-1",
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(500),
		Amount:    decimal.NewFromInt(999), // stale
	}})

	assert.True(t, editor.Total().Equal(decimal.NewFromInt(1000)))
}

func TestCurrencyPrecision(t *testing.T) {
	assert.Equal(t, int32(0), CurrencyPrecision("IDR"))
	assert.Equal(t, int32(2), CurrencyPrecision("USD"))
	assert.Equal(t, int32(2), CurrencyPrecision(""))
}
