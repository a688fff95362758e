package ledger_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decidedOrder(t *testing.T) *order.Order {
	t.Helper()
	key, _ := kernel.NewOrderKey("butcher-1", "1001")
	requested, _ := kernel.ParseQuantity("2kg")
	fulfilled, _ := kernel.ParseQuantity("1.5kg")
	a, _ := order.NewItem("A", "Ribeye", "ribeye", requested, order.ItemDetails{})
	b, _ := order.NewItem("B", "Mince", "mince", requested, order.ItemDetails{})
	o, err := order.NewOrder(key, "Alice", []*order.Item{a, b}, time.Now())
	require.NoError(t, err)
	require.NoError(t, o.ApplyResponse([]order.ItemResponse{
		{ItemID: "A", Fulfilled: fulfilled},
		{ItemID: "B", RejectionReason: "out of stock"},
	}, time.Now()))
	return o
}

func TestNewEntry(t *testing.T) {
	recordedAt := time.Date(2026, 2, 28, 23, 10, 0, 0, time.UTC)

	t.Run("should record the priced decision", func(t *testing.T) {
		o := decidedOrder(t)
		require.NoError(t, o.AssignRevenue(127.5, map[string]float64{"A": 127.5, "B": 0}))

		e, err := ledger.NewEntry(o, recordedAt)

		require.NoError(t, err)
		require.NoError(t, e.Validate())
		assert.Equal(t, "2026-02-28", e.Date())
		assert.Equal(t, "butcher-1:1001", e.Key().String())
		assert.Equal(t, order.Preparing, e.Status())
		assert.Equal(t, 127.5, e.Revenue())
		require.Len(t, e.Lines(), 2)
		assert.Equal(t, "1.5kg", e.Lines()[0].FulfilledQuantity)
		assert.Equal(t, 127.5, e.Lines()[0].Revenue)
		assert.Equal(t, "out of stock", e.Lines()[1].RejectionReason)
	})

	t.Run("should require revenue", func(t *testing.T) {
		_, err := ledger.NewEntry(decidedOrder(t), recordedAt)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRestoreEntry(t *testing.T) {
	key, _ := kernel.NewOrderKey("butcher-1", "1001")
	lines := []ledger.Line{{ItemID: "A", Revenue: 10}, {ItemID: "B", Revenue: 2.5}}

	e, err := ledger.RestoreEntry(kernel.NewUUID(), key, "2026-02-28", "Alice", order.Preparing, 12.5, lines, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 10, "B": 2.5}, e.ItemRevenues())

	_, err = ledger.RestoreEntry(kernel.NewUUID(), key, "28.02.2026", "Alice", order.Preparing, 0, nil, "", time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
