package order_test

import (
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func mustQuantity(t *testing.T, s string) kernel.Quantity {
	t.Helper()
	q, err := kernel.ParseQuantity(s)
	require.NoError(t, err)
	return q
}

func newTwoItemOrder(t *testing.T) *order.Order {
	t.Helper()
	key, err := kernel.NewOrderKey("butcher-1", "1001")
	require.NoError(t, err)

	a, err := order.NewItem("A", "Ribeye", "menu-ribeye", mustQuantity(t, "2kg"), order.ItemDetails{Cut: "steak"})
	require.NoError(t, err)
	b, err := order.NewItem("B", "Minced beef", "", mustQuantity(t, "500g"), order.ItemDetails{})
	require.NoError(t, err)

	o, err := order.NewOrder(key, "Alice", []*order.Item{a, b}, orderedAt)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create order in new status", func(t *testing.T) {
		o := newTwoItemOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, "butcher-1:1001", o.ID())
		assert.Equal(t, "butcher-1", o.TenantID())
		assert.Equal(t, "1001", o.OrderNo())
		assert.Equal(t, "Alice", o.CustomerName())
		assert.Equal(t, order.New, o.Status())
		assert.Equal(t, orderedAt, o.OrderedAt())
		assert.Len(t, o.Items(), 2)
		assert.Nil(t, o.PreparationStartedAt())

		_, priced := o.Revenue()
		assert.False(t, priced)

		b, ok := o.Item("B")
		require.True(t, ok)
		assert.Equal(t, "B", b.MenuItemID())
	})

	t.Run("should fail without key or items", func(t *testing.T) {
		o, err := order.NewOrder(kernel.OrderKey{}, "Alice", nil, orderedAt)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "order key")
		assert.Contains(t, err.Error(), "items")
	})

	t.Run("should fail with duplicated item ids", func(t *testing.T) {
		key, _ := kernel.NewOrderKey("butcher-1", "1002")
		a, _ := order.NewItem("A", "Ribeye", "", mustQuantity(t, "1kg"), order.ItemDetails{})
		dup, _ := order.NewItem("A", "Ribeye", "", mustQuantity(t, "1kg"), order.ItemDetails{})

		_, err := order.NewOrder(key, "Bob", []*order.Item{a, dup}, orderedAt)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should fail with a zero value order", func(t *testing.T) {
		var o order.Order
		assert.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrder_ApplyResponse(t *testing.T) {
	now := orderedAt.Add(5 * time.Minute)

	t.Run("should prepare on mixed accept and reject", func(t *testing.T) {
		o := newTwoItemOrder(t)

		err := o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", Fulfilled: mustQuantity(t, "1.5kg")},
			{ItemID: "B", RejectionReason: "out of stock"},
		}, now)

		require.NoError(t, err)
		assert.Equal(t, order.Preparing, o.Status())
		assert.Empty(t, o.RejectionReason())

		a, _ := o.Item("A")
		assert.True(t, a.IsAccepted())
		assert.Equal(t, "1.5kg", a.Fulfilled().String())
		assert.Empty(t, a.RejectionReason())

		b, _ := o.Item("B")
		assert.True(t, b.IsRejected())
		assert.Equal(t, "out of stock", b.RejectionReason())
		assert.True(t, b.Fulfilled().IsZero())

		require.NotNil(t, o.PreparationStartedAt())
		assert.Equal(t, now, *o.PreparationStartedAt())
	})

	t.Run("should reject with first rejected item's reason", func(t *testing.T) {
		o := newTwoItemOrder(t)

		err := o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", RejectionReason: "damaged"},
			{ItemID: "B", RejectionReason: "out of stock"},
		}, now)

		require.NoError(t, err)
		assert.Equal(t, order.Rejected, o.Status())
		assert.Equal(t, "damaged", o.RejectionReason())
		assert.True(t, o.AllItemsRejected())
	})

	t.Run("should keep outcomes of items not mentioned", func(t *testing.T) {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", RejectionReason: "damaged"},
		}, now))
		assert.Equal(t, order.Preparing, o.Status())

		require.NoError(t, o.ApplyResponse([]order.ItemResponse{
			{ItemID: "B", RejectionReason: "out of stock"},
		}, now))

		assert.Equal(t, order.Rejected, o.Status())
		assert.Equal(t, "damaged", o.RejectionReason())
	})

	t.Run("should clear rejection when item is accepted later", func(t *testing.T) {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", RejectionReason: "damaged"},
		}, now))

		require.NoError(t, o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", Fulfilled: mustQuantity(t, "1kg")},
		}, now))

		a, _ := o.Item("A")
		assert.True(t, a.IsAccepted())
		assert.Empty(t, a.RejectionReason())
	})

	t.Run("should reject unknown items and ambiguous responses without changes", func(t *testing.T) {
		o := newTwoItemOrder(t)

		err := o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", Fulfilled: mustQuantity(t, "1kg")},
			{ItemID: "Z", RejectionReason: "damaged"},
			{ItemID: "B", Fulfilled: mustQuantity(t, "1kg"), RejectionReason: "damaged"},
		}, now)

		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Equal(t, order.New, o.Status())
		a, _ := o.Item("A")
		assert.Equal(t, order.Pending, a.Decision())
	})

	t.Run("should refuse decisions on terminal orders", func(t *testing.T) {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse([]order.ItemResponse{
			{ItemID: "A", RejectionReason: "damaged"},
			{ItemID: "B", RejectionReason: "damaged"},
		}, now))

		err := o.ApplyResponse([]order.ItemResponse{{ItemID: "A", Fulfilled: mustQuantity(t, "1kg")}}, now)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_StatusFollowsRejections(t *testing.T) {
	cases := [][]order.ItemResponse{
		{{ItemID: "A", RejectionReason: "x"}},
		{{ItemID: "A", RejectionReason: "x"}, {ItemID: "B", RejectionReason: "y"}},
		{{ItemID: "A", Fulfilled: kernelQuantity("1kg")}, {ItemID: "B", RejectionReason: "y"}},
		{{ItemID: "B", Fulfilled: kernelQuantity("3")}},
	}

	for _, responses := range cases {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse(responses, orderedAt))

		assert.Equal(t, o.AllItemsRejected(), o.Status() == order.Rejected)
	}
}

func kernelQuantity(s string) kernel.Quantity {
	q, _ := kernel.ParseQuantity(s)
	return q
}

func TestOrder_AssignRevenue(t *testing.T) {
	t.Run("should refuse undecided orders", func(t *testing.T) {
		o := newTwoItemOrder(t)
		assert.ErrorIs(t, o.AssignRevenue(10, nil), errs.ErrValueIsInvalid)
	})

	t.Run("should store a copy", func(t *testing.T) {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse([]order.ItemResponse{{ItemID: "A", Fulfilled: mustQuantity(t, "1kg")}}, orderedAt))

		items := map[string]float64{"A": 85}
		require.NoError(t, o.AssignRevenue(85, items))
		items["A"] = 0

		revenue, priced := o.Revenue()
		require.True(t, priced)
		assert.Equal(t, 85.0, revenue.Total)
		assert.Equal(t, 85.0, revenue.Items["A"])
	})
}

func TestOrder_Complete(t *testing.T) {
	t.Run("should keep revenue through completion", func(t *testing.T) {
		o := newTwoItemOrder(t)
		require.NoError(t, o.ApplyResponse([]order.ItemResponse{{ItemID: "A", Fulfilled: mustQuantity(t, "1.5kg")}}, orderedAt))
		require.NoError(t, o.AssignRevenue(127.5, map[string]float64{"A": 127.5}))
		endedAt := orderedAt.Add(time.Hour)

		require.NoError(t, o.Complete(endedAt))

		assert.Equal(t, order.Completed, o.Status())
		require.NotNil(t, o.CompletedAt())
		assert.Equal(t, endedAt, *o.CompletedAt())
		assert.Equal(t, endedAt, *o.PreparationEndedAt())
		revenue, priced := o.Revenue()
		require.True(t, priced)
		assert.Equal(t, 127.5, revenue.Total)
		assert.Equal(t, map[string]float64{"A": 127.5}, revenue.Items)

		assert.ErrorIs(t, o.AssignRevenue(0, nil), order.ErrRevenueAlreadyFixed)
	})

	t.Run("should refuse new orders", func(t *testing.T) {
		o := newTwoItemOrder(t)
		assert.Error(t, o.Complete(orderedAt))
		assert.Equal(t, order.New, o.Status())
	})
}

func TestOrder_Clone(t *testing.T) {
	o := newTwoItemOrder(t)
	require.NoError(t, o.ApplyResponse([]order.ItemResponse{{ItemID: "A", Fulfilled: mustQuantity(t, "1kg")}}, orderedAt))
	require.NoError(t, o.AssignRevenue(10, map[string]float64{"A": 10}))

	c := o.Clone()
	require.NoError(t, c.ApplyResponse([]order.ItemResponse{{ItemID: "A", RejectionReason: "damaged"}}, orderedAt))
	require.NoError(t, c.AssignRevenue(0, map[string]float64{}))

	a, _ := o.Item("A")
	assert.True(t, a.IsAccepted())
	revenue, _ := o.Revenue()
	assert.Equal(t, 10.0, revenue.Total)
}

func TestOrder_MarshalJSON(t *testing.T) {
	o := newTwoItemOrder(t)
	require.NoError(t, o.ApplyResponse([]order.ItemResponse{
		{ItemID: "A", Fulfilled: mustQuantity(t, "1.5kg")},
		{ItemID: "B", RejectionReason: "out of stock"},
	}, orderedAt))
	require.NoError(t, o.AssignRevenue(127.5, map[string]float64{"A": 127.5, "B": 0}))

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "butcher-1:1001", got["id"])
	assert.Equal(t, "preparing", got["status"])
	assert.Equal(t, 127.5, got["revenue"])
	assert.NotContains(t, got, "rejectionReason")

	items := got["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "1.5kg", first["fulfilledQuantity"])
	assert.Equal(t, "2kg", first["quantity"])
	assert.Equal(t, "accepted", first["outcome"])
	second := items[1].(map[string]any)
	assert.Equal(t, "out of stock", second["rejectionReason"])
	assert.NotContains(t, second, "fulfilledQuantity")
}
