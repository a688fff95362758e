package relay_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, relay.Backoff(0))
	assert.Equal(t, 2*time.Minute, relay.Backoff(1))
	assert.Equal(t, 4*time.Minute, relay.Backoff(2))
	assert.Equal(t, 8*time.Minute, relay.Backoff(3))
	assert.Equal(t, 16*time.Minute, relay.Backoff(4))
	assert.Equal(t, 16*time.Minute, relay.Backoff(10))
	assert.Equal(t, time.Minute, relay.Backoff(-1))
}

func TestQueued_IsExhausted(t *testing.T) {
	q := relay.Queued[string]{Key: "k", RetryCount: 4}
	assert.False(t, q.IsExhausted(5))

	q.RetryCount = 5
	assert.True(t, q.IsExhausted(5))
}

func TestNewDecision(t *testing.T) {
	key, _ := kernel.NewOrderKey("butcher-1", "77")
	requested, _ := kernel.ParseQuantity("1kg")
	fulfilled, _ := kernel.ParseQuantity("900g")
	a, _ := order.NewItem("A", "Ribeye", "", requested, order.ItemDetails{})
	b, _ := order.NewItem("B", "Mince", "", requested, order.ItemDetails{})
	c, _ := order.NewItem("C", "Liver", "", requested, order.ItemDetails{})
	o, err := order.NewOrder(key, "Alice", []*order.Item{a, b, c}, time.Now())
	require.NoError(t, err)
	require.NoError(t, o.ApplyResponse([]order.ItemResponse{
		{ItemID: "A", Fulfilled: fulfilled},
		{ItemID: "B", RejectionReason: "out of stock"},
	}, time.Now()))
	require.NoError(t, o.AssignRevenue(27, map[string]float64{"A": 27}))
	decidedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	d := relay.NewDecision(o, decidedAt)

	assert.Equal(t, "butcher-1:77", d.Key())
	assert.Equal(t, "preparing", d.Status)
	assert.Equal(t, 27.0, d.Revenue)
	assert.Equal(t, decidedAt, d.DecidedAt)
	assert.Equal(t, []relay.DecisionItem{
		{ItemID: "A", FulfilledQuantity: "900g"},
		{ItemID: "B", RejectionReason: "out of stock"},
	}, d.Items)
}
