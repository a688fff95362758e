package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory/ordercache"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// seedPricedOrder stores an order that was accepted and priced at 135.
func seedPricedOrder(t *testing.T, cache *ordercache.Cache) kernel.OrderKey {
	t.Helper()
	key := seedOrder(t, cache, "butcher-1", "42")
	o, _ := cache.Get(key)

	q, err := kernel.ParseQuantity("1.5kg")
	require.NoError(t, err)
	require.NoError(t, o.ApplyResponse([]order.ItemResponse{
		{ItemID: "A", Fulfilled: q},
		{ItemID: "B", RejectionReason: "out of stock"},
	}, fixedNow.Add(-30*time.Minute)))
	require.NoError(t, o.AssignRevenue(135, map[string]float64{"A": 135, "B": 0}))
	cache.Set(key, o)
	return key
}

func TestCompleteOrderCommandHandler_Handle_PreservesRevenue(t *testing.T) {
	ctx := t.Context()
	cache := ordercache.New()
	key := seedPricedOrder(t, cache)

	notifier := new(MockNotifier)
	notifier.On("Broadcast", liveContext, "butcher-1", mock.MatchedBy(func(e order.Event) bool {
		revenue, ok := e.Order.Revenue()
		return e.Type == order.EventStatusUpdate && ok && revenue.Total == 135
	})).Return(1).Once()

	h := commands.NewCompleteOrderCommandHandler(cache, notifier, keylock.New(), clock, nil)
	cmd, err := commands.NewCompleteOrderCommand("butcher-1", "42", "completed", time.Time{})
	require.NoError(t, err)

	o, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Completed, o.Status())

	cached, _ := cache.Get(key)
	assert.Equal(t, order.Completed, cached.Status())
	require.NotNil(t, cached.CompletedAt())
	assert.Equal(t, fixedNow, *cached.CompletedAt())
	revenue, ok := cached.Revenue()
	require.True(t, ok)
	assert.Equal(t, 135.0, revenue.Total)
	assert.Equal(t, map[string]float64{"A": 135, "B": 0}, revenue.Items)
	notifier.AssertExpectations(t)
}

func TestCompleteOrderCommandHandler_Handle_UsesSuppliedCompletionTime(t *testing.T) {
	ctx := t.Context()
	cache := ordercache.New()
	key := seedPricedOrder(t, cache)

	notifier := new(MockNotifier)
	notifier.On("Broadcast", liveContext, "butcher-1", mock.Anything).Return(0).Once()

	at := fixedNow.Add(-5 * time.Minute)
	h := commands.NewCompleteOrderCommandHandler(cache, notifier, keylock.New(), clock, nil)
	cmd, _ := commands.NewCompleteOrderCommand("butcher-1", "42", "", at)
	_, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	cached, _ := cache.Get(key)
	assert.Equal(t, at, *cached.PreparationEndedAt())
}

func TestCompleteOrderCommandHandler_Handle_NotifiesAfterCallerLeft(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	cache := ordercache.New()
	seedPricedOrder(t, cache)
	notifier := new(MockNotifier)
	notifier.On("Broadcast", liveContext, "butcher-1", mock.Anything).Return(2).Once()

	h := commands.NewCompleteOrderCommandHandler(cache, notifier, keylock.New(), clock, nil)
	cmd, _ := commands.NewCompleteOrderCommand("butcher-1", "42", "completed", time.Time{})

	_, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCompleteOrderCommandHandler_Handle_Errors(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		h := commands.NewCompleteOrderCommandHandler(ordercache.New(), new(MockNotifier), keylock.New(), clock, nil)
		cmd, _ := commands.NewCompleteOrderCommand("butcher-1", "404", "", time.Time{})

		_, err := h.Handle(t.Context(), cmd)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("undecided order", func(t *testing.T) {
		cache := ordercache.New()
		key := seedOrder(t, cache, "butcher-1", "42")
		notifier := new(MockNotifier)
		h := commands.NewCompleteOrderCommandHandler(cache, notifier, keylock.New(), clock, nil)
		cmd, _ := commands.NewCompleteOrderCommand("butcher-1", "42", "", time.Time{})

		_, err := h.Handle(t.Context(), cmd)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))

		cached, _ := cache.Get(key)
		assert.Equal(t, order.New, cached.Status())
		notifier.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not constructed", func(t *testing.T) {
		h := commands.NewCompleteOrderCommandHandler(ordercache.New(), new(MockNotifier), keylock.New(), clock, nil)
		_, err := h.Handle(t.Context(), commands.CompleteOrderCommand{})
		assert.ErrorIs(t, err, commands.ErrCompleteOrderCommandIsNotConstructed)
	})
}
