package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CompleteOrderCommandHandler moves a cached order to Completed. It keeps the revenue
// priced at decision time and does not touch the ledger.
type CompleteOrderCommandHandler struct {
	cache    ports.OrderCache
	notifier ports.Notifier
	locks    KeyLocker
	now      func() time.Time
	logger   *slog.Logger
}

func NewCompleteOrderCommandHandler(
	cache ports.OrderCache,
	notifier ports.Notifier,
	locks KeyLocker,
	now func() time.Time,
	logger *slog.Logger,
) CompleteOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return CompleteOrderCommandHandler{
		cache:    cache,
		notifier: notifier,
		locks:    locks,
		now:      now,
		logger:   logger.With("component", "complete_order"),
	}
}

func (h *CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := cmd.Key()
	unlock := h.locks.Lock(key.String())
	defer unlock()

	o, ok := h.cache.Get(key)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", key.String())
	}

	now := h.now()
	completedAt := cmd.CompletedAt()
	if completedAt.IsZero() {
		completedAt = now
	}

	if err := o.Complete(completedAt); err != nil {
		return nil, err
	}
	h.cache.Set(key, o)

	delivered := h.notifier.Broadcast(context.WithoutCancel(ctx), key.TenantID(), order.NewEvent(order.EventStatusUpdate, o, now))
	h.logger.Info("order completed",
		"tenant_id", key.TenantID(),
		"order_no", key.OrderNo(),
		"delivered_to", delivered,
	)
	return o, nil
}
