package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RegisterOrderCommandHandler stores an incoming order and announces it to the tenant's
// terminals.
type RegisterOrderCommandHandler struct {
	cache    ports.OrderCache
	notifier ports.Notifier
	locks    KeyLocker
	now      func() time.Time
	logger   *slog.Logger
}

func NewRegisterOrderCommandHandler(
	cache ports.OrderCache,
	notifier ports.Notifier,
	locks KeyLocker,
	now func() time.Time,
	logger *slog.Logger,
) RegisterOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return RegisterOrderCommandHandler{
		cache:    cache,
		notifier: notifier,
		locks:    locks,
		now:      now,
		logger:   logger.With("component", "register_order"),
	}
}

// Handle refuses an order number that is still live for the tenant. A finished order with
// the same number is replaced.
func (h *RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := cmd.Key()
	unlock := h.locks.Lock(key.String())
	defer unlock()

	if existing, ok := h.cache.Get(key); ok && !existing.Status().IsTerminal() {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"orderNo",
			fmt.Errorf("order %s is already registered with status %s", key, existing.Status()),
		)
	}

	now := h.now()
	orderedAt := cmd.OrderedAt()
	if orderedAt.IsZero() {
		orderedAt = now
	}

	o, err := order.NewOrder(key, cmd.CustomerName(), cmd.Items(), orderedAt)
	if err != nil {
		return nil, err
	}
	h.cache.Set(key, o)

	delivered := h.notifier.Broadcast(context.WithoutCancel(ctx), key.TenantID(), order.NewEvent(order.EventNewOrder, o, now))
	h.logger.Info("order registered",
		"tenant_id", key.TenantID(),
		"order_no", key.OrderNo(),
		"delivered_to", delivered,
	)
	return o, nil
}
