package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// PurgeFinishedOrdersCommandHandler keeps the cache from growing without bound. Live orders
// are never purged.
type PurgeFinishedOrdersCommandHandler struct {
	cache ports.OrderCache
	locks KeyLocker
	now   func() time.Time
}

func NewPurgeFinishedOrdersCommandHandler(
	cache ports.OrderCache,
	locks KeyLocker,
	now func() time.Time,
) PurgeFinishedOrdersCommandHandler {
	if now == nil {
		now = time.Now
	}
	return PurgeFinishedOrdersCommandHandler{cache: cache, locks: locks, now: now}
}

// Handle returns how many orders were evicted.
func (h *PurgeFinishedOrdersCommandHandler) Handle(_ context.Context, cmd PurgeFinishedOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	cutoff := h.now().Add(-cmd.Retention())
	var candidates []kernel.OrderKey
	h.cache.Range(func(o *order.Order) bool {
		if expired(o, cutoff) {
			candidates = append(candidates, o.Key())
		}
		return true
	})

	purged := 0
	for _, key := range candidates {
		if h.purge(key, cutoff) {
			purged++
		}
	}
	return purged, nil
}

// purge re-checks the order under its lock: it may have been re-registered since Range.
func (h *PurgeFinishedOrdersCommandHandler) purge(key kernel.OrderKey, cutoff time.Time) bool {
	unlock := h.locks.Lock(key.String())
	defer unlock()

	o, ok := h.cache.Get(key)
	if !ok || !expired(o, cutoff) {
		return false
	}
	h.cache.Delete(key)
	return true
}

func expired(o *order.Order, cutoff time.Time) bool {
	finishedAt := o.FinishedAt()
	return finishedAt != nil && finishedAt.Before(cutoff)
}
