package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

type GetOrderQueryHandler struct {
	cache ports.OrderCache
}

func NewGetOrderQueryHandler(cache ports.OrderCache) GetOrderQueryHandler {
	return GetOrderQueryHandler{cache: cache}
}

// Handle returns ObjectNotFound for an order that was never registered or already purged.
func (h GetOrderQueryHandler) Handle(_ context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, ok := h.cache.Get(query.Key())
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", query.Key().String())
	}
	return o, nil
}
