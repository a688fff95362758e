package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

type ListTenantOrdersQueryHandler struct {
	cache ports.OrderCache
}

func NewListTenantOrdersQueryHandler(cache ports.OrderCache) ListTenantOrdersQueryHandler {
	return ListTenantOrdersQueryHandler{cache: cache}
}

// Handle returns the orders sorted by order time. The result is never nil.
func (h ListTenantOrdersQueryHandler) Handle(_ context.Context, query ListTenantOrdersQuery) ([]*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0)
	for _, o := range h.cache.List(query.TenantID()) {
		if !query.IncludeFinished() && o.Status().IsTerminal() {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
