// Package queries contains the read side: orders from the cache, the ledger from postgres
// and relays awaiting manual intervention.
package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery looks up one cached order by tenant and order number.
type GetOrderQuery struct {
	key kernel.OrderKey

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(tenantID, orderNo string) (GetOrderQuery, error) {
	key, err := kernel.NewOrderKey(tenantID, orderNo)
	if err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{key: key, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Key() kernel.OrderKey {
	return q.key
}
