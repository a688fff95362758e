// Package ports defines the contracts between the fulfillment core and its adapters.
package ports

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderCache is the authoritative in-process store of live orders.
//
// Set replaces the stored snapshot wholesale. The cache offers no compare-and-swap, so
// callers doing read-merge-write must hold the order's key lock for the whole sequence.
// Implementations store and return clones and never fail.
type OrderCache interface {
	Get(key kernel.OrderKey) (*order.Order, bool)
	Set(key kernel.OrderKey, o *order.Order)
	Delete(key kernel.OrderKey)

	// List returns the tenant's orders sorted by order time.
	List(tenantID string) []*order.Order

	// Range calls fn for every stored order until fn returns false.
	Range(fn func(o *order.Order) bool)
}
