// Package ordercache is the in-memory OrderCache. State lives for the life of the process.
package ordercache

import (
	"sort"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Cache maps (tenant, order number) to an order snapshot. Snapshots are cloned on the way
// in and out so callers never share state with the store.
type Cache struct {
	mu     sync.RWMutex
	orders map[string]map[string]*order.Order
}

func New() *Cache {
	return &Cache{orders: make(map[string]map[string]*order.Order)}
}

func (c *Cache) Get(key kernel.OrderKey) (*order.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	o, ok := c.orders[key.TenantID()][key.OrderNo()]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Set replaces the stored snapshot. Invalid orders are ignored.
func (c *Cache) Set(key kernel.OrderKey, o *order.Order) {
	if key.IsZero() || o.Validate() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tenant, ok := c.orders[key.TenantID()]
	if !ok {
		tenant = make(map[string]*order.Order)
		c.orders[key.TenantID()] = tenant
	}
	tenant[key.OrderNo()] = o.Clone()
}

func (c *Cache) Delete(key kernel.OrderKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tenant, ok := c.orders[key.TenantID()]
	if !ok {
		return
	}
	delete(tenant, key.OrderNo())
	if len(tenant) == 0 {
		delete(c.orders, key.TenantID())
	}
}

func (c *Cache) List(tenantID string) []*order.Order {
	c.mu.RLock()
	out := make([]*order.Order, 0, len(c.orders[tenantID]))
	for _, o := range c.orders[tenantID] {
		out = append(out, o.Clone())
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderedAt().Equal(out[j].OrderedAt()) {
			return out[i].OrderNo() < out[j].OrderNo()
		}
		return out[i].OrderedAt().Before(out[j].OrderedAt())
	})
	return out
}

// Range iterates over clones taken up front, so fn may call back into the cache.
func (c *Cache) Range(fn func(o *order.Order) bool) {
	c.mu.RLock()
	snapshot := make([]*order.Order, 0)
	for _, tenant := range c.orders {
		for _, o := range tenant {
			snapshot = append(snapshot, o.Clone())
		}
	}
	c.mu.RUnlock()

	for _, o := range snapshot {
		if !fn(o) {
			return
		}
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, tenant := range c.orders {
		n += len(tenant)
	}
	return n
}
