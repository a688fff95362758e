package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// Notifier pushes order events to a tenant's live terminals. Delivery is best effort and
// returns how many connections the event reached.
type Notifier interface {
	Broadcast(ctx context.Context, tenantID string, event order.Event) int
}

// Transport is one live push stream. Send reports a dead stream through its error.
type Transport interface {
	Send(data []byte) error
	Close()
}

// ConnectionRegistry tracks live push connections under per-user and per-tenant quotas.
type ConnectionRegistry interface {
	// AddConnection registers t and reports whether it was accepted.
	AddConnection(tenantID, userID string, t Transport) bool
	RemoveConnection(tenantID, userID string, t Transport)

	// SweepStale drops every connection older than maxAge and returns how many it dropped.
	SweepStale(maxAge time.Duration) int

	ConnectionCount(tenantID string) int
}
