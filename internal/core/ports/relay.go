package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/core/domain/model/relay"
)

// CentralRelay delivers tenant decisions and menu changes to Central.
//
// Failures are *errs.RelayUnavailableError, or *errs.QuotaExceededError when Central
// asks to back off.
type CentralRelay interface {
	SubmitDecision(ctx context.Context, decision relay.Decision) error
	SubmitMenuChange(ctx context.Context, change menu.Change) error
}

// DecisionQueue holds decisions whose relay failed. Enqueue replaces a queued decision of
// the same order with a new version whose retry count starts at zero.
type DecisionQueue interface {
	Enqueue(decision relay.Decision) uint64
	Remove(key string)

	// RemoveIf removes the item only if it still holds version, so a redelivered payload
	// never takes a newer one with it.
	RemoveIf(key string, version uint64) bool

	// IncrementRetry records a failed redelivery of version. It returns false, leaving the
	// counter as is, when the item is absent, replaced or already at the retry limit.
	IncrementRetry(key string, version uint64) bool

	Items() []relay.Queued[relay.Decision]
	Exhausted() []relay.Queued[relay.Decision]
	Len() int
	MaxRetries() int
}

// MenuChangeQueue is DecisionQueue for menu changes, with a backoff between retries.
type MenuChangeQueue interface {
	Enqueue(change menu.Change) uint64
	Remove(key string)
	RemoveIf(key string, version uint64) bool
	IncrementRetry(key string, version uint64) bool

	// IsReadyForRetry is true for a fresh item and otherwise once the backoff after its last
	// retry has elapsed.
	IsReadyForRetry(item relay.Queued[menu.Change]) bool

	Items() []relay.Queued[menu.Change]
	Exhausted() []relay.Queued[menu.Change]
	Len() int
	MaxRetries() int
}
