package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

const (
	RelayKindDecision   = "decision"
	RelayKindMenuChange = "menu-change"
)

// FailedRelay is a queued relay that reached the retry limit.
type FailedRelay struct {
	Kind        string    `json:"kind"`
	Key         string    `json:"key"`
	TenantID    string    `json:"tenantId"`
	RetryCount  int       `json:"retryCount"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
	LastRetryAt time.Time `json:"lastRetryAt"`
	Payload     any       `json:"payload"`
}

type ListFailedRelaysQueryHandler struct {
	decisions   ports.DecisionQueue
	menuChanges ports.MenuChangeQueue
}

func NewListFailedRelaysQueryHandler(
	decisions ports.DecisionQueue,
	menuChanges ports.MenuChangeQueue,
) ListFailedRelaysQueryHandler {
	return ListFailedRelaysQueryHandler{decisions: decisions, menuChanges: menuChanges}
}

// Handle lists decisions first, then menu changes, each in queue order.
func (h ListFailedRelaysQueryHandler) Handle(_ context.Context, query ListFailedRelaysQuery) ([]FailedRelay, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	failed := make([]FailedRelay, 0)
	for _, item := range h.decisions.Exhausted() {
		failed = append(failed, FailedRelay{
			Kind:        RelayKindDecision,
			Key:         item.Key,
			TenantID:    item.Payload.TenantID,
			RetryCount:  item.RetryCount,
			EnqueuedAt:  item.EnqueuedAt,
			LastRetryAt: item.LastRetryAt,
			Payload:     item.Payload,
		})
	}
	for _, item := range h.menuChanges.Exhausted() {
		failed = append(failed, FailedRelay{
			Kind:        RelayKindMenuChange,
			Key:         item.Key,
			TenantID:    item.Payload.TenantID,
			RetryCount:  item.RetryCount,
			EnqueuedAt:  item.EnqueuedAt,
			LastRetryAt: item.LastRetryAt,
			Payload:     item.Payload,
		})
	}
	return failed, nil
}
