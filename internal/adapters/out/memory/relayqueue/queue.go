// Package relayqueue holds relays to Central that failed and wait for a retry worker.
// Both queues live in process memory only.
package relayqueue

import (
	"sort"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/core/domain/model/relay"
)

// DefaultMaxRetries is the retry limit after which an item waits for manual intervention.
const DefaultMaxRetries = 5

type queue[P any] struct {
	mu         sync.Mutex
	items      map[string]*relay.Queued[P]
	seq        uint64
	keyOf      func(P) string
	maxRetries int
	now        func() time.Time
}

func newQueue[P any](keyOf func(P) string, maxRetries int, now func() time.Time) *queue[P] {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if now == nil {
		now = time.Now
	}
	return &queue[P]{
		items:      make(map[string]*relay.Queued[P]),
		keyOf:      keyOf,
		maxRetries: maxRetries,
		now:        now,
	}
}

// Enqueue stores payload under its key and returns the version it was given. A payload
// already queued under the key is replaced and the retry counter starts over.
func (q *queue[P]) Enqueue(payload P) uint64 {
	key := q.keyOf(payload)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	q.items[key] = &relay.Queued[P]{
		Key:        key,
		Payload:    payload,
		Version:    q.seq,
		EnqueuedAt: q.now(),
	}
	return q.seq
}

func (q *queue[P]) Remove(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.items, key)
}

// RemoveIf deletes the item only while it still holds the given version.
func (q *queue[P]) RemoveIf(key string, version uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[key]
	if !ok || item.Version != version {
		return false
	}
	delete(q.items, key)
	return true
}

func (q *queue[P]) IncrementRetry(key string, version uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[key]
	if !ok || item.Version != version || item.RetryCount >= q.maxRetries {
		return false
	}
	item.RetryCount++
	item.LastRetryAt = q.now()
	return true
}

func (q *queue[P]) Items() []relay.Queued[P] {
	return q.collect(func(relay.Queued[P]) bool { return true })
}

func (q *queue[P]) Exhausted() []relay.Queued[P] {
	return q.collect(func(item relay.Queued[P]) bool { return item.IsExhausted(q.maxRetries) })
}

func (q *queue[P]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *queue[P]) MaxRetries() int {
	return q.maxRetries
}

func (q *queue[P]) collect(keep func(relay.Queued[P]) bool) []relay.Queued[P] {
	q.mu.Lock()
	out := make([]relay.Queued[P], 0, len(q.items))
	for _, item := range q.items {
		if keep(*item) {
			out = append(out, *item)
		}
	}
	q.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
	})
	return out
}

// DecisionQueue keys decisions by "tenant:orderNo". It has no backoff of its own; the retry
// job's schedule sets the cadence.
type DecisionQueue struct {
	*queue[relay.Decision]
}

func NewDecisionQueue(maxRetries int, now func() time.Time) *DecisionQueue {
	return &DecisionQueue{newQueue(relay.Decision.Key, maxRetries, now)}
}

// MenuChangeQueue keys changes by "tenant:menuItemId" and spaces retries out with
// relay.Backoff.
type MenuChangeQueue struct {
	*queue[menu.Change]
}

func NewMenuChangeQueue(maxRetries int, now func() time.Time) *MenuChangeQueue {
	return &MenuChangeQueue{newQueue(menu.Change.Key, maxRetries, now)}
}

func (q *MenuChangeQueue) IsReadyForRetry(item relay.Queued[menu.Change]) bool {
	if item.RetryCount == 0 {
		return true
	}
	return q.now().Sub(item.LastRetryAt) >= relay.Backoff(item.RetryCount-1)
}
