package relay

import "time"

// Queued is a payload waiting for redelivery. RetryCount counts failed redeliveries,
// not the initial attempt. Version changes whenever the payload under Key is replaced.
type Queued[P any] struct {
	Key         string
	Payload     P
	Version     uint64
	RetryCount  int
	EnqueuedAt  time.Time
	LastRetryAt time.Time
}

// IsExhausted reports whether the item needs manual intervention.
func (q Queued[P]) IsExhausted(maxRetries int) bool {
	return q.RetryCount >= maxRetries
}

// Backoff is the wait after the n-th failed retry: one minute doubling per retry,
// capped at sixteen minutes.
func Backoff(n int) time.Duration {
	const (
		base    = time.Minute
		ceiling = 16 * time.Minute
	)
	if n < 0 {
		n = 0
	}
	if n >= 5 {
		return ceiling
	}
	return min(base<<n, ceiling)
}
