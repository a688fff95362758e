package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	ErrRelayUnavailable  = errors.New("relay unavailable")
	ErrQuotaExceeded     = errors.New("quota exceeded")
)

// UnauthorizedError reports a missing or rejected credential.
type UnauthorizedError struct {
	Reason string
}

func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthorized, e.Reason)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// LedgerUnavailableError wraps a failed ledger read or write. It is fatal to the
// request that triggered it.
type LedgerUnavailableError struct {
	Operation string
	Cause     error
}

func NewLedgerUnavailableError(operation string, cause error) *LedgerUnavailableError {
	return &LedgerUnavailableError{Operation: operation, Cause: cause}
}

func (e *LedgerUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s (cause: %v)", ErrLedgerUnavailable, e.Operation, e.Cause)
}

func (e *LedgerUnavailableError) Unwrap() []error {
	return []error{ErrLedgerUnavailable, e.Cause}
}

// RelayUnavailableError wraps a failed call to Central. Callers recover from it by
// queueing the payload.
type RelayUnavailableError struct {
	Target     string
	StatusCode int
	Cause      error
}

func NewRelayUnavailableError(target string, statusCode int, cause error) *RelayUnavailableError {
	return &RelayUnavailableError{Target: target, StatusCode: statusCode, Cause: cause}
}

func (e *RelayUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned %d (cause: %v)", ErrRelayUnavailable, e.Target, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s (cause: %v)", ErrRelayUnavailable, e.Target, e.Cause)
}

func (e *RelayUnavailableError) Unwrap() error {
	return ErrRelayUnavailable
}

// QuotaExceededError reports a rate limit hit, with a hint for when to retry.
type QuotaExceededError struct {
	Scope      string
	RetryAfter time.Duration
}

func NewQuotaExceededError(scope string, retryAfter time.Duration) *QuotaExceededError {
	return &QuotaExceededError{Scope: scope, RetryAfter: retryAfter}
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %s, retry after %s", ErrQuotaExceeded, e.Scope, e.RetryAfter)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
