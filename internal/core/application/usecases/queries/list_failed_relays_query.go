package queries

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrListFailedRelaysQueryIsNotConstructed = errors.New(
		"ListFailedRelaysQuery must be created via NewListFailedRelaysQuery constructor",
	)
)

// ListFailedRelaysQuery lists the relays that used up their retries and need an operator.
type ListFailedRelaysQuery struct {
	guard guard.ConstructorGuard
}

func NewListFailedRelaysQuery() ListFailedRelaysQuery {
	return ListFailedRelaysQuery{guard: guard.NewConstructorGuard()}
}

func (q ListFailedRelaysQuery) Validate() error {
	return q.guard.Validate(ErrListFailedRelaysQueryIsNotConstructed)
}
