package commands

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSweepStaleConnectionsCommandIsNotConstructed = errors.New(
	"SweepStaleConnectionsCommand must be created via NewSweepStaleConnectionsCommand constructor",
)

// SweepStaleConnectionsCommand drops push connections older than MaxAge.
type SweepStaleConnectionsCommand struct { //nolint:recvcheck //using for validation
	maxAge time.Duration

	guard guard.ConstructorGuard
}

func NewSweepStaleConnectionsCommand(maxAge time.Duration) (SweepStaleConnectionsCommand, error) {
	if maxAge <= 0 {
		return SweepStaleConnectionsCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"maxAge",
			fmt.Errorf("%s is not positive", maxAge),
		)
	}
	return SweepStaleConnectionsCommand{
		maxAge: maxAge,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c SweepStaleConnectionsCommand) Validate() error {
	return c.guard.Validate(ErrSweepStaleConnectionsCommandIsNotConstructed)
}

func (c SweepStaleConnectionsCommand) MaxAge() time.Duration {
	return c.maxAge
}
