package commands

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrPurgeFinishedOrdersCommandIsNotConstructed = errors.New(
	"PurgeFinishedOrdersCommand must be created via NewPurgeFinishedOrdersCommand constructor",
)

// PurgeFinishedOrdersCommand evicts completed and rejected orders from the cache once they
// have been finished for longer than the retention.
type PurgeFinishedOrdersCommand struct { //nolint:recvcheck //using for validation
	retention time.Duration

	guard guard.ConstructorGuard
}

func NewPurgeFinishedOrdersCommand(retention time.Duration) (PurgeFinishedOrdersCommand, error) {
	if retention <= 0 {
		return PurgeFinishedOrdersCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"retention",
			fmt.Errorf("%s is not positive", retention),
		)
	}
	return PurgeFinishedOrdersCommand{
		retention: retention,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PurgeFinishedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrPurgeFinishedOrdersCommandIsNotConstructed)
}

func (c PurgeFinishedOrdersCommand) Retention() time.Duration {
	return c.retention
}
