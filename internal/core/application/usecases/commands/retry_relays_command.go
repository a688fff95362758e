package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrRetryDecisionRelaysCommandIsNotConstructed = errors.New(
		"RetryDecisionRelaysCommand must be created via NewRetryDecisionRelaysCommand constructor",
	)
	ErrRetryMenuChangeRelaysCommandIsNotConstructed = errors.New(
		"RetryMenuChangeRelaysCommand must be created via NewRetryMenuChangeRelaysCommand constructor",
	)
)

// RetryDecisionRelaysCommand redelivers every queued decision that has retries left.
//
// Example:
//
//	cmd := NewRetryDecisionRelaysCommand()
//	report, err := handler.Handle(ctx, cmd)
type RetryDecisionRelaysCommand struct {
	guard guard.ConstructorGuard
}

func NewRetryDecisionRelaysCommand() RetryDecisionRelaysCommand {
	return RetryDecisionRelaysCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *RetryDecisionRelaysCommand) Validate() error {
	return c.guard.Validate(ErrRetryDecisionRelaysCommandIsNotConstructed)
}

// RetryMenuChangeRelaysCommand redelivers queued menu changes whose backoff has elapsed.
type RetryMenuChangeRelaysCommand struct {
	guard guard.ConstructorGuard
}

func NewRetryMenuChangeRelaysCommand() RetryMenuChangeRelaysCommand {
	return RetryMenuChangeRelaysCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *RetryMenuChangeRelaysCommand) Validate() error {
	return c.guard.Validate(ErrRetryMenuChangeRelaysCommandIsNotConstructed)
}

// RetryReport counts what one retry pass did.
type RetryReport struct {
	Delivered int
	Failed    int

	// Exhausted counts items that reached the retry limit during this pass.
	Exhausted int

	// Skipped counts items left alone: already exhausted, still backing off, or not
	// reached because Central asked to back off.
	Skipped int
}
