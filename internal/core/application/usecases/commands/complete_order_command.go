package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCompleteOrderCommandIsNotConstructed = errors.New(
	"CompleteOrderCommand must be created via NewCompleteOrderCommand constructor",
)

// CompleteOrderCommand finalizes a preparing order. The caller may only supply terminal
// fields; revenue decided earlier is never part of the command.
type CompleteOrderCommand struct { //nolint:recvcheck //using for validation
	key         kernel.OrderKey
	completedAt time.Time

	guard guard.ConstructorGuard
}

// NewCompleteOrderCommand accepts an empty status or "completed". A zero completedAt is
// replaced by the handler's clock.
func NewCompleteOrderCommand(
	tenantID, orderNo, status string,
	completedAt time.Time,
) (CompleteOrderCommand, error) {
	cmd := CompleteOrderCommand{
		completedAt: completedAt,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setKey(tenantID, orderNo),
		validateCompletionStatus(status),
	); err != nil {
		return CompleteOrderCommand{}, err
	}

	return cmd, nil
}

func (c CompleteOrderCommand) Validate() error {
	return c.guard.Validate(ErrCompleteOrderCommandIsNotConstructed)
}

func (c CompleteOrderCommand) Key() kernel.OrderKey {
	return c.key
}

func (c CompleteOrderCommand) CompletedAt() time.Time {
	return c.completedAt
}

func (c *CompleteOrderCommand) setKey(tenantID, orderNo string) error {
	key, err := kernel.NewOrderKey(tenantID, orderNo)
	if err != nil {
		return err
	}
	c.key = key
	return nil
}

func validateCompletionStatus(status string) error {
	status = strings.TrimSpace(status)
	if status == "" || status == order.Completed.String() {
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("completion only accepts %q, got %q", order.Completed, status),
	)
}
