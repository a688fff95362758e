package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRespondToOrderCommandIsNotConstructed = errors.New(
	"RespondToOrderCommand must be created via NewRespondToOrderCommand constructor",
)

// ItemDecision is the raw answer of a tenant for one item. Exactly one of
// FulfilledQuantity and RejectionReason must be set.
type ItemDecision struct {
	ItemID            string
	FulfilledQuantity string
	RejectionReason   string
}

// RespondToOrderCommand carries a tenant's accept/reject decision on an order.
//
// Example:
//
//	cmd, err := NewRespondToOrderCommand("butcher-1", "42", []ItemDecision{
//	    {ItemID: "A", FulfilledQuantity: "1.5kg"},
//	    {ItemID: "B", RejectionReason: "out of stock"},
//	})
type RespondToOrderCommand struct { //nolint:recvcheck //using for validation
	key       kernel.OrderKey
	responses []order.ItemResponse

	guard guard.ConstructorGuard
}

func NewRespondToOrderCommand(tenantID, orderNo string, decisions []ItemDecision) (RespondToOrderCommand, error) {
	cmd := RespondToOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setKey(tenantID, orderNo),
		cmd.setResponses(decisions),
	); err != nil {
		return RespondToOrderCommand{}, err
	}

	return cmd, nil
}

func (c RespondToOrderCommand) Validate() error {
	return c.guard.Validate(ErrRespondToOrderCommandIsNotConstructed)
}

func (c RespondToOrderCommand) Key() kernel.OrderKey {
	return c.key
}

// Responses returns the parsed item decisions in request order.
func (c RespondToOrderCommand) Responses() []order.ItemResponse {
	return append([]order.ItemResponse(nil), c.responses...)
}

func (c *RespondToOrderCommand) setKey(tenantID, orderNo string) error {
	key, err := kernel.NewOrderKey(tenantID, orderNo)
	if err != nil {
		return err
	}
	c.key = key
	return nil
}

func (c *RespondToOrderCommand) setResponses(decisions []ItemDecision) error {
	if len(decisions) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	var err error
	for i, d := range decisions {
		r := order.ItemResponse{
			ItemID:          strings.TrimSpace(d.ItemID),
			RejectionReason: strings.TrimSpace(d.RejectionReason),
		}
		if r.ItemID == "" {
			err = errors.Join(err, fmt.Errorf("items[%d]: %w", i, errs.NewValueIsRequiredError("itemId")))
			continue
		}

		hasQuantity := strings.TrimSpace(d.FulfilledQuantity) != ""
		if hasQuantity == (r.RejectionReason != "") {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
				"item decision",
				fmt.Errorf("item %q needs either fulfilledQuantity or rejectionReason", r.ItemID),
			))
			continue
		}
		if hasQuantity {
			q, qErr := kernel.ParseQuantity(d.FulfilledQuantity)
			if qErr != nil {
				err = errors.Join(err, fmt.Errorf("items[%d]: %w", i, qErr))
				continue
			}
			r.Fulfilled = q
		}
		c.responses = append(c.responses, r)
	}
	return err
}
