package commands

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// OrderLine is one ordered item as handed over by intake.
type OrderLine struct {
	ItemID     string
	Name       string
	MenuItemID string
	Quantity   string
	Size       string
	Category   string
	Cut        string
}

// RegisterOrderCommand places a new order from Central into the cache.
type RegisterOrderCommand struct { //nolint:recvcheck //using for validation
	key          kernel.OrderKey
	customerName string
	items        []*order.Item
	orderedAt    time.Time

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand parses every line and reports all malformed ones at once.
func NewRegisterOrderCommand(
	tenantID, orderNo, customerName string,
	lines []OrderLine,
	orderedAt time.Time,
) (RegisterOrderCommand, error) {
	cmd := RegisterOrderCommand{
		customerName: customerName,
		orderedAt:    orderedAt,
		guard:        guard.NewConstructorGuard(),
	}

	key, err := kernel.NewOrderKey(tenantID, orderNo)
	if err != nil {
		return RegisterOrderCommand{}, err
	}
	cmd.key = key

	if len(lines) == 0 {
		return RegisterOrderCommand{}, errs.NewValueIsRequiredError("items")
	}

	for i, line := range lines {
		q, qErr := kernel.ParseQuantity(line.Quantity)
		if qErr != nil {
			err = errors.Join(err, fmt.Errorf("items[%d]: %w", i, qErr))
			continue
		}
		item, itemErr := order.NewItem(line.ItemID, line.Name, line.MenuItemID, q, order.ItemDetails{
			Size:     line.Size,
			Category: line.Category,
			Cut:      line.Cut,
		})
		if itemErr != nil {
			err = errors.Join(err, fmt.Errorf("items[%d]: %w", i, itemErr))
			continue
		}
		cmd.items = append(cmd.items, item)
	}
	if err != nil {
		return RegisterOrderCommand{}, err
	}

	return cmd, nil
}

func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

func (c RegisterOrderCommand) Key() kernel.OrderKey {
	return c.key
}

func (c RegisterOrderCommand) CustomerName() string {
	return c.customerName
}

func (c RegisterOrderCommand) Items() []*order.Item {
	return c.items
}

// OrderedAt is zero when intake did not say; the handler then stamps the arrival time.
func (c RegisterOrderCommand) OrderedAt() time.Time {
	return c.orderedAt
}
