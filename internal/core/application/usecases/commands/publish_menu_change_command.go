package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/pkg/guard"
)

var ErrPublishMenuChangeCommandIsNotConstructed = errors.New(
	"PublishMenuChangeCommand must be created via NewPublishMenuChangeCommand constructor",
)

// PublishMenuChangeCommand records a new price or availability of a menu item and tells
// Central about it.
type PublishMenuChangeCommand struct { //nolint:recvcheck //using for validation
	change menu.Change

	guard guard.ConstructorGuard
}

func NewPublishMenuChangeCommand(
	tenantID, menuItemID, name string,
	purchasePrice float64,
	available bool,
	changedAt time.Time,
) (PublishMenuChangeCommand, error) {
	change, err := menu.NewChange(tenantID, menuItemID, name, purchasePrice, available, changedAt)
	if err != nil {
		return PublishMenuChangeCommand{}, err
	}
	return PublishMenuChangeCommand{
		change: change,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c PublishMenuChangeCommand) Validate() error {
	return c.guard.Validate(ErrPublishMenuChangeCommandIsNotConstructed)
}

func (c PublishMenuChangeCommand) Change() menu.Change {
	return c.change
}
