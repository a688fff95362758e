// Package menu holds the menu change notices a tenant publishes to Central.
package menu

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

// Change announces a new state of one menu item. A later change of the same item
// supersedes an earlier one, so changes are keyed by tenant and menu item.
type Change struct {
	TenantID      string    `json:"tenantId"`
	MenuItemID    string    `json:"menuItemId"`
	Name          string    `json:"name"`
	PurchasePrice float64   `json:"purchasePrice"`
	Available     bool      `json:"available"`
	ChangedAt     time.Time `json:"changedAt"`
}

func NewChange(tenantID, menuItemID, name string, purchasePrice float64, available bool, changedAt time.Time) (Change, error) {
	c := Change{
		TenantID:      strings.TrimSpace(tenantID),
		MenuItemID:    strings.TrimSpace(menuItemID),
		Name:          strings.TrimSpace(name),
		PurchasePrice: purchasePrice,
		Available:     available,
		ChangedAt:     changedAt,
	}
	if err := c.Validate(); err != nil {
		return Change{}, err
	}
	return c, nil
}

func (c Change) Validate() error {
	var err error
	if c.TenantID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("tenantId"))
	}
	if c.MenuItemID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("menuItemId"))
	}
	if c.Name == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("name"))
	}
	if c.PurchasePrice < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"purchasePrice",
			fmt.Errorf("%v is negative", c.PurchasePrice),
		))
	}
	return err
}

// Key is "tenant:menuItemId".
func (c Change) Key() string {
	return c.TenantID + ":" + c.MenuItemID
}
