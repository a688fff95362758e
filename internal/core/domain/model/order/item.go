package order

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Decision is the tenant's verdict on one item.
type Decision int

const (
	Pending Decision = iota
	Accepted
	RejectedItem
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case RejectedItem:
		return "rejected"
	default:
		return "pending"
	}
}

// ItemDetails carries the optional descriptive attributes of an ordered item.
type ItemDetails struct {
	Size     string
	Category string
	Cut      string
}

// Item is one line of an order. Its outcome is either a fulfilled quantity or a
// rejection reason, never both.
type Item struct {
	id         string
	name       string
	menuItemID string
	requested  kernel.Quantity
	details    ItemDetails

	decision        Decision
	fulfilled       kernel.Quantity
	rejectionReason string

	isConstructed bool
}

// NewItem validates and builds a pending item. menuItemID links the item to the tenant's
// menu for pricing and defaults to id.
func NewItem(id, name, menuItemID string, requested kernel.Quantity, details ItemDetails) (*Item, error) {
	item := &Item{
		id:            strings.TrimSpace(id),
		name:          strings.TrimSpace(name),
		menuItemID:    strings.TrimSpace(menuItemID),
		requested:     requested,
		details:       details,
		isConstructed: true,
	}

	var err error
	if item.id == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("itemId"))
	}
	if item.name == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("item name"))
	}
	if reqErr := requested.Validate(); reqErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("requested quantity", reqErr))
	}
	if err != nil {
		return nil, err
	}

	if item.menuItemID == "" {
		item.menuItemID = item.id
	}
	return item, nil
}

func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i *Item) ID() string { return i.id }
func (i *Item) Name() string { return i.name }
func (i *Item) MenuItemID() string { return i.menuItemID }
func (i *Item) Requested() kernel.Quantity { return i.requested }
func (i *Item) Details() ItemDetails { return i.details }
func (i *Item) Decision() Decision { return i.decision }
func (i *Item) Fulfilled() kernel.Quantity { return i.fulfilled }
func (i *Item) RejectionReason() string { return i.rejectionReason }
func (i *Item) IsAccepted() bool { return i.decision == Accepted }
func (i *Item) IsRejected() bool { return i.decision == RejectedItem }

// Accept records the fulfilled quantity and clears any earlier rejection.
func (i *Item) Accept(fulfilled kernel.Quantity) error {
	if err := fulfilled.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("fulfilledQuantity", err)
	}
	i.decision = Accepted
	i.fulfilled = fulfilled
	i.rejectionReason = ""
	return nil
}

// Reject records the reason and clears any earlier fulfilled quantity.
func (i *Item) Reject(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("rejectionReason")
	}
	i.decision = RejectedItem
	i.rejectionReason = reason
	i.fulfilled = kernel.Quantity{}
	return nil
}

func (i *Item) clone() *Item {
	c := *i
	return &c
}

// AllItemsRejected reports whether every item carries a rejection. An empty list is
// not rejected.
func AllItemsRejected(items []*Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsRejected() {
			return false
		}
	}
	return true
}
