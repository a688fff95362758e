package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder factory method.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrRevenueAlreadyFixed is returned when revenue is assigned outside of a tenant decision.
	ErrRevenueAlreadyFixed = errors.New("revenue is fixed once the order is completed")
)

// Order is the aggregate root of a tenant's fulfillment order. It lives in the order cache
// from intake until it is completed or rejected.
//
// Order follows these invariants:
//   - Identified by tenant and order number
//   - Has at least one item, each with a unique id
//   - Status is derived from item outcomes except for completion
//   - Revenue is assigned while the tenant decides and only copied forward afterwards
//
// Instances are not safe for concurrent mutation. Stores hand out clones.
type Order struct {
	key          kernel.OrderKey
	customerName string
	items        []*Item
	status       Status

	orderedAt            time.Time
	preparationStartedAt *time.Time
	preparationEndedAt   *time.Time
	completedAt          *time.Time

	// revenue is nil until the first decision is priced
	revenue         *Revenue
	rejectionReason string

	isConstructed bool
}

// Revenue is the priced outcome of a tenant decision. Items maps item id to amount.
type Revenue struct {
	Total float64
	Items map[string]float64
}

// ItemResponse is a tenant's decision on one item. Exactly one of Fulfilled and
// RejectionReason is set.
type ItemResponse struct {
	ItemID          string
	Fulfilled       kernel.Quantity
	RejectionReason string
}

// NewOrder creates an order in New status. orderedAt defaults to the zero time when
// intake does not supply it.
func NewOrder(key kernel.OrderKey, customerName string, items []*Item, orderedAt time.Time) (*Order, error) {
	o := &Order{
		key:           key,
		customerName:  strings.TrimSpace(customerName),
		status:        New,
		orderedAt:     orderedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setKey(key),
		o.setItems(items),
	); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) setKey(key kernel.OrderKey) error {
	if key.IsZero() {
		return errs.NewValueIsRequiredError("order key")
	}
	o.key = key
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	seen := make(map[string]struct{}, len(items))
	o.items = make([]*Item, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := seen[item.ID()]; dup {
			return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %q appears twice", item.ID()))
		}
		seen[item.ID()] = struct{}{}
		o.items = append(o.items, item.clone())
	}
	return nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) Key() kernel.OrderKey {
	return o.key
}

// ID is the composite "tenant:orderNo" identifier.
func (o *Order) ID() string {
	return o.key.String()
}

func (o *Order) TenantID() string {
	return o.key.TenantID()
}

func (o *Order) OrderNo() string {
	return o.key.OrderNo()
}

func (o *Order) CustomerName() string {
	return o.customerName
}

// Items returns clones of the order's items in their original order.
func (o *Order) Items() []*Item {
	out := make([]*Item, len(o.items))
	for i, item := range o.items {
		out[i] = item.clone()
	}
	return out
}

func (o *Order) Item(id string) (*Item, bool) {
	for _, item := range o.items {
		if item.ID() == id {
			return item.clone(), true
		}
	}
	return nil, false
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) OrderedAt() time.Time {
	return o.orderedAt
}

func (o *Order) PreparationStartedAt() *time.Time {
	return copyTime(o.preparationStartedAt)
}

func (o *Order) PreparationEndedAt() *time.Time {
	return copyTime(o.preparationEndedAt)
}

func (o *Order) CompletedAt() *time.Time {
	return copyTime(o.completedAt)
}

func (o *Order) RejectionReason() string {
	return o.rejectionReason
}

// Revenue returns the priced decision and whether one was assigned.
func (o *Order) Revenue() (Revenue, bool) {
	if o.revenue == nil {
		return Revenue{Items: map[string]float64{}}, false
	}
	return Revenue{Total: o.revenue.Total, Items: maps.Clone(o.revenue.Items)}, true
}

// FinishedAt is when the order reached a terminal status, nil while it is still live.
func (o *Order) FinishedAt() *time.Time {
	if !o.status.IsTerminal() {
		return nil
	}
	if o.completedAt != nil {
		return copyTime(o.completedAt)
	}
	return copyTime(o.preparationEndedAt)
}

// AllItemsRejected reports whether every item of the order carries a rejection.
func (o *Order) AllItemsRejected() bool {
	return AllItemsRejected(o.items)
}

// ApplyResponse merges a tenant decision onto the order. Items absent from responses keep
// their previous outcome. The whole response is validated before any item changes.
//
// Afterwards the status is Rejected when every item is rejected, with the first rejected
// item's reason surfaced on the order, and Preparing otherwise.
func (o *Order) ApplyResponse(responses []ItemResponse, now time.Time) error {
	if err := o.status.ValidateRespond(); err != nil {
		return err
	}
	if len(responses) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	index := make(map[string]*Item, len(o.items))
	for _, item := range o.items {
		index[item.ID()] = item
	}

	var err error
	for _, r := range responses {
		if _, ok := index[r.ItemID]; !ok {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("itemId", fmt.Errorf("order has no item %q", r.ItemID)))
			continue
		}
		hasQuantity := r.Fulfilled.Validate() == nil
		hasReason := strings.TrimSpace(r.RejectionReason) != ""
		if hasQuantity == hasReason {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
				"item response",
				fmt.Errorf("item %q needs either fulfilledQuantity or rejectionReason", r.ItemID),
			))
		}
	}
	if err != nil {
		return err
	}

	for _, r := range responses {
		item := index[r.ItemID]
		if r.Fulfilled.Validate() == nil {
			err = item.Accept(r.Fulfilled)
		} else {
			err = item.Reject(r.RejectionReason)
		}
		if err != nil {
			return err
		}
	}

	next, err := o.status.Decide(o.AllItemsRejected())
	if err != nil {
		return err
	}
	o.status = next

	o.rejectionReason = ""
	if next == Rejected {
		o.rejectionReason = o.firstRejectionReason()
		o.preparationEndedAt = &now
		return nil
	}
	if o.preparationStartedAt == nil {
		o.preparationStartedAt = &now
	}
	return nil
}

func (o *Order) firstRejectionReason() string {
	for _, item := range o.items {
		if item.IsRejected() {
			return item.RejectionReason()
		}
	}
	return ""
}

// AssignRevenue stores the priced decision. Only a tenant decision may price an order,
// so completed and undecided orders refuse it.
func (o *Order) AssignRevenue(total float64, items map[string]float64) error {
	if o.status == Completed {
		return ErrRevenueAlreadyFixed
	}
	if o.status != Preparing && o.status != Rejected {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s order has no decision to price", o.status),
		)
	}
	if items == nil {
		items = map[string]float64{}
	}
	o.revenue = &Revenue{Total: total, Items: maps.Clone(items)}
	return nil
}

// Complete finalizes a preparing order. Revenue is carried over untouched.
func (o *Order) Complete(endedAt time.Time) error {
	next, err := o.status.Complete()
	if err != nil {
		return err
	}
	o.status = next
	o.preparationEndedAt = &endedAt
	o.completedAt = &endedAt
	return nil
}

// Clone returns a deep copy sharing no mutable state with o.
func (o *Order) Clone() *Order {
	c := *o
	c.items = o.Items()
	c.preparationStartedAt = copyTime(o.preparationStartedAt)
	c.preparationEndedAt = copyTime(o.preparationEndedAt)
	c.completedAt = copyTime(o.completedAt)
	if o.revenue != nil {
		c.revenue = &Revenue{Total: o.revenue.Total, Items: maps.Clone(o.revenue.Items)}
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type itemJSON struct {
	ItemID            string           `json:"itemId"`
	Name              string           `json:"name"`
	MenuItemID        string           `json:"menuItemId"`
	Quantity          kernel.Quantity  `json:"quantity"`
	Size              string           `json:"size,omitempty"`
	Category          string           `json:"category,omitempty"`
	Cut               string           `json:"cut,omitempty"`
	Outcome           string           `json:"outcome"`
	FulfilledQuantity *kernel.Quantity `json:"fulfilledQuantity,omitempty"`
	RejectionReason   string           `json:"rejectionReason,omitempty"`
}

type orderJSON struct {
	ID                   string             `json:"id"`
	TenantID             string             `json:"tenantId"`
	OrderNo              string             `json:"orderNo"`
	CustomerName         string             `json:"customerName"`
	Status               Status             `json:"status"`
	Items                []itemJSON         `json:"items"`
	OrderedAt            time.Time          `json:"orderedAt"`
	PreparationStartedAt *time.Time         `json:"preparationStartedAt,omitempty"`
	PreparationEndedAt   *time.Time         `json:"preparationEndedAt,omitempty"`
	CompletedAt          *time.Time         `json:"completedAt,omitempty"`
	Revenue              *float64           `json:"revenue,omitempty"`
	ItemRevenues         map[string]float64 `json:"itemRevenues,omitempty"`
	RejectionReason      string             `json:"rejectionReason,omitempty"`
}

// MarshalJSON renders the order as pushed to terminals and returned by the API.
func (o *Order) MarshalJSON() ([]byte, error) {
	out := orderJSON{
		ID:                   o.ID(),
		TenantID:             o.TenantID(),
		OrderNo:              o.OrderNo(),
		CustomerName:         o.customerName,
		Status:               o.status,
		Items:                make([]itemJSON, 0, len(o.items)),
		OrderedAt:            o.orderedAt,
		PreparationStartedAt: o.preparationStartedAt,
		PreparationEndedAt:   o.preparationEndedAt,
		CompletedAt:          o.completedAt,
		RejectionReason:      o.rejectionReason,
	}
	if o.revenue != nil {
		total := o.revenue.Total
		out.Revenue = &total
		out.ItemRevenues = o.revenue.Items
	}
	for _, item := range o.items {
		j := itemJSON{
			ItemID:          item.ID(),
			Name:            item.Name(),
			MenuItemID:      item.MenuItemID(),
			Quantity:        item.Requested(),
			Size:            item.Details().Size,
			Category:        item.Details().Category,
			Cut:             item.Details().Cut,
			Outcome:         item.Decision().String(),
			RejectionReason: item.RejectionReason(),
		}
		if item.IsAccepted() {
			fulfilled := item.Fulfilled()
			j.FulfilledQuantity = &fulfilled
		}
		out.Items = append(out.Items, j)
	}
	return json.Marshal(out)
}
