// Package ledger models the durable record written when a tenant decides on an order.
// Entries are append-only and queried by tenant and business date.
package ledger

import (
	"errors"
	"maps"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

var ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry or RestoreEntry")

// DateLayout is the business date format entries are keyed by.
const DateLayout = "2006-01-02"

// Line is the recorded outcome of one item.
type Line struct {
	ItemID            string
	Name              string
	MenuItemID        string
	Requested         string
	FulfilledQuantity string
	RejectionReason   string
	Revenue           float64
}

// Entry is one ledger row: an order decision with its revenue, as priced at decision time.
type Entry struct {
	id              kernel.UUID
	key             kernel.OrderKey
	date            string
	customerName    string
	status          order.Status
	revenue         float64
	itemRevenues    map[string]float64
	lines           []Line
	rejectionReason string
	recordedAt      time.Time

	isConstructed bool
}

// NewEntry records a priced decision. The business date is taken from recordedAt.
func NewEntry(o *order.Order, recordedAt time.Time) (*Entry, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	revenue, priced := o.Revenue()
	if !priced {
		return nil, errs.NewValueIsRequiredError("revenue")
	}

	lines := make([]Line, 0, len(o.Items()))
	for _, item := range o.Items() {
		line := Line{
			ItemID:          item.ID(),
			Name:            item.Name(),
			MenuItemID:      item.MenuItemID(),
			Requested:       item.Requested().String(),
			RejectionReason: item.RejectionReason(),
			Revenue:         revenue.Items[item.ID()],
		}
		if item.IsAccepted() {
			line.FulfilledQuantity = item.Fulfilled().String()
		}
		lines = append(lines, line)
	}

	return &Entry{
		id:              kernel.NewUUID(),
		key:             o.Key(),
		date:            recordedAt.Format(DateLayout),
		customerName:    o.CustomerName(),
		status:          o.Status(),
		revenue:         revenue.Total,
		itemRevenues:    revenue.Items,
		lines:           lines,
		rejectionReason: o.RejectionReason(),
		recordedAt:      recordedAt,
		isConstructed:   true,
	}, nil
}

// RestoreEntry rebuilds an entry read back from storage.
func RestoreEntry(
	id kernel.UUID,
	key kernel.OrderKey,
	date string,
	customerName string,
	status order.Status,
	revenue float64,
	lines []Line,
	rejectionReason string,
	recordedAt time.Time,
) (*Entry, error) {
	if err := errors.Join(id.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if key.IsZero() {
		return nil, errs.NewValueIsRequiredError("order key")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("date", err)
	}

	itemRevenues := make(map[string]float64, len(lines))
	for _, line := range lines {
		itemRevenues[line.ItemID] = line.Revenue
	}

	return &Entry{
		id:              id,
		key:             key,
		date:            date,
		customerName:    customerName,
		status:          status,
		revenue:         revenue,
		itemRevenues:    itemRevenues,
		lines:           append([]Line(nil), lines...),
		rejectionReason: rejectionReason,
		recordedAt:      recordedAt,
		isConstructed:   true,
	}, nil
}

func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

func (e *Entry) ID() kernel.UUID { return e.id }
func (e *Entry) Key() kernel.OrderKey { return e.key }
func (e *Entry) Date() string { return e.date }
func (e *Entry) CustomerName() string { return e.customerName }
func (e *Entry) Status() order.Status { return e.status }
func (e *Entry) Revenue() float64 { return e.revenue }
func (e *Entry) ItemRevenues() map[string]float64 { return maps.Clone(e.itemRevenues) }
func (e *Entry) Lines() []Line { return append([]Line(nil), e.lines...) }
func (e *Entry) RejectionReason() string { return e.rejectionReason }
func (e *Entry) RecordedAt() time.Time { return e.recordedAt }
