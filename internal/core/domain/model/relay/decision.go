// Package relay holds the payloads relayed to Central and their queued form.
package relay

import (
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// Decision is what Central receives when a tenant answers an order. Submitting the same
// order number twice is idempotent on Central's side.
type Decision struct {
	TenantID        string         `json:"tenantId"`
	OrderNo         string         `json:"orderNo"`
	Status          string         `json:"status"`
	Items           []DecisionItem `json:"items"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	Revenue         float64        `json:"revenue"`
	DecidedAt       time.Time      `json:"decidedAt"`
}

type DecisionItem struct {
	ItemID            string `json:"itemId"`
	FulfilledQuantity string `json:"fulfilledQuantity,omitempty"`
	RejectionReason   string `json:"rejectionReason,omitempty"`
}

func NewDecision(o *order.Order, decidedAt time.Time) Decision {
	revenue, _ := o.Revenue()
	d := Decision{
		TenantID:        o.TenantID(),
		OrderNo:         o.OrderNo(),
		Status:          o.Status().String(),
		RejectionReason: o.RejectionReason(),
		Revenue:         revenue.Total,
		DecidedAt:       decidedAt,
	}
	for _, item := range o.Items() {
		if item.Decision() == order.Pending {
			continue
		}
		di := DecisionItem{ItemID: item.ID(), RejectionReason: item.RejectionReason()}
		if item.IsAccepted() {
			di.FulfilledQuantity = item.Fulfilled().String()
		}
		d.Items = append(d.Items, di)
	}
	return d
}

// Key is "tenant:orderNo". A newer decision for the same order replaces the queued one.
func (d Decision) Key() string {
	return d.TenantID + ":" + d.OrderNo
}
