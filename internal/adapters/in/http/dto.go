package http

import (
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/model/order"
)

// RegisterOrderRequest is what intake posts for a new order.
type RegisterOrderRequest struct {
	OrderNo      string              `json:"orderNo"`
	CustomerName string              `json:"customerName"`
	OrderedAt    *time.Time          `json:"orderedAt,omitempty"`
	Items        []RegisterOrderItem `json:"items"`
}

type RegisterOrderItem struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	MenuItemID string `json:"menuItemId,omitempty"`
	Quantity   string `json:"quantity"`
	Size       string `json:"size,omitempty"`
	Category   string `json:"category,omitempty"`
	Cut        string `json:"cut,omitempty"`
}

// OrderResponseRequest is a tenant's decision on an order.
type OrderResponseRequest struct {
	OrderNo string              `json:"orderNo"`
	Items   []OrderResponseItem `json:"items"`
}

type OrderResponseItem struct {
	ItemID            string `json:"itemId"`
	FulfilledQuantity string `json:"fulfilledQuantity,omitempty"`
	RejectionReason   string `json:"rejectionReason,omitempty"`
}

// CompleteOrderRequest carries the terminal fields of a completed order.
type CompleteOrderRequest struct {
	TenantID string `json:"tenantId"`
	Order    struct {
		OrderNo     string     `json:"orderNo"`
		Status      string     `json:"status,omitempty"`
		CompletedAt *time.Time `json:"completedAt,omitempty"`
	} `json:"order"`
}

type MenuChangeRequest struct {
	MenuItemID    string     `json:"menuItemId"`
	Name          string     `json:"name"`
	PurchasePrice float64    `json:"purchasePrice"`
	Available     *bool      `json:"available,omitempty"`
	ChangedAt     *time.Time `json:"changedAt,omitempty"`
}

// DecisionResponse is returned for a tenant decision. Relayed is false, with a warning,
// when Central did not receive it yet.
type DecisionResponse struct {
	Order   *order.Order `json:"order"`
	Relayed bool         `json:"relayed"`
	Warning string       `json:"warning,omitempty"`
}

type MenuChangeResponse struct {
	MenuItemID string `json:"menuItemId"`
	Relayed    bool   `json:"relayed"`
	Warning    string `json:"warning,omitempty"`
}

type LedgerEntryResponse struct {
	ID              string             `json:"id"`
	OrderNo         string             `json:"orderNo"`
	Date            string             `json:"date"`
	CustomerName    string             `json:"customerName"`
	Status          order.Status       `json:"status"`
	Revenue         float64            `json:"revenue"`
	ItemRevenues    map[string]float64 `json:"itemRevenues"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	RecordedAt      time.Time          `json:"recordedAt"`
	Lines           []LedgerLine       `json:"lines"`
}

type LedgerLine struct {
	ItemID            string  `json:"itemId"`
	Name              string  `json:"name"`
	MenuItemID        string  `json:"menuItemId"`
	Requested         string  `json:"requested"`
	FulfilledQuantity string  `json:"fulfilledQuantity,omitempty"`
	RejectionReason   string  `json:"rejectionReason,omitempty"`
	Revenue           float64 `json:"revenue"`
}

func toLedgerEntryResponse(e *ledger.Entry) LedgerEntryResponse {
	lines := make([]LedgerLine, 0, len(e.Lines()))
	for _, l := range e.Lines() {
		lines = append(lines, LedgerLine{
			ItemID:            l.ItemID,
			Name:              l.Name,
			MenuItemID:        l.MenuItemID,
			Requested:         l.Requested,
			FulfilledQuantity: l.FulfilledQuantity,
			RejectionReason:   l.RejectionReason,
			Revenue:           l.Revenue,
		})
	}
	return LedgerEntryResponse{
		ID:              e.ID().String(),
		OrderNo:         e.Key().OrderNo(),
		Date:            e.Date(),
		CustomerName:    e.CustomerName(),
		Status:          e.Status(),
		Revenue:         e.Revenue(),
		ItemRevenues:    e.ItemRevenues(),
		RejectionReason: e.RejectionReason(),
		RecordedAt:      e.RecordedAt(),
		Lines:           lines,
	}
}

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
