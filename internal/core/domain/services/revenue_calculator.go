package services

import (
	"math"

	"fulfillment/internal/core/domain/model/order"
)

// Reasons reported for items that could not be priced.
const (
	ReasonMissingPrice  = "purchase price is missing"
	ReasonInvalidPrice  = "purchase price is not positive"
	ReasonInvalidWeight = "fulfilled weight is not positive"
)

// RevenueLine is one accepted item to price.
type RevenueLine struct {
	ItemID        string
	Weight        float64
	PurchasePrice float64
}

// FailedItem is an accepted item that contributed zero because it could not be priced.
type FailedItem struct {
	ItemID string
	Reason string
}

// RevenueResult is the best-effort pricing of an order. Failed items are reported,
// never fatal.
type RevenueResult struct {
	TotalRevenue    float64
	ItemRevenues    map[string]float64
	FailedItems     []FailedItem
	SuccessfulItems []string
}

// PriceList is what a tenant's menu says about pricing: purchase price per menu item
// and the platform commission rate (0.15 means 15%).
type PriceList struct {
	CommissionRate float64
	PurchasePrices map[string]float64
}

// RevenueCalculator prices tenant decisions. It is stateless and never fails.
//
// Revenue of one item is round2(weight * purchasePrice * (1 - commissionRate)). Weights are
// the billable amount of the fulfilled quantity, so grams count as kilograms.
type RevenueCalculator struct{}

func NewRevenueCalculator() RevenueCalculator {
	return RevenueCalculator{}
}

// ItemRevenue returns 0 for non-positive weight or price and never a negative amount.
func (RevenueCalculator) ItemRevenue(weight, purchasePrice, commissionRate float64) float64 {
	if weight <= 0 || purchasePrice <= 0 {
		return 0
	}
	return math.Max(0, round2(weight*purchasePrice*(1-commissionRate)))
}

// OrderRevenue prices every line and sums what could be priced.
func (c RevenueCalculator) OrderRevenue(lines []RevenueLine, commissionRate float64) RevenueResult {
	result := RevenueResult{ItemRevenues: make(map[string]float64, len(lines))}

	var total float64
	for _, line := range lines {
		revenue := c.ItemRevenue(line.Weight, line.PurchasePrice, commissionRate)
		result.ItemRevenues[line.ItemID] = revenue

		switch {
		case line.PurchasePrice <= 0:
			result.FailedItems = append(result.FailedItems, FailedItem{ItemID: line.ItemID, Reason: ReasonInvalidPrice})
		case line.Weight <= 0:
			result.FailedItems = append(result.FailedItems, FailedItem{ItemID: line.ItemID, Reason: ReasonInvalidWeight})
		default:
			result.SuccessfulItems = append(result.SuccessfulItems, line.ItemID)
			total += revenue
		}
	}

	result.TotalRevenue = round2(total)
	return result
}

// Calculate prices the accepted items of o. Rejected and undecided items contribute zero
// and are listed in ItemRevenues without counting as failures.
func (c RevenueCalculator) Calculate(o *order.Order, prices PriceList) RevenueResult {
	var (
		lines   []RevenueLine
		missing []FailedItem
		zero    []string
	)
	for _, item := range o.Items() {
		if !item.IsAccepted() {
			zero = append(zero, item.ID())
			continue
		}
		price, ok := prices.PurchasePrices[item.MenuItemID()]
		if !ok {
			missing = append(missing, FailedItem{ItemID: item.ID(), Reason: ReasonMissingPrice})
			continue
		}
		lines = append(lines, RevenueLine{
			ItemID:        item.ID(),
			Weight:        item.Fulfilled().BillableAmount(),
			PurchasePrice: price,
		})
	}

	result := c.OrderRevenue(lines, prices.CommissionRate)
	for _, id := range zero {
		result.ItemRevenues[id] = 0
	}
	for _, f := range missing {
		result.ItemRevenues[f.ItemID] = 0
		result.FailedItems = append(result.FailedItems, f)
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
