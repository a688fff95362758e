package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/services"
)

// LedgerRepository is the append-only log of priced decisions.
type LedgerRepository interface {
	// Append adds an entry. Entries are never updated.
	Append(ctx context.Context, entry *ledger.Entry) error

	// ListByTenantAndDate returns the tenant's entries of one business date in recording order.
	ListByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]*ledger.Entry, error)
}

// PriceBookRepository supplies purchase prices and commission rates.
type PriceBookRepository interface {
	// GetPriceList returns the commission rate of the tenant and the purchase prices of the
	// requested menu items. Unknown menu items are absent from the result.
	GetPriceList(ctx context.Context, tenantID string, menuItemIDs []string) (services.PriceList, error)

	// UpsertMenuItem stores the latest purchase price and availability of a menu item.
	UpsertMenuItem(ctx context.Context, tenantID, menuItemID, name string, purchasePrice float64, available bool) error
}
