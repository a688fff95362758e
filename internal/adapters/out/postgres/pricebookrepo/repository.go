package pricebookrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPriceBookRepository implements ports.PriceBookRepository using GORM.
type GormPriceBookRepository struct {
	db *gorm.DB
}

func NewGormPriceBookRepository(db *gorm.DB) *GormPriceBookRepository {
	return &GormPriceBookRepository{db: db}
}

// GetPriceList falls back to a zero commission for tenants without a configured rate.
func (r *GormPriceBookRepository) GetPriceList(ctx context.Context, tenantID string, menuItemIDs []string) (services.PriceList, error) {
	list := services.PriceList{PurchasePrices: make(map[string]float64, len(menuItemIDs))}
	if tenantID == "" {
		return list, errs.NewValueIsRequiredError("tenantId")
	}

	var commission CommissionDTO
	err := r.db.WithContext(ctx).First(&commission, "tenant_id = ?", tenantID).Error
	switch {
	case err == nil:
		list.CommissionRate = commission.Rate
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return list, errs.NewLedgerUnavailableError("read commission", err)
	}

	if len(menuItemIDs) == 0 {
		return list, nil
	}

	var items []MenuItemDTO
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND menu_item_id IN ?", tenantID, menuItemIDs).
		Find(&items).Error; err != nil {
		return list, errs.NewLedgerUnavailableError("read prices", err)
	}
	for _, item := range items {
		list.PurchasePrices[item.MenuItemID] = item.PurchasePrice
	}
	return list, nil
}

func (r *GormPriceBookRepository) UpsertMenuItem(
	ctx context.Context,
	tenantID, menuItemID, name string,
	purchasePrice float64,
	available bool,
) error {
	dto := MenuItemDTO{
		TenantID:      tenantID,
		MenuItemID:    menuItemID,
		Name:          name,
		PurchasePrice: purchasePrice,
		Available:     available,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "menu_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "purchase_price", "available", "updated_at"}),
	}).Create(&dto).Error
	if err != nil {
		return errs.NewLedgerUnavailableError("upsert menu item", err)
	}
	return nil
}
