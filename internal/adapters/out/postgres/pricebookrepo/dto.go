// Package pricebookrepo stores what pricing needs: purchase prices of menu items and the
// commission rate of each tenant.
package pricebookrepo

import "time"

// MenuItemDTO holds the latest known state of one menu item.
type MenuItemDTO struct {
	TenantID      string    `gorm:"type:varchar(255);primaryKey"`
	MenuItemID    string    `gorm:"type:varchar(255);primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	PurchasePrice float64   `gorm:"type:double precision;not null"`
	Available     bool      `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (MenuItemDTO) TableName() string {
	return "menu_items"
}

// CommissionDTO is maintained by the reporting side; this service only reads it.
type CommissionDTO struct {
	TenantID string  `gorm:"type:varchar(255);primaryKey"`
	Rate     float64 `gorm:"type:double precision;not null"`
}

func (CommissionDTO) TableName() string {
	return "tenant_commissions"
}
