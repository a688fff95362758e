// Package ledgerrepo persists ledger entries with GORM. Entries are append-only and
// queried by tenant and business date.
package ledgerrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// EntryDTO is one ledger row. Revenue is stored as fixed at decision time.
type EntryDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID        string    `gorm:"type:varchar(255);not null;index:idx_ledger_tenant_date,priority:1"`
	Date            string    `gorm:"type:varchar(10);not null;index:idx_ledger_tenant_date,priority:2"`
	OrderNo         string    `gorm:"type:varchar(255);not null;index"`
	CustomerName    string    `gorm:"type:varchar(255)"`
	Status          int       `gorm:"type:smallint;not null"`
	Revenue         float64   `gorm:"type:double precision;not null"`
	RejectionReason string    `gorm:"type:text"`
	RecordedAt      time.Time `gorm:"not null"`
	Lines           []LineDTO `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

func (EntryDTO) TableName() string {
	return "ledger_entries"
}

// LineDTO is the outcome of one item within an entry.
type LineDTO struct {
	ID                uint      `gorm:"primaryKey"`
	EntryID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Position          int       `gorm:"type:int;not null"`
	ItemID            string    `gorm:"type:varchar(255);not null"`
	Name              string    `gorm:"type:varchar(255)"`
	MenuItemID        string    `gorm:"type:varchar(255)"`
	Requested         string    `gorm:"type:varchar(64)"`
	FulfilledQuantity string    `gorm:"type:varchar(64)"`
	RejectionReason   string    `gorm:"type:text"`
	Revenue           float64   `gorm:"type:double precision;not null"`
}

func (LineDTO) TableName() string {
	return "ledger_lines"
}

func fromDomain(entry *ledger.Entry) EntryDTO {
	id := entry.ID().Bytes()
	lines := make([]LineDTO, 0, len(entry.Lines()))
	for i, line := range entry.Lines() {
		lines = append(lines, LineDTO{
			EntryID:           id,
			Position:          i,
			ItemID:            line.ItemID,
			Name:              line.Name,
			MenuItemID:        line.MenuItemID,
			Requested:         line.Requested,
			FulfilledQuantity: line.FulfilledQuantity,
			RejectionReason:   line.RejectionReason,
			Revenue:           line.Revenue,
		})
	}

	return EntryDTO{
		ID:              id,
		TenantID:        entry.Key().TenantID(),
		Date:            entry.Date(),
		OrderNo:         entry.Key().OrderNo(),
		CustomerName:    entry.CustomerName(),
		Status:          int(entry.Status()),
		Revenue:         entry.Revenue(),
		RejectionReason: entry.RejectionReason(),
		RecordedAt:      entry.RecordedAt(),
		Lines:           lines,
	}
}

// toDomain expects Lines to be loaded in Position order.
func toDomain(dto EntryDTO) (*ledger.Entry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	key, err := kernel.NewOrderKey(dto.TenantID, dto.OrderNo)
	if err != nil {
		return nil, err
	}

	lines := make([]ledger.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		lines = append(lines, ledger.Line{
			ItemID:            l.ItemID,
			Name:              l.Name,
			MenuItemID:        l.MenuItemID,
			Requested:         l.Requested,
			FulfilledQuantity: l.FulfilledQuantity,
			RejectionReason:   l.RejectionReason,
			Revenue:           l.Revenue,
		})
	}

	return ledger.RestoreEntry(
		id,
		key,
		dto.Date,
		dto.CustomerName,
		order.Status(dto.Status),
		dto.Revenue,
		lines,
		dto.RejectionReason,
		dto.RecordedAt,
	)
}
