package ledgerrepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormLedgerRepository implements ports.LedgerRepository using GORM.
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts the entry together with its lines.
func (r *GormLedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewLedgerUnavailableError("append", err)
	}
	return nil
}

// ListByTenantAndDate returns entries in recording order.
func (r *GormLedgerRepository) ListByTenantAndDate(ctx context.Context, tenantID string, date time.Time) ([]*ledger.Entry, error) {
	if tenantID == "" {
		return nil, errs.NewValueIsRequiredError("tenantId")
	}

	var dtos []EntryDTO
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("tenant_id = ? AND date = ?", tenantID, date.Format(ledger.DateLayout)).
		Order("recorded_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, errs.NewLedgerUnavailableError("list", err)
	}

	entries := make([]*ledger.Entry, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
