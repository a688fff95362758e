package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDailyRevenueQueryHandler aggregates ledger rows directly in postgres.
type GetDailyRevenueQueryHandler struct {
	db *gorm.DB
}

func NewGetDailyRevenueQueryHandler(db *gorm.DB) GetDailyRevenueQueryHandler {
	return GetDailyRevenueQueryHandler{db: db}
}

// Handle returns one row per day that has entries, oldest first. Days without entries are
// absent.
func (h GetDailyRevenueQueryHandler) Handle(
	ctx context.Context,
	query GetDailyRevenueQuery,
) ([]GetDailyRevenueQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	days := make([]GetDailyRevenueQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			latest.date,
			COUNT(*),
			COUNT(*) FILTER (WHERE latest.status = ?),
			COALESCE(SUM(latest.revenue), 0)
		FROM (
			SELECT DISTINCT ON (order_no, date)
				order_no,
				date,
				status,
				revenue
			FROM ledger_entries
			WHERE tenant_id = ? AND date BETWEEN ? AND ?
			ORDER BY order_no, date, recorded_at DESC, id DESC
		) AS latest
		GROUP BY latest.date
		ORDER BY latest.date
	`, int(order.Rejected), query.TenantID(), query.From(), query.To()).Rows()
	if err != nil {
		return nil, errs.NewLedgerUnavailableError("daily revenue", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day GetDailyRevenueQueryResponse
		if err = rows.Scan(&day.Date, &day.Orders, &day.Rejected, &day.Revenue); err != nil {
			return nil, errs.NewLedgerUnavailableError("daily revenue", err)
		}
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, errs.NewLedgerUnavailableError("daily revenue", err)
	}

	return days, nil
}
