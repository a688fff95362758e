package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetDailyRevenueQueryIsNotConstructed = errors.New(
		"GetDailyRevenueQuery must be created via NewGetDailyRevenueQuery constructor",
	)
)

// maxRevenueRange bounds the number of days one query may span.
const maxRevenueRange = 92

// GetDailyRevenueQuery summarises a tenant's ledger per business day over an inclusive
// date range.
//
// Example:
//
//	query, _ := NewGetDailyRevenueQuery("butcher-1", "2026-03-01", "2026-03-31")
//	days, err := handler.Handle(ctx, query)
//	for _, d := range days {
//	    fmt.Printf("%s: %d orders, %.2f\n", d.Date, d.Orders, d.Revenue)
//	}
type GetDailyRevenueQuery struct {
	tenantID string
	from     string
	to       string

	guard guard.ConstructorGuard
}

func NewGetDailyRevenueQuery(tenantID, from, to string) (GetDailyRevenueQuery, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return GetDailyRevenueQuery{}, errs.NewValueIsRequiredError("tenantId")
	}

	fromDay, fromErr := time.Parse(ledger.DateLayout, from)
	toDay, toErr := time.Parse(ledger.DateLayout, to)
	if err := errors.Join(fromErr, toErr); err != nil {
		return GetDailyRevenueQuery{}, errs.NewValueIsInvalidErrorWithCause("date range", err)
	}
	if toDay.Before(fromDay) {
		return GetDailyRevenueQuery{}, errs.NewValueIsInvalidErrorWithCause(
			"date range",
			fmt.Errorf("%s is before %s", to, from),
		)
	}
	if days := int(toDay.Sub(fromDay).Hours()/24) + 1; days > maxRevenueRange {
		return GetDailyRevenueQuery{}, errs.NewValueIsOutOfRangeError("days", days, 1, maxRevenueRange)
	}

	return GetDailyRevenueQuery{
		tenantID: tenantID,
		from:     fromDay.Format(ledger.DateLayout),
		to:       toDay.Format(ledger.DateLayout),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetDailyRevenueQuery) Validate() error {
	return q.guard.Validate(ErrGetDailyRevenueQueryIsNotConstructed)
}

func (q GetDailyRevenueQuery) TenantID() string { return q.tenantID }
func (q GetDailyRevenueQuery) From() string { return q.from }
func (q GetDailyRevenueQuery) To() string { return q.to }

// GetDailyRevenueQueryResponse is one business day. Only the latest decision of every
// order counts, so a re-priced order is not summed twice.
type GetDailyRevenueQueryResponse struct {
	Date     string  `json:"date"`
	Orders   int     `json:"orders"`
	Rejected int     `json:"rejected"`
	Revenue  float64 `json:"revenue"`
}
