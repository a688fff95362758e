package queries

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetLedgerEntriesQueryIsNotConstructed = errors.New(
		"GetLedgerEntriesQuery must be created via NewGetLedgerEntriesQuery constructor",
	)
)

// GetLedgerEntriesQuery reads one business day of a tenant's ledger.
type GetLedgerEntriesQuery struct {
	tenantID string
	date     time.Time

	guard guard.ConstructorGuard
}

// NewGetLedgerEntriesQuery parses date as YYYY-MM-DD.
func NewGetLedgerEntriesQuery(tenantID, date string) (GetLedgerEntriesQuery, error) {
	tenantID = strings.TrimSpace(tenantID)

	var err error
	if tenantID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("tenantId"))
	}
	day, parseErr := time.Parse(ledger.DateLayout, strings.TrimSpace(date))
	if parseErr != nil {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("date", parseErr))
	}
	if err != nil {
		return GetLedgerEntriesQuery{}, err
	}

	return GetLedgerEntriesQuery{
		tenantID: tenantID,
		date:     day,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetLedgerEntriesQuery) Validate() error {
	return q.guard.Validate(ErrGetLedgerEntriesQueryIsNotConstructed)
}

func (q GetLedgerEntriesQuery) TenantID() string {
	return q.tenantID
}

func (q GetLedgerEntriesQuery) Date() time.Time {
	return q.date
}
