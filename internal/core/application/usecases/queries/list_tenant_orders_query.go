package queries

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrListTenantOrdersQueryIsNotConstructed = errors.New(
		"ListTenantOrdersQuery must be created via NewListTenantOrdersQuery constructor",
	)
)

// ListTenantOrdersQuery lists the orders a tenant's terminals show. Finished orders stay in
// the cache until they are purged and are only listed on request.
//
// Example:
//
//	query, _ := NewListTenantOrdersQuery("butcher-1", false)
//	orders, err := handler.Handle(ctx, query)
type ListTenantOrdersQuery struct {
	tenantID        string
	includeFinished bool

	guard guard.ConstructorGuard
}

func NewListTenantOrdersQuery(tenantID string, includeFinished bool) (ListTenantOrdersQuery, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ListTenantOrdersQuery{}, errs.NewValueIsRequiredError("tenantId")
	}
	return ListTenantOrdersQuery{
		tenantID:        tenantID,
		includeFinished: includeFinished,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (q ListTenantOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListTenantOrdersQueryIsNotConstructed)
}

func (q ListTenantOrdersQuery) TenantID() string {
	return q.tenantID
}

func (q ListTenantOrdersQuery) IncludeFinished() bool {
	return q.includeFinished
}
