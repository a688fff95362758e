package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/ledger"
	"fulfillment/internal/core/ports"
)

// GetLedgerEntriesQueryHandler reads through a unit of work without opening a transaction.
type GetLedgerEntriesQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetLedgerEntriesQueryHandler(uowFactory ports.UnitOfWorkFactory) GetLedgerEntriesQueryHandler {
	return GetLedgerEntriesQueryHandler{uowFactory: uowFactory}
}

func (h GetLedgerEntriesQueryHandler) Handle(ctx context.Context, query GetLedgerEntriesQuery) ([]*ledger.Entry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	entries, err := h.uowFactory.Create().LedgerRepository().ListByTenantAndDate(ctx, query.TenantID(), query.Date())
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make([]*ledger.Entry, 0)
	}
	return entries, nil
}
