// Package commands contains the operations that change order, relay and connection state.
// Every command is built by a validating constructor and run by a handler's Handle method.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces give command handlers transactional access to the ledger and the
// price book.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// LedgerRepoFactory provides the ledger within a transaction.
	LedgerRepoFactory interface {
		LedgerRepository() ports.LedgerRepository
	}

	// PriceBookRepoFactory provides the price book within a transaction.
	PriceBookRepoFactory interface {
		PriceBookRepository() ports.PriceBookRepository
	}

	// LedgerUoW is used when a decision is priced and recorded.
	LedgerUoW interface {
		TxManager
		LedgerRepoFactory
		PriceBookRepoFactory
	}

	LedgerUoWFactory interface {
		Create() LedgerUoW
	}

	// PriceBookUoW is used when a menu change updates prices.
	PriceBookUoW interface {
		TxManager
		PriceBookRepoFactory
	}

	PriceBookUoWFactory interface {
		Create() PriceBookUoW
	}
)

// KeyLocker serialises work on one order. Lock blocks until the key is free and returns
// the release function.
type KeyLocker interface {
	Lock(key string) (unlock func())
}
