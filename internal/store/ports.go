package store

import (
	"context"
	"errors"

	"infinance/internal/core"
)

// ErrNotFound is returned when an entity id does not exist in the store.
var ErrNotFound = errors.New("not found")

// Ports for the persistence adapters. Every backend keeps raw entities;
// balances and goal progress are always recomputed from transactions.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		PutTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		PutCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	InvestmentStore interface {
		ListInvestments(ctx context.Context) ([]core.Investment, error)
		PutInvestment(ctx context.Context, inv core.Investment) error
		DeleteInvestment(ctx context.Context, id string) error
	}

	// SnapshotStore moves the whole ledger in one piece, for backup
	// export/import and for mirroring between backends.
	SnapshotStore interface {
		LoadAll(ctx context.Context) (core.Snapshot, error)
		SaveAll(ctx context.Context, snap core.Snapshot) error
	}
)

// Backend is the unified persistence surface the services run against.
type Backend interface {
	TransactionStore
	CategoryStore
	InvestmentStore
	SnapshotStore
}
