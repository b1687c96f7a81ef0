// Package store defines the persistence collaborator consumed by the import
// pipeline, plus an in-memory implementation used by the CLI and tests.
//
// The pipeline only depends on the interfaces here; the mobile application's
// relational store satisfies them from the outside.
package store

import (
	"context"
	"time"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

// Category is a spending/income category known to the application
type Category struct {
	ID        int64
	Name      string
	Type      models.TransactionType
	IsDefault bool
}

// Account is a money account whose balance import commits adjust
type Account struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}

// Transaction is a persisted transaction row
type Transaction struct {
	ID         int64
	AccountID  int64
	CategoryID int64
	Date       time.Time
	Amount     decimal.Decimal
	Type       models.TransactionType
	Details    string
	UniqueHash string
}

// CategoryStore provides category lookup and creation by type
type CategoryStore interface {
	// CategoriesByType lists all categories of the given type
	CategoriesByType(ctx context.Context, txType models.TransactionType) ([]Category, error)
	// CreateCategory creates a new category and returns it with its id set
	CreateCategory(ctx context.Context, name string, txType models.TransactionType, isDefault bool) (Category, error)
}

// TransactionStore provides hash-based existence checks and conflict-free
// inserts for transactions.
type TransactionStore interface {
	// ExistingHashes returns the subset of the given hashes that are
	// already persisted.
	ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error)
	// InsertIgnoringHash inserts the given transactions, silently skipping
	// any whose unique hash already exists, and returns the hashes that
	// were actually inserted. Inserts only: balance deltas are applied
	// separately by the caller via AccountStore.ApplyBalanceDelta, keyed
	// off the returned hash set, so an insert and its delta are not
	// atomic with each other.
	InsertIgnoringHash(ctx context.Context, transactions []Transaction) (map[string]struct{}, error)
}

// AccountStore provides account lookup and balance adjustment
type AccountStore interface {
	// Account returns the account with the given id
	Account(ctx context.Context, id int64) (Account, error)
	// ApplyBalanceDelta adjusts the account balance by the signed delta
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error
}

// Store is the full persistence collaborator surface
type Store interface {
	CategoryStore
	TransactionStore
	AccountStore
}
