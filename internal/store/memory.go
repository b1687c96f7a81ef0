package store

import (
	"context"
	"fmt"
	"sync"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store implementation. It serializes its own
// writes with a single mutex, matching the contract that the persistence
// collaborator is responsible for write serialization.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	categories   []Category
	accounts     map[int64]Account
	transactions []Transaction
	hashSet      map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		accounts: make(map[int64]Account),
		hashSet:  make(map[string]struct{}),
	}
}

func (s *MemoryStore) nextSequence() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// CategoriesByType lists all categories of the given type
func (s *MemoryStore) CategoriesByType(ctx context.Context, txType models.TransactionType) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Category
	for _, c := range s.categories {
		if c.Type == txType {
			result = append(result, c)
		}
	}
	return result, nil
}

// CreateCategory creates a new category and returns it with its id set
func (s *MemoryStore) CreateCategory(ctx context.Context, name string, txType models.TransactionType, isDefault bool) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := Category{
		ID:        s.nextSequence(),
		Name:      name,
		Type:      txType,
		IsDefault: isDefault,
	}
	s.categories = append(s.categories, category)
	return category, nil
}

// CreateAccount creates an account with the given name and starting balance
func (s *MemoryStore) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := Account{
		ID:      s.nextSequence(),
		Name:    name,
		Balance: balance,
	}
	s.accounts[account.ID] = account
	return account, nil
}

// Account returns the account with the given id
func (s *MemoryStore) Account(ctx context.Context, id int64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("account %d not found", id)
	}
	return account, nil
}

// ApplyBalanceDelta adjusts the account balance by the signed delta
func (s *MemoryStore) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %d not found", accountID)
	}
	account.Balance = account.Balance.Add(delta)
	s.accounts[accountID] = account
	return nil
}

// ExistingHashes returns the subset of the given hashes already persisted
func (s *MemoryStore) ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{})
	for _, h := range hashes {
		if _, ok := s.hashSet[h]; ok {
			existing[h] = struct{}{}
		}
	}
	return existing, nil
}

// InsertIgnoringHash inserts transactions, skipping hash conflicts, and
// returns the hashes actually inserted.
func (s *MemoryStore) InsertIgnoringHash(ctx context.Context, transactions []Transaction) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make(map[string]struct{})
	for _, tx := range transactions {
		if _, exists := s.hashSet[tx.UniqueHash]; exists {
			continue
		}
		tx.ID = s.nextSequence()
		s.transactions = append(s.transactions, tx)
		s.hashSet[tx.UniqueHash] = struct{}{}
		inserted[tx.UniqueHash] = struct{}{}
	}
	return inserted, nil
}

// Transactions returns a copy of all persisted transactions
func (s *MemoryStore) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Transaction, len(s.transactions))
	copy(result, s.transactions)
	return result
}
