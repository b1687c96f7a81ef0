// Package dedup partitions parsed transaction candidates into new and
// duplicate sets using their content hashes.
package dedup

import (
	"context"

	"statement-import-service/internal/models"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// Engine checks candidate hashes against already-persisted transactions
type Engine struct {
	store  store.TransactionStore
	logger logger.Logger
}

// NewEngine creates a dedup engine backed by the given transaction store
func NewEngine(transactionStore store.TransactionStore) *Engine {
	return &Engine{
		store:  transactionStore,
		logger: logger.GetGlobalLogger().WithComponent("dedup"),
	}
}

// Resolve builds the import result for a parsed batch: candidates whose hash
// already exists in the store are counted as duplicates and excluded, the
// rest become the new-transaction set. Candidate order is preserved.
// Re-running Resolve over an already-committed batch yields zero new
// transactions and an all-duplicates result.
func (e *Engine) Resolve(ctx context.Context, bankID string, candidates []*models.ParsedTransaction, parseErrors []string) (*models.ImportResult, error) {
	// Total counts candidates before dedup; per-line parse errors are
	// carried alongside and are not candidates.
	result := &models.ImportResult{
		BankID: bankID,
		Total:  len(candidates),
		Errors: parseErrors,
	}

	if len(candidates) == 0 {
		return result, nil
	}

	hashes := make([]string, 0, len(candidates))
	for _, tx := range candidates {
		hashes = append(hashes, tx.UniqueHash)
	}

	existing, err := e.store.ExistingHashes(ctx, hashes)
	if err != nil {
		return nil, errors.StoreError(errors.CodeLookupFailed, "existing_hashes", err)
	}

	// A batch can repeat a hash (identical rows in one statement); only the
	// first occurrence is new, the rest are in-batch duplicates.
	seen := make(map[string]struct{}, len(candidates))
	for _, tx := range candidates {
		if _, dup := existing[tx.UniqueHash]; dup {
			result.Duplicates++
			continue
		}
		if _, dup := seen[tx.UniqueHash]; dup {
			result.Duplicates++
			continue
		}
		seen[tx.UniqueHash] = struct{}{}
		result.NewTransactions = append(result.NewTransactions, tx)
	}

	e.logger.WithFields(logger.Fields{
		"bank_id":    bankID,
		"total":      result.Total,
		"new":        len(result.NewTransactions),
		"duplicates": result.Duplicates,
		"errors":     len(result.Errors),
	}).Info("Resolved duplicates for parsed batch")

	return result, nil
}
