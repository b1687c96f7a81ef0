package importer

import (
	"context"

	"statement-import-service/internal/models"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// CommitSummary reports what a commit actually persisted
type CommitSummary struct {
	Committed          int `json:"committed"`
	SkippedNoCategory  int `json:"skipped_no_category"`
	DuplicatesAtCommit int `json:"duplicates_at_commit"`
}

// Committer persists reviewed transactions and adjusts the account balance
type Committer struct {
	store  store.Store
	logger logger.Logger
}

// NewCommitter creates a committer over the given store
func NewCommitter(s store.Store) *Committer {
	return &Committer{
		store:  s,
		logger: logger.GetGlobalLogger().WithComponent("committer"),
	}
}

// Commit persists the new transactions of an import result into the given
// account, applying per-candidate overrides first.
//
// Candidates whose resolved category is still nil are silently skipped;
// they remain in the preview for the user to fix. Inserts ignore hash
// conflicts, so a concurrent import of the same statement cannot double
// count: the balance delta is applied only for rows the store actually
// inserted, in candidate order.
func (c *Committer) Commit(ctx context.Context, accountID int64, result *models.ImportResult, overrides map[int]*models.TransactionOverride) (*CommitSummary, error) {
	summary := &CommitSummary{}

	if result == nil || len(result.NewTransactions) == 0 {
		return summary, nil
	}

	if _, err := c.store.Account(ctx, accountID); err != nil {
		return nil, errors.StoreError(errors.CodeLookupFailed, "account", err)
	}

	var rows []store.Transaction
	var resolved []*models.ParsedTransaction

	for i, tx := range result.NewTransactions {
		override := overrides[i]
		if override == nil {
			override = &models.TransactionOverride{}
		}

		candidate := applyOverride(tx, override)
		if candidate.CategoryID == nil {
			summary.SkippedNoCategory++
			continue
		}
		if err := candidate.Validate(); err != nil {
			return nil, errors.ValidationError(errors.CodeOutOfRange, "transaction", candidate.String(), err)
		}

		rows = append(rows, store.Transaction{
			AccountID:  accountID,
			CategoryID: *candidate.CategoryID,
			Date:       candidate.Date,
			Amount:     candidate.Amount,
			Type:       candidate.Type,
			Details:    candidate.Details,
			UniqueHash: candidate.UniqueHash,
		})
		resolved = append(resolved, candidate)
	}

	if len(rows) == 0 {
		return summary, nil
	}

	inserted, err := c.store.InsertIgnoringHash(ctx, rows)
	if err != nil {
		return nil, errors.StoreError(errors.CodeInsertFailed, "insert_transactions", err)
	}

	for _, candidate := range resolved {
		if _, ok := inserted[candidate.UniqueHash]; !ok {
			summary.DuplicatesAtCommit++
			continue
		}
		if err := c.store.ApplyBalanceDelta(ctx, accountID, candidate.SignedAmount()); err != nil {
			return nil, errors.StoreError(errors.CodeInsertFailed, "apply_balance_delta", err)
		}
		summary.Committed++
	}

	c.logger.WithFields(logger.Fields{
		"account_id": accountID,
		"committed":  summary.Committed,
		"skipped":    summary.SkippedNoCategory,
		"duplicates": summary.DuplicatesAtCommit,
	}).Info("Committed import")

	return summary, nil
}
