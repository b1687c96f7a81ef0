// Package categories resolves category assignment for pattern-matched
// transactions. The AI path supplies its own category hints and never goes
// through this resolver.
package categories

import (
	"context"
	"strings"

	"statement-import-service/internal/models"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/logger"
)

// defaultAliases maps normalized operation labels (and their translated
// variants) to canonical default-category names.
var defaultAliases = map[string]string{
	"покупка":        "Покупки",
	"покупки":        "Покупки",
	"purchase":       "Покупки",
	"payment":        "Покупки",
	"оплата":         "Покупки",
	"перевод":        "Переводы",
	"переводы":       "Переводы",
	"transfer":       "Переводы",
	"пополнение":     "Пополнения",
	"зачисление":     "Пополнения",
	"deposit":        "Пополнения",
	"replenishment":  "Пополнения",
	"снятие":         "Снятие наличных",
	"снятие наличных": "Снятие наличных",
	"withdrawal":     "Снятие наличных",
	"комиссия":       "Комиссии",
	"fee":            "Комиссии",
}

// Resolver assigns category ids to parsed transactions by alias lookup,
// lazily creating non-default categories for operations it has never seen.
type Resolver struct {
	store  store.CategoryStore
	logger logger.Logger
}

// NewResolver creates a category resolver backed by the given store
func NewResolver(categoryStore store.CategoryStore) *Resolver {
	return &Resolver{
		store:  categoryStore,
		logger: logger.GetGlobalLogger().WithComponent("category_resolver"),
	}
}

// Resolve assigns category ids in place for transactions lacking one.
//
// For each transaction the operation label is normalized through the alias
// table and looked up among existing categories of the matching type. When
// no category resolves, a new non-default category named after the raw
// operation label is created once per (operation, type) pair for the run;
// later transactions with the same operation reuse it. Transactions that
// still cannot be resolved keep a nil category id and their suggested
// category name for manual resolution.
func (r *Resolver) Resolve(ctx context.Context, transactions []*models.ParsedTransaction) error {
	if len(transactions) == 0 {
		return nil
	}

	// byName indexes known categories per type by lowercased name
	byName := make(map[models.TransactionType]map[string]store.Category)
	for _, txType := range []models.TransactionType{models.TypeExpense, models.TypeIncome} {
		existing, err := r.store.CategoriesByType(ctx, txType)
		if err != nil {
			return err
		}
		index := make(map[string]store.Category, len(existing))
		for _, c := range existing {
			index[strings.ToLower(c.Name)] = c
		}
		byName[txType] = index
	}

	// created tracks categories made during this run so the same operation
	// label never produces duplicates within one import.
	type operationKey struct {
		name   string
		txType models.TransactionType
	}
	created := make(map[operationKey]store.Category)

	for _, tx := range transactions {
		if tx.CategoryID != nil {
			continue
		}

		operation := strings.TrimSpace(tx.OperationType)
		if operation == "" {
			operation = strings.TrimSpace(tx.SuggestedCategoryName)
		}
		if operation == "" {
			continue
		}

		canonical := canonicalName(operation)

		if category, ok := byName[tx.Type][strings.ToLower(canonical)]; ok {
			id := category.ID
			tx.CategoryID = &id
			continue
		}

		key := operationKey{name: strings.ToLower(operation), txType: tx.Type}
		if category, ok := created[key]; ok {
			id := category.ID
			tx.CategoryID = &id
			continue
		}

		category, err := r.store.CreateCategory(ctx, operation, tx.Type, false)
		if err != nil {
			// Leave unresolved: the suggested name still allows manual
			// assignment in the preview.
			r.logger.WithError(err).WithField("operation", operation).Warn("Failed to create category")
			continue
		}

		r.logger.WithFields(logger.Fields{
			"category": category.Name,
			"type":     tx.Type.String(),
		}).Debug("Created category for unmapped operation")

		created[key] = category
		byName[tx.Type][strings.ToLower(category.Name)] = category
		id := category.ID
		tx.CategoryID = &id
	}

	return nil
}

// canonicalName maps an operation label to its canonical default-category
// name, falling back to the label itself for unknown operations.
func canonicalName(operation string) string {
	if canonical, ok := defaultAliases[strings.ToLower(strings.TrimSpace(operation))]; ok {
		return canonical
	}
	return operation
}
