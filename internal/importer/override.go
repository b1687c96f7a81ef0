package importer

import (
	"statement-import-service/internal/models"
)

// applyOverride merges user corrections over a parsed candidate and returns
// the resolved copy. The hash is recomputed from the resolved fields so a
// corrected transaction dedupes against its corrected identity, not the
// originally parsed one. The input candidate is not mutated.
func applyOverride(tx *models.ParsedTransaction, override *models.TransactionOverride) *models.ParsedTransaction {
	resolved := *tx

	if override.IsEmpty() {
		return &resolved
	}

	if override.Date != nil {
		resolved.Date = *override.Date
	}
	if override.Amount != nil {
		resolved.Amount = *override.Amount
	}
	if override.Type != nil {
		resolved.Type = *override.Type
	}
	if override.Details != nil {
		resolved.Details = *override.Details
	}
	if override.CategoryID != nil {
		resolved.CategoryID = override.CategoryID
	}

	resolved.UniqueHash = models.UniqueHash(resolved.Date, resolved.Amount, resolved.Type, resolved.Details)
	return &resolved
}
