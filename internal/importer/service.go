package importer

import (
	"context"

	"statement-import-service/internal/aifallback"
	"statement-import-service/internal/categories"
	"statement-import-service/internal/dedup"
	"statement-import-service/internal/models"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// Service is the import pipeline facade: it tries the grammar path first,
// falls back to the AI path, resolves categories, drops duplicates and
// commits reviewed batches.
type Service struct {
	orchestrator *Orchestrator
	fallback     *aifallback.FallbackParser
	resolver     *categories.Resolver
	dedup        *dedup.Engine
	committer    *Committer
	logger       logger.Logger
}

// NewService assembles the import pipeline
func NewService(orchestrator *Orchestrator, fallback *aifallback.FallbackParser, resolver *categories.Resolver, dedupEngine *dedup.Engine, committer *Committer) *Service {
	return &Service{
		orchestrator: orchestrator,
		fallback:     fallback,
		resolver:     resolver,
		dedup:        dedupEngine,
		committer:    committer,
		logger:       logger.GetGlobalLogger().WithComponent("import_service"),
	}
}

// ImportPDF parses a PDF statement into an import result ready for preview.
//
// The grammar path runs first. When it cannot produce transactions the
// extracted text goes to the AI path instead; a PDF that yields no text at
// all cannot be parsed and returns an extraction error. Grammar-path
// candidates get categories resolved here; AI candidates arrive with the
// model's own category hints.
func (s *Service) ImportPDF(ctx context.Context, data []byte) (*models.ImportResult, error) {
	if len(data) == 0 {
		return nil, errors.FileError(errors.CodeFileEmpty, "statement", nil)
	}

	op := logger.NewOperationLogger("import_pdf", s.logger)

	op.Step("grammar")
	outcome, text := s.orchestrator.TryParse(ctx, data)

	if outcome != nil {
		op.Step("categories")
		if err := s.resolver.Resolve(ctx, outcome.Transactions); err != nil {
			op.Error(err, "Category resolution failed")
			return nil, err
		}
		result, err := s.dedup.Resolve(ctx, outcome.BankID, outcome.Transactions, outcome.Errors)
		if err != nil {
			op.Error(err, "Dedup failed")
			return nil, err
		}
		op.WithField("bank_id", outcome.BankID).Success("Statement imported via grammar")
		return result, nil
	}

	if text == "" {
		err := errors.New(errors.CategoryExtract, errors.CodeNoText, "no text could be extracted from the document")
		op.Error(err, "Extraction produced no text")
		return nil, err
	}

	op.Step("ai_fallback")

	transactions, parseErrors, err := s.fallback.ParseText(ctx, text)
	if err != nil {
		op.Error(err, "AI fallback failed")
		return nil, err
	}

	result, err := s.dedup.Resolve(ctx, "", transactions, parseErrors)
	if err != nil {
		op.Error(err, "Dedup failed")
		return nil, err
	}
	op.Success("Statement imported via AI fallback")
	return result, nil
}

// ImportPhoto parses statement photos via the AI path
func (s *Service) ImportPhoto(ctx context.Context, images [][]byte) (*models.ImportResult, error) {
	transactions, parseErrors, err := s.fallback.ParseImages(ctx, images)
	if err != nil {
		return nil, err
	}
	return s.dedup.Resolve(ctx, "", transactions, parseErrors)
}

// Commit persists the reviewed result into the account
func (s *Service) Commit(ctx context.Context, accountID int64, result *models.ImportResult, overrides map[int]*models.TransactionOverride) (*CommitSummary, error) {
	return s.committer.Commit(ctx, accountID, result, overrides)
}
