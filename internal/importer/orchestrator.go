// Package importer wires the parsing paths, category resolution, dedup and
// commit into the import pipeline exposed to callers.
package importer

import (
	"context"

	"statement-import-service/internal/bankconfig"
	"statement-import-service/internal/extractor"
	"statement-import-service/internal/grammar"
	"statement-import-service/internal/models"
	"statement-import-service/pkg/logger"
)

// ParseOutcome is the result of a successful grammar-path parse
type ParseOutcome struct {
	BankID       string
	Transactions []*models.ParsedTransaction
	Errors       []string
}

// Orchestrator runs the grammar parsing path: text extraction, bank
// detection and line-grammar parsing. It never invokes the AI path.
type Orchestrator struct {
	extractor extractor.Extractor
	registry  *bankconfig.Registry
	parser    *grammar.Parser
	logger    logger.Logger
}

// NewOrchestrator creates a grammar-path orchestrator
func NewOrchestrator(ext extractor.Extractor, registry *bankconfig.Registry, parser *grammar.Parser) *Orchestrator {
	return &Orchestrator{
		extractor: ext,
		registry:  registry,
		parser:    parser,
		logger:    logger.GetGlobalLogger().WithComponent("orchestrator"),
	}
}

// TryParse attempts the grammar path on a PDF statement. It returns nil
// whenever the path cannot produce transactions: no extractable text, no
// bank matched the text, or the detected grammar matched zero lines. A nil
// outcome is the signal to fall back to the AI path; it is never an error.
// The extracted text is returned alongside so the fallback can reuse it.
func (o *Orchestrator) TryParse(ctx context.Context, data []byte) (*ParseOutcome, string) {
	text := o.extractor.Extract(data)
	if text == "" {
		o.logger.Debug("No text extracted from document")
		return nil, ""
	}

	config := bankconfig.Detect(text, o.registry.Configs(ctx))
	if config == nil {
		o.logger.Debug("No bank markers matched extracted text")
		return nil, text
	}

	transactions, parseErrors := o.parser.Parse(text, config)
	if len(transactions) == 0 {
		o.logger.WithField("bank_id", config.BankID).Debug("Grammar matched no transaction lines")
		return nil, text
	}

	o.logger.WithFields(logger.Fields{
		"bank_id":      config.BankID,
		"transactions": len(transactions),
	}).Info("Parsed statement via bank grammar")

	return &ParseOutcome{
		BankID:       config.BankID,
		Transactions: transactions,
		Errors:       parseErrors,
	}, text
}
