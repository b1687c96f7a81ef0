package aifallback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"statement-import-service/internal/models"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// responseDateLayout is the date format the prompt instructs the model to use
const responseDateLayout = "2006-01-02"

// envelope is the JSON document the model is asked to return
type envelope struct {
	Transactions []record `json:"transactions"`
}

// record is one transaction row in the model response. Unknown fields are
// tolerated; missing optional fields decode to their zero values.
type record struct {
	Date                  string          `json:"date"`
	Amount                decimal.Decimal `json:"amount"`
	Type                  string          `json:"type"`
	Details               string          `json:"details"`
	CategoryID            *int64          `json:"category_id"`
	SuggestedCategoryName *string         `json:"suggested_category_name"`
	Confidence            float64         `json:"confidence"`
}

// FallbackParser turns statement text or photos into transaction candidates
// via a generative model.
type FallbackParser struct {
	generator Generator
	extractor JSONExtractor
	store     store.CategoryStore
	logger    logger.Logger
}

// NewFallbackParser creates an AI fallback parser
func NewFallbackParser(generator Generator, extractor JSONExtractor, categoryStore store.CategoryStore) *FallbackParser {
	if extractor == nil {
		extractor = NewDelimiterExtractor()
	}
	return &FallbackParser{
		generator: generator,
		extractor: extractor,
		store:     categoryStore,
		logger:    logger.GetGlobalLogger().WithComponent("ai_fallback"),
	}
}

// ParseText extracts transaction candidates from raw statement text.
//
// A generation failure is a hard error. A response whose top-level envelope
// cannot be decoded yields zero candidates and one error string. Individual
// records that fail coercion become error strings naming the offending
// record; the rest of the batch survives.
func (p *FallbackParser) ParseText(ctx context.Context, text string) ([]*models.ParsedTransaction, []string, error) {
	builder, err := p.promptBuilder(ctx)
	if err != nil {
		return nil, nil, err
	}

	response, err := p.generator.Generate(ctx, builder.BuildTextPrompt(text), nil)
	if err != nil {
		return nil, nil, errors.AIError(errors.CodeGenerationFailed, err)
	}

	transactions, recordErrors := p.decode(response)
	return transactions, recordErrors, nil
}

// ParseImages extracts transaction candidates from statement photos
func (p *FallbackParser) ParseImages(ctx context.Context, images [][]byte) ([]*models.ParsedTransaction, []string, error) {
	if len(images) == 0 {
		return nil, nil, errors.ValidationError(errors.CodeMissingField, "images", nil, nil)
	}

	builder, err := p.promptBuilder(ctx)
	if err != nil {
		return nil, nil, err
	}

	response, err := p.generator.Generate(ctx, builder.BuildImagePrompt(), images)
	if err != nil {
		return nil, nil, errors.AIError(errors.CodeGenerationFailed, err)
	}

	transactions, recordErrors := p.decode(response)
	return transactions, recordErrors, nil
}

func (p *FallbackParser) promptBuilder(ctx context.Context) (*PromptBuilder, error) {
	expense, err := p.store.CategoriesByType(ctx, models.TypeExpense)
	if err != nil {
		return nil, errors.StoreError(errors.CodeLookupFailed, "categories_by_type", err)
	}
	income, err := p.store.CategoriesByType(ctx, models.TypeIncome)
	if err != nil {
		return nil, errors.StoreError(errors.CodeLookupFailed, "categories_by_type", err)
	}
	return NewPromptBuilder(expense, income), nil
}

// decode parses the model response into candidates, capturing per-record
// coercion failures as error strings.
func (p *FallbackParser) decode(response string) ([]*models.ParsedTransaction, []string) {
	payload, err := p.extractor.Extract(response)
	if err != nil {
		return nil, []string{err.Error()}
	}

	var doc envelope
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		p.logger.WithError(err).Warn("Model response is not valid JSON")
		return nil, []string{fmt.Sprintf("invalid model response: %v", err)}
	}

	var transactions []*models.ParsedTransaction
	var recordErrors []string

	for i, r := range doc.Transactions {
		tx, err := coerceRecord(r)
		if err != nil {
			recordErrors = append(recordErrors, fmt.Sprintf("record %d (%s): %v", i+1, r.Details, err))
			continue
		}
		transactions = append(transactions, tx)
	}

	p.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"errors":       len(recordErrors),
	}).Debug("Decoded model response")

	return transactions, recordErrors
}

func coerceRecord(r record) (*models.ParsedTransaction, error) {
	date, err := time.Parse(responseDateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}

	if !r.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", r.Amount.String())
	}

	txType, err := models.ParseTransactionType(r.Type)
	if err != nil {
		return nil, err
	}

	confidence := r.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of range", confidence)
	}

	tx := models.NewParsedTransaction(date, r.Amount, txType, "", r.Details, confidence)
	tx.CategoryID = r.CategoryID
	if r.SuggestedCategoryName != nil {
		tx.SuggestedCategoryName = *r.SuggestedCategoryName
	}

	return tx, nil
}
