// Package grammar implements the line-grammar parsing path: applying a
// bank's configured transaction pattern to extracted statement text and
// producing structured transaction candidates.
package grammar

import (
	"regexp"
	"strings"
	"time"

	"statement-import-service/internal/bankconfig"
	"statement-import-service/internal/models"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// datePrefixPattern recognizes lines that begin a new transaction record.
// Physical lines without a leading date are continuations of the previous
// record when the bank's config enables line joining.
var datePrefixPattern = regexp.MustCompile(`^\s*\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`)

// Parser applies a ParserConfig's line grammar to statement text
type Parser struct {
	logger logger.Logger
}

// NewParser creates a line grammar parser
func NewParser() *Parser {
	return &Parser{
		logger: logger.GetGlobalLogger().WithComponent("grammar_parser"),
	}
}

// Parse extracts transaction candidates from statement text using the given
// bank config. Lines that do not match the grammar are silently ignored
// (headers, footers, page furniture). Lines that match but fail field
// coercion are collected as error strings; one bad line never aborts the
// batch. Empty text yields an empty result, not an error.
//
// The config must have been validated by the registry; its compiled pattern
// is used directly.
func (p *Parser) Parse(text string, config *bankconfig.ParserConfig) ([]*models.ParsedTransaction, []string) {
	if strings.TrimSpace(text) == "" || config == nil || config.Pattern() == nil {
		return nil, nil
	}

	lines := logicalLines(text, config.JoinLines, config.SkipPatterns)

	var transactions []*models.ParsedTransaction
	var parseErrors []string

	for i, line := range lines {
		if shouldSkip(line, config.SkipPatterns) {
			continue
		}

		match := config.Pattern().FindStringSubmatch(line)
		if match == nil {
			continue
		}

		tx, err := p.coerce(match, config, i+1)
		if err != nil {
			p.logger.WithError(err).WithFields(logger.Fields{
				"bank_id": config.BankID,
				"line":    i + 1,
			}).Warn("Skipping unparsable transaction line")
			parseErrors = append(parseErrors, err.Error())
			continue
		}

		transactions = append(transactions, tx)
	}

	p.logger.WithFields(logger.Fields{
		"bank_id":      config.BankID,
		"lines":        len(lines),
		"transactions": len(transactions),
		"errors":       len(parseErrors),
	}).Debug("Parsed statement text")

	return transactions, parseErrors
}

// coerce turns the five captured groups (date, sign, amount, operation,
// details, in fixed order) into a transaction candidate.
func (p *Parser) coerce(match []string, config *bankconfig.ParserConfig, line int) (*models.ParsedTransaction, error) {
	rawDate, sign, rawAmount, operation, details := match[1], match[2], match[3], match[4], match[5]

	date, err := time.Parse(config.DateLayout(), strings.TrimSpace(rawDate))
	if err != nil {
		return nil, errors.LineError(errors.CodeInvalidDate, line, rawDate, err)
	}

	amount, err := bankconfig.NormalizeAmount(rawAmount, config.AmountFormat)
	if err != nil {
		return nil, errors.LineError(errors.CodeInvalidAmount, line, rawAmount, err)
	}

	txType, err := models.ParseTransactionType(config.OperationType(operation, sign))
	if err != nil {
		return nil, errors.LineError(errors.CodeInvalidType, line, operation, err)
	}

	// Regex-matched transactions are fully trusted: confidence 1.0, no
	// review flag. Category resolution happens downstream.
	tx := models.NewParsedTransaction(date, amount, txType, operation, details, 1.0)
	tx.SuggestedCategoryName = operation

	return tx, nil
}

// logicalLines splits text into physical lines and, when join is set,
// merges continuation lines (those lacking a leading date) onto the
// previous line to rebuild records that wrapped across lines. Lines
// containing a skip pattern are statement furniture, never continuations;
// they stay standalone so the skip filter can drop them.
func logicalLines(text string, join bool, skipPatterns []string) []string {
	physical := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	if !join {
		return physical
	}

	var logical []string
	for _, line := range physical {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if len(logical) > 0 && !datePrefixPattern.MatchString(line) && !shouldSkip(line, skipPatterns) {
			logical[len(logical)-1] = logical[len(logical)-1] + " " + trimmed
			continue
		}

		logical = append(logical, line)
	}

	return logical
}

// shouldSkip reports whether the line contains any configured skip pattern.
// Skip patterns are literal substrings, not regexes.
func shouldSkip(line string, skipPatterns []string) bool {
	for _, pattern := range skipPatterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(line, pattern) {
			return true
		}
	}
	return false
}
