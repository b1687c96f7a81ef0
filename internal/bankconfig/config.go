// Package bankconfig provides per-bank parser configurations: the detection
// markers and line grammar for each supported bank, the registry that loads
// them from a remote document with a bundled fallback, and bank detection
// over extracted statement text.
package bankconfig

import (
	"fmt"
	"regexp"
	"strings"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

// patternGroups is the number of capture groups every transaction pattern
// must expose, in fixed order: date, sign, amount, operation, details.
const patternGroups = 5

// AmountFormat selects the numeric normalization mode for captured amounts
type AmountFormat string

const (
	// AmountCommaDot handles "1 234,56" / "1.234,56" style amounts
	// (decimal comma, space or dot thousands separators)
	AmountCommaDot AmountFormat = "comma_dot"
	// AmountDotComma handles "1,234.56" style amounts
	// (decimal dot, comma thousands separators)
	AmountDotComma AmountFormat = "dot_comma"
	// AmountPlain handles amounts with no thousands separators
	AmountPlain AmountFormat = "plain"
)

// IsValid checks if the amount format is a known mode
func (f AmountFormat) IsValid() bool {
	switch f {
	case AmountCommaDot, AmountDotComma, AmountPlain, "":
		return true
	}
	return false
}

// ParserConfig describes how to detect and parse one bank's statement
// format. Configs are loaded once per import session from the registry and
// are immutable afterwards.
type ParserConfig struct {
	BankID             string            `json:"bank_id"`
	BankMarkers        []string          `json:"bank_markers"`
	TransactionPattern string            `json:"transaction_pattern"`
	DateFormat         string            `json:"date_format"`
	AmountFormat       AmountFormat      `json:"amount_format"`
	OperationTypeMap   map[string]string `json:"operation_type_map"`
	SkipPatterns       []string          `json:"skip_patterns"`
	JoinLines          bool              `json:"join_lines"`
	UseSignForType     bool              `json:"use_sign_for_type"`

	compiled   *regexp.Regexp
	dateLayout string
}

// Validate compiles the transaction pattern and checks the config
// invariants. It must be called once at load time; a config that fails
// validation is rejected by the registry rather than crashing at match time.
func (c *ParserConfig) Validate() error {
	if strings.TrimSpace(c.BankID) == "" {
		return fmt.Errorf("bank_id cannot be empty")
	}

	if len(c.BankMarkers) == 0 {
		return fmt.Errorf("bank %q has no detection markers", c.BankID)
	}

	compiled, err := regexp.Compile(c.TransactionPattern)
	if err != nil {
		return fmt.Errorf("bank %q transaction pattern does not compile: %w", c.BankID, err)
	}
	if compiled.NumSubexp() != patternGroups {
		return fmt.Errorf("bank %q transaction pattern has %d capture groups, want %d (date, sign, amount, operation, details)",
			c.BankID, compiled.NumSubexp(), patternGroups)
	}

	if strings.TrimSpace(c.DateFormat) == "" {
		return fmt.Errorf("bank %q has no date format", c.BankID)
	}

	if !c.AmountFormat.IsValid() {
		return fmt.Errorf("bank %q has unknown amount format %q", c.BankID, c.AmountFormat)
	}

	c.compiled = compiled
	c.dateLayout = translateDateLayout(c.DateFormat)
	return nil
}

// Pattern returns the compiled transaction pattern. Validate must have been
// called first.
func (c *ParserConfig) Pattern() *regexp.Regexp {
	return c.compiled
}

// DateLayout returns the Go time layout for the config's date format.
// Validate must have been called first.
func (c *ParserConfig) DateLayout() string {
	return c.dateLayout
}

// layoutTokens maps locale-style date pattern tokens to Go reference layout
// fragments. Registry documents are shared with non-Go clients and carry
// patterns like "dd.MM.yy"; longest tokens are replaced first so "yyyy"
// never decays into two "yy" replacements.
var layoutTokens = []struct {
	from string
	to   string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"dd", "02"},
}

// translateDateLayout converts a locale-style date pattern into a Go time
// layout. Patterns already in Go layout form pass through unchanged since
// they contain none of the locale tokens.
func translateDateLayout(pattern string) string {
	layout := pattern
	for _, token := range layoutTokens {
		layout = strings.ReplaceAll(layout, token.from, token.to)
	}
	return layout
}

// amountCleaner strips whitespace variants that banks use as thousands
// separators, including non-breaking and narrow non-breaking spaces that
// survive PDF extraction.
var amountCleaner = strings.NewReplacer(" ", "", "\t", "", "\u00a0", "", "\u202f", "")

// NormalizeAmount normalizes a captured amount string per the config's
// amount format and parses it as a positive decimal magnitude. The sign is
// captured separately by the grammar and never folded into the value.
func NormalizeAmount(raw string, format AmountFormat) (decimal.Decimal, error) {
	s := amountCleaner.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	switch format {
	case AmountCommaDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case AmountDotComma:
		s = strings.ReplaceAll(s, ",", "")
	default:
		// AmountPlain: whitespace stripping only, but tolerate a decimal
		// comma since some statements mix conventions
		if !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format '%s': %w", raw, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount magnitude must be positive, got %s", d.String())
	}

	return d, nil
}

// OperationType resolves the transaction type for a captured operation
// label and sign. When UseSignForType is set the sign character wins over
// the operation map; unknown signs and labels default to expense.
func (c *ParserConfig) OperationType(operation, sign string) string {
	if c.UseSignForType {
		if t, err := models.TypeForSign(sign); err == nil {
			return strings.ToLower(t.String())
		}
		return "expense"
	}

	if mapped, ok := c.OperationTypeMap[operation]; ok {
		return mapped
	}
	return "expense"
}
