// Package models defines the core types shared by both statement parsing
// paths and the commit pipeline.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReviewThreshold is the confidence below which a parsed transaction is
// flagged for manual review before commit.
const ReviewThreshold = 0.7

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	// TypeIncome represents money flowing into the account
	TypeIncome TransactionType = "INCOME"
	// TypeExpense represents money flowing out of the account
	TypeExpense TransactionType = "EXPENSE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType parses and validates a transaction type from string.
// Accepts the codes emitted by parser configs and the AI response schema.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME", "IN", "CREDIT":
		return TypeIncome, nil
	case "EXPENSE", "OUT", "DEBIT":
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("invalid transaction type '%s': must be income or expense", s)
	}
}

// TypeForSign maps a captured sign character to a transaction type.
func TypeForSign(sign string) (TransactionType, error) {
	switch sign {
	case "+":
		return TypeIncome, nil
	case "-", "−":
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("invalid sign character '%s'", sign)
	}
}

// ParsedTransaction is a candidate transaction produced by either parsing
// path, pending user review and commit.
type ParsedTransaction struct {
	Date                   time.Time       `json:"date"`
	Amount                 decimal.Decimal `json:"amount"`
	Type                   TransactionType `json:"type"`
	OperationType          string          `json:"operation_type"`
	Details                string          `json:"details"`
	CategoryID             *int64          `json:"category_id,omitempty"`
	SuggestedCategoryName  string          `json:"suggested_category_name,omitempty"`
	Confidence             float64         `json:"confidence"`
	NeedsReview            bool            `json:"needs_review"`
	UniqueHash             string          `json:"unique_hash"`
}

// NewParsedTransaction creates a candidate with its derived fields (hash,
// needs-review flag) computed from the given values.
func NewParsedTransaction(date time.Time, amount decimal.Decimal, txType TransactionType, operation, details string, confidence float64) *ParsedTransaction {
	details = strings.TrimSpace(details)
	return &ParsedTransaction{
		Date:          date,
		Amount:        amount,
		Type:          txType,
		OperationType: operation,
		Details:       details,
		Confidence:    confidence,
		NeedsReview:   confidence < ReviewThreshold,
		UniqueHash:    UniqueHash(date, amount, txType, details),
	}
}

// Validate performs basic validation on the ParsedTransaction
func (p *ParsedTransaction) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", p.Amount.String())
	}

	if !p.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", p.Type)
	}

	if len(p.UniqueHash) != 64 {
		return fmt.Errorf("unique hash must be 64 hex characters, got %d", len(p.UniqueHash))
	}

	return nil
}

// String returns a string representation of the ParsedTransaction
func (p *ParsedTransaction) String() string {
	return fmt.Sprintf("ParsedTransaction{Date: %s, Amount: %s, Type: %s, Details: %s}",
		p.Date.Format("2006-01-02"), p.Amount.String(), p.Type, p.Details)
}

// SignedAmount returns the amount with the sign convention used for balance
// deltas: positive for income, negative for expense.
func (p *ParsedTransaction) SignedAmount() decimal.Decimal {
	if p.Type == TypeExpense {
		return p.Amount.Neg()
	}
	return p.Amount
}

// TransactionOverride carries user-entered field corrections for one
// candidate. Unset fields fall back to the parsed values at commit time.
// Overrides exist only for the duration of one import session.
type TransactionOverride struct {
	Amount     *decimal.Decimal
	Type       *TransactionType
	Details    *string
	Date       *time.Time
	CategoryID *int64
}

// IsEmpty reports whether the override carries no corrections
func (o *TransactionOverride) IsEmpty() bool {
	return o == nil ||
		(o.Amount == nil && o.Type == nil && o.Details == nil && o.Date == nil && o.CategoryID == nil)
}

// ImportResult summarizes one full import run
type ImportResult struct {
	BankID          string               `json:"bank_id,omitempty"`
	Total           int                  `json:"total"`
	NewTransactions []*ParsedTransaction `json:"new_transactions"`
	Duplicates      int                  `json:"duplicates"`
	Errors          []string             `json:"errors,omitempty"`
}

// ReadyCount returns how many new transactions have a resolved category and
// would therefore be included in a commit.
func (r *ImportResult) ReadyCount() int {
	count := 0
	for _, tx := range r.NewTransactions {
		if tx.CategoryID != nil {
			count++
		}
	}
	return count
}
