package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionType
		wantErr bool
	}{
		{"income", TypeIncome, false},
		{"INCOME", TypeIncome, false},
		{"credit", TypeIncome, false},
		{"expense", TypeExpense, false},
		{"  Expense  ", TypeExpense, false},
		{"debit", TypeExpense, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTransactionType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypeForSign(t *testing.T) {
	if got, _ := TypeForSign("+"); got != TypeIncome {
		t.Errorf("Expected + to map to income, got %s", got)
	}
	if got, _ := TypeForSign("-"); got != TypeExpense {
		t.Errorf("Expected - to map to expense, got %s", got)
	}
	if _, err := TypeForSign("*"); err == nil {
		t.Error("Expected error for unknown sign")
	}
}

func TestNewParsedTransaction(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
	tx := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "  TOO \"KASPI MAGAZIN\"  ", 1.0)

	if tx.Details != "TOO \"KASPI MAGAZIN\"" {
		t.Errorf("Expected trimmed details, got %q", tx.Details)
	}
	if tx.NeedsReview {
		t.Error("Expected confidence 1.0 not to need review")
	}
	if len(tx.UniqueHash) != 64 {
		t.Errorf("Expected 64-char hash, got %d chars", len(tx.UniqueHash))
	}

	lowConf := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "details", 0.5)
	if !lowConf.NeedsReview {
		t.Error("Expected confidence 0.5 to need review")
	}

	atThreshold := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "details", ReviewThreshold)
	if atThreshold.NeedsReview {
		t.Error("Expected confidence at threshold not to need review")
	}
}

func TestParsedTransactionValidate(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	valid := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "details", 1.0)
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid transaction, got error: %v", err)
	}

	negative := NewParsedTransaction(date, decimal.NewFromFloat(-500.0), TypeExpense, "Покупка", "details", 1.0)
	if err := negative.Validate(); err == nil {
		t.Error("Expected validation error for negative amount")
	}

	zeroDate := NewParsedTransaction(time.Time{}, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "details", 1.0)
	if err := zeroDate.Validate(); err == nil {
		t.Error("Expected validation error for zero date")
	}

	badType := NewParsedTransaction(date, decimal.NewFromFloat(500.0), "TRANSFER", "Покупка", "details", 1.0)
	if err := badType.Validate(); err == nil {
		t.Error("Expected validation error for invalid type")
	}
}

func TestSignedAmount(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	expense := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeExpense, "Покупка", "x", 1.0)
	if !expense.SignedAmount().Equal(decimal.NewFromFloat(-500.0)) {
		t.Errorf("Expected -500 for expense, got %s", expense.SignedAmount())
	}

	income := NewParsedTransaction(date, decimal.NewFromFloat(500.0), TypeIncome, "Пополнение", "x", 1.0)
	if !income.SignedAmount().Equal(decimal.NewFromFloat(500.0)) {
		t.Errorf("Expected +500 for income, got %s", income.SignedAmount())
	}
}

func TestOverrideIsEmpty(t *testing.T) {
	var nilOverride *TransactionOverride
	if !nilOverride.IsEmpty() {
		t.Error("Expected nil override to be empty")
	}

	if !(&TransactionOverride{}).IsEmpty() {
		t.Error("Expected zero override to be empty")
	}

	amount := decimal.NewFromFloat(10)
	if (&TransactionOverride{Amount: &amount}).IsEmpty() {
		t.Error("Expected override with amount not to be empty")
	}
}

func TestImportResultReadyCount(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
	categoryID := int64(7)

	withCategory := NewParsedTransaction(date, decimal.NewFromFloat(1), TypeExpense, "Покупка", "a", 1.0)
	withCategory.CategoryID = &categoryID
	withoutCategory := NewParsedTransaction(date, decimal.NewFromFloat(2), TypeExpense, "Покупка", "b", 1.0)

	result := &ImportResult{
		Total:           2,
		NewTransactions: []*ParsedTransaction{withCategory, withoutCategory},
	}

	if got := result.ReadyCount(); got != 1 {
		t.Errorf("Expected ready count 1, got %d", got)
	}
}
