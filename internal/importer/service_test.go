package importer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"statement-import-service/internal/aifallback"
	"statement-import-service/internal/bankconfig"
	"statement-import-service/internal/categories"
	"statement-import-service/internal/dedup"
	"statement-import-service/internal/grammar"
	"statement-import-service/internal/models"
	"statement-import-service/internal/store"

	"github.com/shopspring/decimal"
)

const kaspiStatement = `Выписка Kaspi Gold
13.02.26  - 500,00 ₸  Покупка  TOO "KASPI MAGAZIN"
14.02.26  + 120 000,00 ₸  Пополнение  Зарплата за январь
Доступно на 15.02.26: 250 000,00 ₸`

// fakeExtractor returns canned text instead of reading a real PDF
type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) Extract(data []byte) string {
	return f.text
}

// fakeGenerator is a canned AI response with call tracking
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestService(t *testing.T, extractedText, aiResponse string) (*Service, *store.MemoryStore, *fakeGenerator) {
	t.Helper()

	s := store.NewMemoryStore()
	ctx := context.Background()
	for _, seed := range []struct {
		name   string
		txType models.TransactionType
	}{
		{"Покупки", models.TypeExpense},
		{"Переводы", models.TypeExpense},
		{"Пополнения", models.TypeIncome},
	} {
		if _, err := s.CreateCategory(ctx, seed.name, seed.txType, true); err != nil {
			t.Fatalf("Failed to seed category: %v", err)
		}
	}

	registry, err := bankconfig.NewRegistry(bankconfig.DefaultRegistryConfig())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	gen := &fakeGenerator{response: aiResponse}
	service := NewService(
		NewOrchestrator(&fakeExtractor{text: extractedText}, registry, grammar.NewParser()),
		aifallback.NewFallbackParser(gen, nil, s),
		categories.NewResolver(s),
		dedup.NewEngine(s),
		NewCommitter(s),
	)
	return service, s, gen
}

func TestImportPDFGrammarPath(t *testing.T) {
	service, _, gen := newTestService(t, kaspiStatement, "")

	result, err := service.ImportPDF(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("Expected AI path untouched, got %d calls", gen.calls)
	}
	if result.BankID != "kaspi" {
		t.Errorf("Expected kaspi, got %s", result.BankID)
	}
	if len(result.NewTransactions) != 2 {
		t.Fatalf("Expected 2 new transactions, got %d", len(result.NewTransactions))
	}

	expense := result.NewTransactions[0]
	if expense.Type != models.TypeExpense || !expense.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Unexpected first transaction: %s", expense)
	}
	if expense.CategoryID == nil {
		t.Error("Expected category resolved for Покупка")
	}
	if expense.NeedsReview {
		t.Error("Grammar-path transactions never need review")
	}

	income := result.NewTransactions[1]
	if income.Type != models.TypeIncome || !income.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("Unexpected second transaction: %s", income)
	}
}

func TestImportPDFFallsBackWhenNoBankDetected(t *testing.T) {
	aiResponse := `{"transactions":[{"date":"2026-02-13","amount":500,"type":"expense","details":"ai row","category_id":1,"confidence":0.85}]}`
	service, _, gen := newTestService(t, "Statement from Unknown Bank\nsome unstructured rows", aiResponse)

	result, err := service.ImportPDF(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}

	if gen.calls != 1 {
		t.Errorf("Expected exactly 1 AI call, got %d", gen.calls)
	}
	if result.BankID != "" {
		t.Errorf("Expected no bank id on AI path, got %s", result.BankID)
	}
	if len(result.NewTransactions) != 1 {
		t.Errorf("Expected 1 AI transaction, got %d", len(result.NewTransactions))
	}
}

func TestImportPDFNoTextExtracted(t *testing.T) {
	service, _, gen := newTestService(t, "", "")

	if _, err := service.ImportPDF(context.Background(), []byte("garbage")); err == nil {
		t.Fatal("Expected error when no text can be extracted")
	}
	if gen.calls != 0 {
		t.Errorf("Expected no AI call without text, got %d", gen.calls)
	}
}

func TestImportPDFEmptyInput(t *testing.T) {
	service, _, _ := newTestService(t, "", "")
	if _, err := service.ImportPDF(context.Background(), nil); err == nil {
		t.Fatal("Expected error for empty input")
	}
}

func TestImportPDFAIGenerationFailure(t *testing.T) {
	service, _, gen := newTestService(t, "Unknown Bank text", "")
	gen.err = fmt.Errorf("quota exceeded")

	if _, err := service.ImportPDF(context.Background(), []byte("%PDF-1.4")); err == nil {
		t.Fatal("Expected generation failure to surface")
	}
}

func TestImportPhoto(t *testing.T) {
	aiResponse := `{"transactions":[{"date":"2026-03-01","amount":250,"type":"expense","details":"photo row","category_id":1,"confidence":0.6}]}`
	service, _, gen := newTestService(t, "", aiResponse)

	result, err := service.ImportPhoto(context.Background(), [][]byte{{0xFF, 0xD8}})
	if err != nil {
		t.Fatalf("ImportPhoto failed: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("Expected 1 AI call, got %d", gen.calls)
	}
	if len(result.NewTransactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.NewTransactions))
	}
	if !result.NewTransactions[0].NeedsReview {
		t.Error("Expected confidence 0.6 to need review")
	}
}

func TestImportPDFRerunIsAllDuplicates(t *testing.T) {
	service, s, _ := newTestService(t, kaspiStatement, "")
	ctx := context.Background()

	first, err := service.ImportPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}
	account, err := s.CreateAccount(ctx, "Kaspi Gold", decimal.NewFromInt(0))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if _, err := service.Commit(ctx, account.ID, first, nil); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	second, err := service.ImportPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Second ImportPDF failed: %v", err)
	}
	if len(second.NewTransactions) != 0 {
		t.Errorf("Expected re-import to yield no new transactions, got %d", len(second.NewTransactions))
	}
	if second.Duplicates != 2 {
		t.Errorf("Expected 2 duplicates, got %d", second.Duplicates)
	}
}

func TestCommitAppliesBalanceAndSkipsUncategorized(t *testing.T) {
	service, s, _ := newTestService(t, kaspiStatement, "")
	ctx := context.Background()

	result, err := service.ImportPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}
	if len(result.NewTransactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.NewTransactions))
	}

	// Drop the category from the expense to verify it is skipped silently
	result.NewTransactions[0].CategoryID = nil

	account, err := s.CreateAccount(ctx, "Kaspi Gold", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	summary, err := service.Commit(ctx, account.ID, result, nil)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if summary.Committed != 1 {
		t.Errorf("Expected 1 committed, got %d", summary.Committed)
	}
	if summary.SkippedNoCategory != 1 {
		t.Errorf("Expected 1 skipped, got %d", summary.SkippedNoCategory)
	}

	updated, err := s.Account(ctx, account.ID)
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	// 1000 + 120000 income, expense skipped
	if !updated.Balance.Equal(decimal.NewFromInt(121000)) {
		t.Errorf("Expected balance 121000, got %s", updated.Balance.String())
	}
}

func TestCommitOverridesChangeIdentity(t *testing.T) {
	service, s, _ := newTestService(t, kaspiStatement, "")
	ctx := context.Background()

	result, err := service.ImportPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}

	account, err := s.CreateAccount(ctx, "Kaspi Gold", decimal.NewFromInt(0))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	corrected := decimal.NewFromInt(450)
	overrides := map[int]*models.TransactionOverride{
		0: {Amount: &corrected},
	}

	summary, err := service.Commit(ctx, account.ID, result, overrides)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if summary.Committed != 2 {
		t.Fatalf("Expected 2 committed, got %d", summary.Committed)
	}

	var found bool
	for _, row := range s.Transactions() {
		if row.Amount.Equal(corrected) {
			found = true
			expected := models.UniqueHash(row.Date, corrected, models.TypeExpense, row.Details)
			if row.UniqueHash != expected {
				t.Error("Expected hash recomputed from overridden fields")
			}
		}
	}
	if !found {
		t.Fatal("Expected overridden amount persisted")
	}

	updated, err := s.Account(ctx, account.ID)
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(119550)) {
		t.Errorf("Expected balance 119550, got %s", updated.Balance.String())
	}
}

func TestCommitUnknownAccount(t *testing.T) {
	service, _, _ := newTestService(t, kaspiStatement, "")
	ctx := context.Background()

	result, err := service.ImportPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ImportPDF failed: %v", err)
	}
	if _, err := service.Commit(ctx, 9999, result, nil); err == nil {
		t.Fatal("Expected error for unknown account")
	}
}

func TestApplyOverrideDoesNotMutateOriginal(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
	tx := models.NewParsedTransaction(date, decimal.NewFromInt(500), models.TypeExpense, "Покупка", "original", 1.0)
	originalHash := tx.UniqueHash

	newDetails := "corrected"
	resolved := applyOverride(tx, &models.TransactionOverride{Details: &newDetails})

	if tx.Details != "original" || tx.UniqueHash != originalHash {
		t.Error("Expected original candidate untouched")
	}
	if resolved.Details != "corrected" {
		t.Errorf("Expected override applied, got %q", resolved.Details)
	}
	if resolved.UniqueHash == originalHash {
		t.Error("Expected hash recomputed for new details")
	}
}
