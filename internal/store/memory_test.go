package store

import (
	"context"
	"testing"
	"time"

	"statement-import-service/internal/models"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreCategories(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateCategory(ctx, "Покупки", models.TypeExpense, true)
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected category id to be assigned")
	}

	if _, err := s.CreateCategory(ctx, "Зарплата", models.TypeIncome, true); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	expenses, err := s.CategoriesByType(ctx, models.TypeExpense)
	if err != nil {
		t.Fatalf("CategoriesByType failed: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Name != "Покупки" {
		t.Errorf("Expected only expense categories, got %v", expenses)
	}
}

func TestMemoryStoreAccounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "Kaspi Gold", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := s.ApplyBalanceDelta(ctx, account.ID, decimal.NewFromInt(-300)); err != nil {
		t.Fatalf("ApplyBalanceDelta failed: %v", err)
	}

	updated, err := s.Account(ctx, account.ID)
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Expected balance 700, got %s", updated.Balance.String())
	}

	if _, err := s.Account(ctx, 9999); err == nil {
		t.Error("Expected error for unknown account")
	}
	if err := s.ApplyBalanceDelta(ctx, 9999, decimal.NewFromInt(1)); err == nil {
		t.Error("Expected error for delta on unknown account")
	}
}

func TestMemoryStoreInsertIgnoringHash(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	tx := Transaction{
		AccountID:  1,
		CategoryID: 1,
		Date:       date,
		Amount:     decimal.NewFromInt(500),
		Type:       models.TypeExpense,
		Details:    "shop",
		UniqueHash: "hash-1",
	}

	inserted, err := s.InsertIgnoringHash(ctx, []Transaction{tx})
	if err != nil {
		t.Fatalf("InsertIgnoringHash failed: %v", err)
	}
	if _, ok := inserted["hash-1"]; !ok {
		t.Error("Expected hash-1 to be inserted")
	}

	// Re-inserting the same hash is a no-op, not an error
	inserted, err = s.InsertIgnoringHash(ctx, []Transaction{tx})
	if err != nil {
		t.Fatalf("InsertIgnoringHash failed on duplicate: %v", err)
	}
	if len(inserted) != 0 {
		t.Errorf("Expected duplicate insert to be skipped, got %v", inserted)
	}
	if len(s.Transactions()) != 1 {
		t.Errorf("Expected 1 persisted transaction, got %d", len(s.Transactions()))
	}
}

func TestMemoryStoreExistingHashes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.InsertIgnoringHash(ctx, []Transaction{
		{UniqueHash: "aaa", Amount: decimal.NewFromInt(1), Type: models.TypeExpense},
		{UniqueHash: "bbb", Amount: decimal.NewFromInt(2), Type: models.TypeExpense},
	})
	if err != nil {
		t.Fatalf("InsertIgnoringHash failed: %v", err)
	}

	existing, err := s.ExistingHashes(ctx, []string{"aaa", "ccc"})
	if err != nil {
		t.Fatalf("ExistingHashes failed: %v", err)
	}
	if _, ok := existing["aaa"]; !ok {
		t.Error("Expected aaa to exist")
	}
	if _, ok := existing["ccc"]; ok {
		t.Error("Expected ccc not to exist")
	}
}
