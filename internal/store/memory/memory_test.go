package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"infinance/internal/core"
	"infinance/internal/store"
)

func TestPutTransactionUpserts(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx := core.Transaction{
		ID: "t1", Date: core.NewDate(2025, 3, 1), Description: "salary",
		Value: core.MoneyFromInt(3000), Kind: core.KindIncome, CategoryID: "cat_1",
	}
	if err := s.PutTransaction(ctx, tx); err != nil {
		t.Fatalf("put: %v", err)
	}

	tx.Description = "salary (corrected)"
	if err := s.PutTransaction(ctx, tx); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].Description != "salary (corrected)" {
		t.Errorf("description = %q", got[0].Description)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.DeleteTransaction(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.DeleteInvestment(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestNewStartsWithDefaultCategories(t *testing.T) {
	cats, err := New().ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("got %d categories, want defaults", len(cats))
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.PutInvestment(ctx, core.Investment{ID: "inv_1", Name: "House", GoalValue: core.MoneyFromInt(1000)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ := s.ListInvestments(ctx)
	got[0].Name = "mutated"
	again, _ := s.ListInvestments(ctx)
	if again[0].Name != "House" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")

	s := NewFromFile(path)
	tx := core.Transaction{
		ID: "t1", Date: core.NewDate(2025, 3, 1), Description: "groceries",
		Value: core.MoneyFromFloat(42.50), Kind: core.KindExpense, CategoryID: "cat_3",
	}
	if err := s.PutTransaction(ctx, tx); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A fresh store over the same file sees the write.
	reopened := NewFromFile(path)
	got, err := reopened.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" || !got[0].Value.Equal(core.MoneyFromFloat(42.50)) {
		t.Fatalf("reopened transactions = %+v", got)
	}
}

func TestNewFromFileCorruptFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	snap, err := NewFromFile(path).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Transactions) != 0 || len(snap.Categories) == 0 {
		t.Fatalf("fallback snapshot = %+v", snap)
	}
}

func TestSaveAllReplacesState(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.PutTransaction(ctx, core.Transaction{
		ID: "old", Date: core.NewDate(2025, 1, 1), Description: "old",
		Value: core.MoneyFromInt(1), Kind: core.KindIncome, CategoryID: "cat_1",
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	next := core.DefaultSnapshot()
	next.Theme = core.ThemeDark
	if err := s.SaveAll(ctx, next); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, _ := s.LoadAll(ctx)
	if len(snap.Transactions) != 0 {
		t.Errorf("old transactions survived the import: %+v", snap.Transactions)
	}
	if snap.Theme != core.ThemeDark {
		t.Errorf("theme = %q", snap.Theme)
	}
}
