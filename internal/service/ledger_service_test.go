package service

import (
	"context"
	"errors"
	"testing"

	"infinance/internal/core"
	"infinance/internal/store"
	"infinance/internal/store/memory"
)

func newTestService() *LedgerService {
	return NewLedgerService(memory.New(), nil)
}

func seedIncome(t *testing.T, s *LedgerService, amount int64) {
	t.Helper()
	draft := core.NewIncome(core.NewDate(2025, 3, 1), "salary", core.MoneyFromInt(amount), "cat_1")
	if _, _, err := s.CreateTransaction(context.Background(), draft); err != nil {
		t.Fatalf("seed income: %v", err)
	}
}

func TestCreateTransactionAssignsID(t *testing.T) {
	s := newTestService()
	seedIncome(t, s, 1000)

	txs, err := s.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 || txs[0].ID == "" {
		t.Fatalf("transactions = %+v", txs)
	}
}

func TestCreateExpenseRejectedWhenOverBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 100)

	draft := core.NewExpense(core.NewDate(2025, 3, 2), "too much", core.MoneyFromInt(200), "cat_3")
	if _, _, err := s.CreateTransaction(ctx, draft); !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	// Nothing was persisted.
	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 {
		t.Fatalf("rejected draft leaked into the store: %+v", txs)
	}
}

func TestUpdateTransactionMissingID(t *testing.T) {
	s := newTestService()
	draft := core.NewIncome(core.NewDate(2025, 3, 1), "salary", core.MoneyFromInt(10), "cat_1")
	if _, _, err := s.UpdateTransaction(context.Background(), "missing", draft); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateTransactionKeepsID(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 1000)
	txs, _ := s.ListTransactions(ctx)
	id := txs[0].ID

	edited := core.NewIncome(core.NewDate(2025, 3, 1), "salary (fixed)", core.MoneyFromInt(1200), "cat_1")
	tx, _, err := s.UpdateTransaction(ctx, id, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if tx.ID != id {
		t.Fatalf("id changed: %s -> %s", id, tx.ID)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Balance().Equal(core.MoneyFromInt(1200)) {
		t.Errorf("balance = %s, want 1200", sum.Balance())
	}
}

func TestGoalCompletionSignal(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 5000)

	inv, err := s.SaveInvestment(ctx, core.Investment{Name: "House", GoalValue: core.MoneyFromInt(1000)})
	if err != nil {
		t.Fatalf("save investment: %v", err)
	}
	if inv.ID == "" {
		t.Fatal("investment must get an id")
	}

	deposit := core.NewInvestmentDeposit(core.NewDate(2025, 3, 2), "", core.MoneyFromInt(900), inv.ID)
	if _, completed, err := s.CreateTransaction(ctx, deposit); err != nil || completed != nil {
		t.Fatalf("first deposit: completed=%+v err=%v", completed, err)
	}

	crossing := core.NewInvestmentDeposit(core.NewDate(2025, 3, 3), "", core.MoneyFromInt(150), inv.ID)
	_, completed, err := s.CreateTransaction(ctx, crossing)
	if err != nil {
		t.Fatalf("crossing deposit: %v", err)
	}
	if completed == nil || completed.InvestmentID != inv.ID {
		t.Fatalf("expected completion signal, got %+v", completed)
	}
}

func TestDeleteInvestmentKeepsDeposits(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 5000)

	inv, err := s.SaveInvestment(ctx, core.Investment{Name: "House", GoalValue: core.MoneyFromInt(1000)})
	if err != nil {
		t.Fatalf("save investment: %v", err)
	}
	deposit := core.NewInvestmentDeposit(core.NewDate(2025, 3, 2), "", core.MoneyFromInt(500), inv.ID)
	if _, _, err := s.CreateTransaction(ctx, deposit); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := s.DeleteInvestment(ctx, inv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sum, _ := s.Summary(ctx)
	if !sum.TotalInvested.Equal(core.MoneyFromInt(500)) {
		t.Errorf("invested total = %s, want 500 after goal deletion", sum.TotalInvested)
	}
	goals, err := s.Goals(ctx)
	if err != nil {
		t.Fatalf("goals: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("deleted goal still projected: %+v", goals)
	}
}

func TestDeleteTransactionSkipsAdmission(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 100)

	spend := core.NewExpense(core.NewDate(2025, 3, 2), "spend", core.MoneyFromInt(100), "cat_3")
	if _, _, err := s.CreateTransaction(ctx, spend); err != nil {
		t.Fatalf("spend: %v", err)
	}

	// Deleting the income leaves the ledger negative; that is allowed.
	txs, _ := s.ListTransactions(ctx)
	var incomeID string
	for _, tx := range txs {
		if tx.Kind == core.KindIncome {
			incomeID = tx.ID
		}
	}
	if err := s.DeleteTransaction(ctx, incomeID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sum, _ := s.Summary(ctx)
	if !sum.Balance().IsNegative() {
		t.Errorf("balance = %s, want negative", sum.Balance())
	}
}

func TestImportSnapshotReplacesLedger(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	seedIncome(t, s, 100)

	imported, err := s.ImportSnapshot(ctx, []byte(`{
		"transactions": [
			{"id": "t9", "date": "2025-01-01", "description": "carried over", "value": 50, "type": "income", "categoryId": "cat_1"}
		],
		"theme": "dark"
	}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported.Transactions) != 1 {
		t.Fatalf("imported = %+v", imported.Transactions)
	}

	snap, err := s.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != "t9" {
		t.Fatalf("exported transactions = %+v", snap.Transactions)
	}
	if snap.Theme != core.ThemeDark {
		t.Errorf("theme = %q", snap.Theme)
	}
}

func TestSaveCategoryValidates(t *testing.T) {
	s := newTestService()
	if _, err := s.SaveCategory(context.Background(), core.Category{Name: "", Kind: core.CategoryExpense}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("got %v, want ErrEmptyName", err)
	}
}
