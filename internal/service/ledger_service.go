// Package service orchestrates ledger operations: admission through the
// core engine, persistence through a store backend, and best-effort event
// publishing over AMQP.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"infinance/internal/amqp"
	"infinance/internal/core"
	"infinance/internal/log"
	"infinance/internal/store"
)

type LedgerService struct {
	store  store.Backend
	events *amqp.Client
}

// NewLedgerService wires a backend and an optional AMQP client. A nil
// events client disables publishing without disabling the service.
func NewLedgerService(backend store.Backend, events *amqp.Client) *LedgerService {
	return &LedgerService{store: backend, events: events}
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// CreateTransaction admits the draft against the current ledger state and
// persists it. The returned signal is non-nil when the deposit completed
// a goal.
func (s *LedgerService) CreateTransaction(ctx context.Context, draft core.Draft) (core.Transaction, *core.GoalCompleted, error) {
	return s.admit(ctx, draft, "")
}

// UpdateTransaction re-admits an edited transaction. The stored version
// is excluded from the balance and goal baselines while checking.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, draft core.Draft) (core.Transaction, *core.GoalCompleted, error) {
	existing, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("load transactions: %w", err)
	}
	found := false
	for _, tx := range existing {
		if tx.ID == id {
			found = true
			break
		}
	}
	if !found {
		return core.Transaction{}, nil, store.ErrNotFound
	}
	return s.admitWith(ctx, draft, id, existing)
}

func (s *LedgerService) admit(ctx context.Context, draft core.Draft, editingID string) (core.Transaction, *core.GoalCompleted, error) {
	existing, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("load transactions: %w", err)
	}
	return s.admitWith(ctx, draft, editingID, existing)
}

func (s *LedgerService) admitWith(ctx context.Context, draft core.Draft, editingID string, existing []core.Transaction) (core.Transaction, *core.GoalCompleted, error) {
	investments, err := s.store.ListInvestments(ctx)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("load investments: %w", err)
	}

	tx, completed, err := core.Admit(draft, existing, investments, editingID)
	if err != nil {
		return core.Transaction{}, nil, err
	}

	if err := s.store.PutTransaction(ctx, tx); err != nil {
		return core.Transaction{}, nil, fmt.Errorf("save transaction: %w", err)
	}

	action := "created"
	if editingID != "" {
		action = "updated"
	}
	s.publishChange(ctx, "transaction", action, tx.ID)
	if completed != nil {
		s.publishGoalCompleted(ctx, *completed)
	}
	return tx, completed, nil
}

// DeleteTransaction removes an entry without admission checks: deleting
// history is always allowed, even when it drives the balance negative.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, "transaction", "deleted", id)
	return nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	action := "updated"
	if c.ID == "" {
		c.ID = uuid.NewString()
		action = "created"
	}
	if err := s.store.PutCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.publishChange(ctx, "category", action, c.ID)
	return c, nil
}

// DeleteCategory does not cascade: transactions keep the dangling
// reference and report as uncategorized.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, "category", "deleted", id)
	return nil
}

func (s *LedgerService) ListInvestments(ctx context.Context) ([]core.Investment, error) {
	return s.store.ListInvestments(ctx)
}

func (s *LedgerService) SaveInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if err := inv.Validate(); err != nil {
		return core.Investment{}, err
	}
	action := "updated"
	if inv.ID == "" {
		inv.ID = uuid.NewString()
		action = "created"
	}
	if err := s.store.PutInvestment(ctx, inv); err != nil {
		return core.Investment{}, fmt.Errorf("save investment: %w", err)
	}
	s.publishChange(ctx, "investment", action, inv.ID)
	return inv, nil
}

// DeleteInvestment does not cascade either: deposits toward the deleted
// goal stay in the log and keep counting toward the invested total.
func (s *LedgerService) DeleteInvestment(ctx context.Context, id string) error {
	if err := s.store.DeleteInvestment(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, "investment", "deleted", id)
	return nil
}

// Summary folds the transaction log. Nothing is cached at this layer.
func (s *LedgerService) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.Summarize(txs), nil
}

// Goals projects progress for every investment from the transaction log.
func (s *LedgerService) Goals(ctx context.Context) ([]core.GoalProgress, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	invs, err := s.store.ListInvestments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load investments: %w", err)
	}
	return core.ProjectGoals(invs, core.Summarize(txs)), nil
}

func (s *LedgerService) ExportSnapshot(ctx context.Context) (core.Snapshot, error) {
	return s.store.LoadAll(ctx)
}

// ImportSnapshot replaces the whole ledger with a decoded snapshot. The
// decode is lenient; a garbled section falls back to its default rather
// than aborting the import.
func (s *LedgerService) ImportSnapshot(ctx context.Context, data []byte) (core.Snapshot, error) {
	snap := core.DecodeSnapshot(data)
	if err := s.store.SaveAll(ctx, snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("import snapshot: %w", err)
	}
	s.publishChange(ctx, "snapshot", "imported", "")
	return snap, nil
}

// SetTheme persists the UI theme preference alongside the ledger.
func (s *LedgerService) SetTheme(ctx context.Context, theme core.Theme) error {
	snap, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	snap.Theme = theme
	if err := s.store.SaveAll(ctx, snap); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (s *LedgerService) publishChange(ctx context.Context, entity, action, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerChanged(ctx, amqp.NewLedgerChanged(entity, action, id)); err != nil {
		// Local write already succeeded; the event is best-effort.
		slog.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldComponent, log.ComponentLedger,
			log.FieldEntity, entity, log.FieldAction, action,
			"id", id, log.FieldError, err)
	}
}

func (s *LedgerService) publishGoalCompleted(ctx context.Context, signal core.GoalCompleted) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGoalCompleted(ctx, amqp.NewGoalCompleted(signal)); err != nil {
		slog.WarnContext(ctx, "Failed to publish goal completion",
			log.FieldComponent, log.ComponentLedger,
			"investment_id", signal.InvestmentID, log.FieldError, err)
	}
}

// Close releases the AMQP connection, if any.
func (s *LedgerService) Close() error {
	if s.events != nil {
		return s.events.Close()
	}
	return nil
}
