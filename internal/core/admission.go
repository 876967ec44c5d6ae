package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Draft is a proposed transaction before admission. It carries no id;
// Admit assigns one on create and keeps the existing one on edit.
type Draft struct {
	Date         Date
	Description  string
	Value        Money
	Kind         TransactionKind
	CategoryID   string
	InvestmentID string
	Withdrawal   bool
}

// GoalCompleted is emitted when an admitted contribution pushes a goal
// across its target for the first time. The presentation layer decides
// how to celebrate; this package only decides whether and when.
type GoalCompleted struct {
	InvestmentID string `json:"investmentId"`
	GoalName     string `json:"goalName"`
	GoalValue    Money  `json:"goalValue"`
}

// ErrInsufficientBalance is the sentinel for the one recoverable
// business error: a regular expense larger than the current balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// InsufficientBalanceError carries the figures so the caller can tell
// the user how far short they are. errors.Is matches it against
// ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Balance   Money
	Requested Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %s, requested %s", e.Balance, e.Requested)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Admit validates a draft against the current ledger and, on success,
// returns the transaction to persist plus at most one GoalCompleted
// signal.
//
// When editingID is non-empty the draft replaces that transaction: the
// balance and the goal's prior value are both evaluated with the old
// version removed, so the check reflects the ledger as it will be after
// the edit. Admit never mutates its inputs; persisting the result is the
// caller's job, and calling Admit twice with the same draft yields two
// independent admissions.
func Admit(draft Draft, existing []Transaction, investments []Investment, editingID string) (Transaction, *GoalCompleted, error) {
	tx := Transaction{
		ID:           editingID,
		Date:         draft.Date,
		Description:  draft.Description,
		Value:        draft.Value,
		Kind:         draft.Kind,
		CategoryID:   draft.CategoryID,
		InvestmentID: draft.InvestmentID,
		Withdrawal:   draft.Withdrawal,
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	// Malformed drafts are an input-contract violation by the caller,
	// not a business outcome.
	if err := tx.Validate(); err != nil {
		return Transaction{}, nil, err
	}

	base := existing
	if editingID != "" {
		base = withoutTransaction(existing, editingID)
	}
	sum := Summarize(base)

	// A regular expense may spend the whole balance but not more.
	// Withdrawals bypass this: they draw down a goal, not the balance.
	if draft.Kind == KindExpense && !draft.Withdrawal {
		if balance := sum.Balance(); draft.Value.GreaterThan(balance) {
			return Transaction{}, nil, &InsufficientBalanceError{Balance: balance, Requested: draft.Value}
		}
	}

	var completed *GoalCompleted
	if draft.Kind == KindInvestment && draft.InvestmentID != "" {
		if inv, ok := findInvestment(investments, draft.InvestmentID); ok && inv.GoalValue.IsPositive() {
			flow := sum.Flow(inv.ID)
			before := flow.Invested.Sub(flow.Rescued)
			after := before.Add(draft.Value)
			// Edge-triggered: fire only on the crossing, never when the
			// goal was already met before this transaction.
			if before.LessThan(inv.GoalValue) && !after.LessThan(inv.GoalValue) {
				completed = &GoalCompleted{
					InvestmentID: inv.ID,
					GoalName:     inv.Name,
					GoalValue:    inv.GoalValue,
				}
			}
		}
	}

	return tx, completed, nil
}

func withoutTransaction(transactions []Transaction, id string) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.ID == id {
			continue
		}
		out = append(out, t)
	}
	return out
}

func findInvestment(investments []Investment, id string) (Investment, bool) {
	for _, inv := range investments {
		if inv.ID == id {
			return inv, true
		}
	}
	return Investment{}, false
}
