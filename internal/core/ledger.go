package core

// GoalFlow is the money that has moved in and out of one savings goal.
type GoalFlow struct {
	Invested Money
	Rescued  Money
}

// Summary is the full aggregation of a transaction list.
//
// TotalExpenses only counts regular expenses; withdrawals reduce their
// goal's flow instead of the general balance. PerGoal is keyed by
// investment id and silently skips entries with a blank id.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	TotalInvested Money
	PerGoal       map[string]GoalFlow
}

// Summarize folds the transaction list into its aggregates. It is a pure
// function of its input: order of the list does not matter, and an empty
// list produces zero-valued totals. Transactions referencing deleted
// categories or investments aggregate normally; they are never an error.
func Summarize(transactions []Transaction) Summary {
	s := Summary{PerGoal: make(map[string]GoalFlow)}
	for _, t := range transactions {
		switch {
		case t.Kind == KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Value)
		case t.Kind == KindExpense && !t.Withdrawal:
			s.TotalExpenses = s.TotalExpenses.Add(t.Value)
		case t.Kind == KindExpense && t.Withdrawal:
			if t.InvestmentID == "" {
				continue
			}
			flow := s.PerGoal[t.InvestmentID]
			flow.Rescued = flow.Rescued.Add(t.Value)
			s.PerGoal[t.InvestmentID] = flow
		case t.Kind == KindInvestment:
			s.TotalInvested = s.TotalInvested.Add(t.Value)
			if t.InvestmentID == "" {
				continue
			}
			flow := s.PerGoal[t.InvestmentID]
			flow.Invested = flow.Invested.Add(t.Value)
			s.PerGoal[t.InvestmentID] = flow
		}
	}
	return s
}

// Balance is the spendable amount: income minus regular expenses minus
// everything parked in goals. Derived on demand, never stored.
func (s Summary) Balance() Money {
	return s.TotalIncome.Sub(s.TotalExpenses).Sub(s.TotalInvested)
}

// Flow returns the aggregated flow for one goal, zero-valued when the
// goal has no transactions.
func (s Summary) Flow(investmentID string) GoalFlow {
	return s.PerGoal[investmentID]
}
