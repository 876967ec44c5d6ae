package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// GoalProgress is the derived state of one savings goal.
type GoalProgress struct {
	Investment
	Calculated Money   // invested minus rescued
	Percent    float64 // completion, clamped to [0, 100]
}

// ProjectGoal derives a goal's current value and completion percentage
// from aggregated flows. A goal with no transactions projects to zero.
func ProjectGoal(inv Investment, s Summary) GoalProgress {
	flow := s.Flow(inv.ID)
	calc := flow.Invested.Sub(flow.Rescued)
	return GoalProgress{
		Investment: inv,
		Calculated: calc,
		Percent:    completionPercent(calc, inv.GoalValue),
	}
}

// ProjectGoals derives progress for every investment, preserving input order.
func ProjectGoals(investments []Investment, s Summary) []GoalProgress {
	out := make([]GoalProgress, len(investments))
	for i, inv := range investments {
		out[i] = ProjectGoal(inv, s)
	}
	return out
}

// completionPercent never divides by a non-positive goal value: such a
// goal counts as fully complete once anything is accumulated, else 0%.
func completionPercent(calculated, goal Money) float64 {
	if !goal.IsPositive() {
		if calculated.IsPositive() {
			return 100
		}
		return 0
	}
	pct := calculated.Decimal().Div(goal.Decimal()).Mul(hundred).InexactFloat64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
