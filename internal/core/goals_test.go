package core

import "testing"

func TestProjectGoal(t *testing.T) {
	inv := Investment{ID: "inv_a", Name: "Trip", GoalValue: MoneyFromInt(1000)}
	date := NewDate(2025, 2, 1)

	cases := []struct {
		name        string
		txs         []Transaction
		wantCalc    Money
		wantPercent float64
	}{
		{
			name:        "no transactions",
			txs:         nil,
			wantCalc:    Money{},
			wantPercent: 0,
		},
		{
			name: "partial progress",
			txs: []Transaction{
				{ID: "t1", Date: date, Value: MoneyFromInt(250), Kind: KindInvestment, InvestmentID: "inv_a"},
			},
			wantCalc:    MoneyFromInt(250),
			wantPercent: 25,
		},
		{
			name: "invested minus rescued",
			txs: []Transaction{
				{ID: "t1", Date: date, Value: MoneyFromInt(500), Kind: KindInvestment, InvestmentID: "inv_a"},
				{ID: "t2", Date: date, Value: MoneyFromInt(500), Kind: KindInvestment, InvestmentID: "inv_a"},
				{ID: "t3", Date: date, Description: "rescue", Value: MoneyFromInt(300), Kind: KindExpense, InvestmentID: "inv_a", Withdrawal: true},
			},
			wantCalc:    MoneyFromInt(700),
			wantPercent: 70,
		},
		{
			name: "overshoot clamps to 100",
			txs: []Transaction{
				{ID: "t1", Date: date, Value: MoneyFromInt(1500), Kind: KindInvestment, InvestmentID: "inv_a"},
			},
			wantCalc:    MoneyFromInt(1500),
			wantPercent: 100,
		},
		{
			name: "net negative clamps to 0",
			txs: []Transaction{
				{ID: "t1", Date: date, Value: MoneyFromInt(100), Kind: KindInvestment, InvestmentID: "inv_a"},
				{ID: "t2", Date: date, Description: "rescue", Value: MoneyFromInt(400), Kind: KindExpense, InvestmentID: "inv_a", Withdrawal: true},
			},
			wantCalc:    MoneyFromInt(-300),
			wantPercent: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectGoal(inv, Summarize(tc.txs))
			if !got.Calculated.Equal(tc.wantCalc) {
				t.Fatalf("Calculated = %s, want %s", got.Calculated, tc.wantCalc)
			}
			if got.Percent != tc.wantPercent {
				t.Fatalf("Percent = %v, want %v", got.Percent, tc.wantPercent)
			}
			if got.Percent < 0 || got.Percent > 100 {
				t.Fatalf("Percent %v outside [0,100]", got.Percent)
			}
		})
	}
}

func TestProjectGoalNonPositiveGoalValue(t *testing.T) {
	// A zero or negative goal value is a configuration error; the
	// projector must not divide by it.
	date := NewDate(2025, 2, 1)
	broken := Investment{ID: "inv_x", Name: "Broken", GoalValue: Money{}}

	empty := ProjectGoal(broken, Summarize(nil))
	if empty.Percent != 0 {
		t.Fatalf("zero goal with no value: percent = %v, want 0", empty.Percent)
	}

	funded := ProjectGoal(broken, Summarize([]Transaction{
		{ID: "t1", Date: date, Value: MoneyFromInt(10), Kind: KindInvestment, InvestmentID: "inv_x"},
	}))
	if funded.Percent != 100 {
		t.Fatalf("zero goal with positive value: percent = %v, want 100", funded.Percent)
	}
}

func TestProjectGoalsPreservesOrder(t *testing.T) {
	invs := []Investment{
		{ID: "a", Name: "A", GoalValue: MoneyFromInt(100)},
		{ID: "b", Name: "B", GoalValue: MoneyFromInt(200)},
	}
	got := ProjectGoals(invs, Summarize(nil))
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected projection order: %+v", got)
	}
}

func TestFractionalPercent(t *testing.T) {
	inv := Investment{ID: "inv_a", Name: "Trip", GoalValue: MoneyFromInt(3)}
	s := Summarize([]Transaction{
		{ID: "t1", Date: NewDate(2025, 2, 1), Value: MoneyFromInt(1), Kind: KindInvestment, InvestmentID: "inv_a"},
	})
	got := ProjectGoal(inv, s)
	if got.Percent < 33.3 || got.Percent > 33.4 {
		t.Fatalf("Percent = %v, want ~33.33", got.Percent)
	}
}
