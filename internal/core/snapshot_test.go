package core

import (
	"encoding/json"
	"testing"
)

func TestDecodeSnapshotDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty object", `{}`},
		{"not json", `garbage`},
		{"wrong types", `{"transactions": 7, "categories": "x", "investments": {}, "theme": 3}`},
		{"null fields", `{"transactions": null, "categories": null, "investments": null, "theme": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := DecodeSnapshot([]byte(tt.input))
			if len(snap.Transactions) != 0 {
				t.Errorf("transactions = %d, want empty", len(snap.Transactions))
			}
			if len(snap.Categories) != len(DefaultCategories()) {
				t.Errorf("categories = %d, want defaults", len(snap.Categories))
			}
			if len(snap.Investments) != 0 {
				t.Errorf("investments = %d, want empty", len(snap.Investments))
			}
			if snap.Theme != ThemeLight {
				t.Errorf("theme = %q, want light", snap.Theme)
			}
		})
	}
}

func TestDecodeSnapshotPartial(t *testing.T) {
	input := `{
		"transactions": [
			{"id": "t1", "date": "2025-03-01", "description": "salary", "value": 3000, "type": "income", "categoryId": "cat_1"}
		],
		"categories": "broken",
		"theme": "dark"
	}`
	snap := DecodeSnapshot([]byte(input))

	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != "t1" {
		t.Fatalf("transactions = %+v", snap.Transactions)
	}
	if !snap.Transactions[0].Value.Equal(MoneyFromInt(3000)) {
		t.Errorf("value = %s", snap.Transactions[0].Value)
	}
	// Broken categories fall back to the defaults, not to nothing.
	if len(snap.Categories) != len(DefaultCategories()) {
		t.Errorf("categories = %d, want defaults", len(snap.Categories))
	}
	if snap.Theme != ThemeDark {
		t.Errorf("theme = %q, want dark", snap.Theme)
	}
}

func TestDecodeSnapshotEmptyCategoriesGetDefaults(t *testing.T) {
	snap := DecodeSnapshot([]byte(`{"categories": []}`))
	if len(snap.Categories) != len(DefaultCategories()) {
		t.Fatalf("categories = %d, want defaults", len(snap.Categories))
	}
}

func TestDecodeSnapshotIgnoresStaleFields(t *testing.T) {
	input := `{
		"investments": [
			{"id": "inv_1", "name": "House", "goalValue": 1000, "currentValue": 250}
		]
	}`
	snap := DecodeSnapshot([]byte(input))
	if len(snap.Investments) != 1 {
		t.Fatalf("investments = %+v", snap.Investments)
	}
	inv := snap.Investments[0]
	if !inv.GoalValue.Equal(MoneyFromInt(1000)) {
		t.Errorf("goalValue = %s", inv.GoalValue)
	}
	// currentValue is derived data and must not survive the decode in any form.
	out, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["currentValue"]; ok {
		t.Error("currentValue leaked through the round trip")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	orig := Snapshot{
		Transactions: fixtureTransactions(),
		Categories:   DefaultCategories(),
		Investments: []Investment{
			{ID: "inv_a", Name: "House", Color: "#3B82F6", GoalValue: MoneyFromInt(1000)},
		},
		Theme: ThemeDark,
	}

	data, err := orig.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := DecodeSnapshot(data)

	if len(got.Transactions) != len(orig.Transactions) {
		t.Fatalf("transactions = %d, want %d", len(got.Transactions), len(orig.Transactions))
	}
	// The aggregate over the decoded ledger must match the original's.
	a, b := Summarize(orig.Transactions), Summarize(got.Transactions)
	if !a.Balance().Equal(b.Balance()) {
		t.Errorf("balance drifted across the round trip: %s vs %s", a.Balance(), b.Balance())
	}
	if got.Theme != ThemeDark {
		t.Errorf("theme = %q, want dark", got.Theme)
	}
	if len(got.Investments) != 1 || !got.Investments[0].GoalValue.Equal(MoneyFromInt(1000)) {
		t.Errorf("investments = %+v", got.Investments)
	}
}
