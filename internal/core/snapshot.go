package core

import "encoding/json"

// Theme is the UI preference carried inside snapshots. The core only
// round-trips it.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Snapshot is the complete exportable state of one ledger: the backup
// envelope written to local files and mirrored to the cloud store.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Investments  []Investment  `json:"investments"`
	Theme        Theme         `json:"theme"`
}

// DefaultSnapshot is the state of a brand-new ledger.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Transactions: []Transaction{},
		Categories:   DefaultCategories(),
		Investments:  []Investment{},
		Theme:        ThemeLight,
	}
}

// DecodeSnapshot parses a snapshot leniently: every missing or
// type-mismatched field falls back to its default instead of failing the
// whole load. Unknown fields, including the currentValue some old
// exports stored on investments, are dropped.
func DecodeSnapshot(data []byte) Snapshot {
	snap := DefaultSnapshot()

	var raw struct {
		Transactions json.RawMessage `json:"transactions"`
		Categories   json.RawMessage `json:"categories"`
		Investments  json.RawMessage `json:"investments"`
		Theme        json.RawMessage `json:"theme"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return snap
	}

	var transactions []Transaction
	if len(raw.Transactions) > 0 && json.Unmarshal(raw.Transactions, &transactions) == nil && transactions != nil {
		snap.Transactions = transactions
	}
	var categories []Category
	if len(raw.Categories) > 0 && json.Unmarshal(raw.Categories, &categories) == nil && len(categories) > 0 {
		snap.Categories = categories
	}
	var investments []Investment
	if len(raw.Investments) > 0 && json.Unmarshal(raw.Investments, &investments) == nil && investments != nil {
		snap.Investments = investments
	}
	var theme Theme
	if len(raw.Theme) > 0 && json.Unmarshal(raw.Theme, &theme) == nil {
		if theme == ThemeDark {
			snap.Theme = ThemeDark
		}
	}
	return snap
}

// Encode serializes the snapshot for export.
func (s Snapshot) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
