package google

import (
	"fmt"
	"strings"

	"infinance/internal/core"
)

// Column layouts per tab. Row 1 carries these headers.
var (
	transactionHeader = []any{"id", "date", "description", "value", "type", "categoryId", "investmentId", "isWithdrawal"}
	categoryHeader    = []any{"id", "name", "type", "color"}
	investmentHeader  = []any{"id", "name", "description", "color", "goalValue"}
)

// rowsToTransactions parses spreadsheet rows best-effort: rows that do
// not validate are skipped so one garbled cell never blocks the load.
func rowsToTransactions(rows [][]any) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) < 5 || cols[0] == "" {
			continue
		}
		date, err := core.ParseDate(cols[1])
		if err != nil {
			continue
		}
		value, err := core.ParseMoney(cols[3])
		if err != nil {
			continue
		}
		tx := core.Transaction{
			ID:          cols[0],
			Date:        date,
			Description: cols[2],
			Value:       value,
			Kind:        core.TransactionKind(cols[4]),
		}
		if len(cols) > 5 {
			tx.CategoryID = cols[5]
		}
		if len(cols) > 6 {
			tx.InvestmentID = cols[6]
		}
		if len(cols) > 7 {
			tx.Withdrawal = parseBool(cols[7])
		}
		if tx.Validate() != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func transactionsToRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.ID,
			tx.Date.String(),
			tx.Description,
			tx.Value.String(),
			string(tx.Kind),
			tx.CategoryID,
			tx.InvestmentID,
			formatBool(tx.Withdrawal),
		})
	}
	return rows
}

func rowsToCategories(rows [][]any) []core.Category {
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) < 3 || cols[0] == "" {
			continue
		}
		c := core.Category{ID: cols[0], Name: cols[1], Kind: core.CategoryKind(cols[2])}
		if len(cols) > 3 {
			c.Color = cols[3]
		}
		if c.Validate() != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func categoriesToRows(cats []core.Category) [][]any {
	rows := make([][]any, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []any{c.ID, c.Name, string(c.Kind), c.Color})
	}
	return rows
}

func rowsToInvestments(rows [][]any) []core.Investment {
	out := make([]core.Investment, 0, len(rows))
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) < 5 || cols[0] == "" {
			continue
		}
		goal, err := core.ParseMoney(cols[4])
		if err != nil {
			continue
		}
		inv := core.Investment{
			ID:          cols[0],
			Name:        cols[1],
			Description: cols[2],
			Color:       cols[3],
			GoalValue:   goal,
		}
		if inv.Validate() != nil {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func investmentsToRows(invs []core.Investment) [][]any {
	rows := make([][]any, 0, len(invs))
	for _, inv := range invs {
		rows = append(rows, []any{inv.ID, inv.Name, inv.Description, inv.Color, inv.GoalValue.String()})
	}
	return rows
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
