// Package storage is the sqlite persistence adapter. Monetary values are
// stored as decimal strings so nothing is lost to binary floats.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"infinance/internal/core"
	"infinance/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Backend = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.seedCategories(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// seedCategories inserts the default category set into an empty database.
func (r *SQLiteRepository) seedCategories(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range core.DefaultCategories() {
		if err := r.PutCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, value, kind, category_id, investment_id, is_withdrawal
		FROM transactions ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, value, kind, category_id, investment_id, is_withdrawal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			value = excluded.value,
			kind = excluded.kind,
			category_id = excluded.category_id,
			investment_id = excluded.investment_id,
			is_withdrawal = excluded.is_withdrawal`,
		tx.ID, tx.Date.String(), tx.Description, tx.Value.String(), string(tx.Kind),
		tx.CategoryID, tx.InvestmentID, boolToInt(tx.Withdrawal))
	if err != nil {
		return fmt.Errorf("put transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "transactions", id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, kind, color FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, color) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			color = excluded.color`,
		c.ID, c.Name, string(c.Kind), c.Color)
	if err != nil {
		return fmt.Errorf("put category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id)
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context) ([]core.Investment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, color, goal_value FROM investments ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	out := []core.Investment{}
	for rows.Next() {
		var inv core.Investment
		var goal string
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Description, &inv.Color, &goal); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		inv.GoalValue, err = core.ParseMoney(goal)
		if err != nil {
			return nil, fmt.Errorf("parse goal value %q: %w", goal, err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutInvestment(ctx context.Context, inv core.Investment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO investments (id, name, description, color, goal_value) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			color = excluded.color,
			goal_value = excluded.goal_value`,
		inv.ID, inv.Name, inv.Description, inv.Color, inv.GoalValue.String())
	if err != nil {
		return fmt.Errorf("put investment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "investments", id)
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) (core.Snapshot, error) {
	snap := core.DefaultSnapshot()

	txs, err := r.ListTransactions(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap.Transactions = txs

	cats, err := r.ListCategories(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	if len(cats) > 0 {
		snap.Categories = cats
	}

	invs, err := r.ListInvestments(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap.Investments = invs

	var theme string
	err = r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'theme'`).Scan(&theme)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, fmt.Errorf("read theme: %w", err)
	}
	if core.Theme(theme) == core.ThemeDark {
		snap.Theme = core.ThemeDark
	}

	return snap, nil
}

// SaveAll replaces the whole database content atomically.
func (r *SQLiteRepository) SaveAll(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "categories", "investments", "meta"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range snap.Transactions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, date, description, value, kind, category_id, investment_id, is_withdrawal)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date.String(), t.Description, t.Value.String(), string(t.Kind),
			t.CategoryID, t.InvestmentID, boolToInt(t.Withdrawal)); err != nil {
			return fmt.Errorf("import transaction %s: %w", t.ID, err)
		}
	}
	for _, c := range snap.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, kind, color) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, string(c.Kind), c.Color); err != nil {
			return fmt.Errorf("import category %s: %w", c.ID, err)
		}
	}
	for _, inv := range snap.Investments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO investments (id, name, description, color, goal_value) VALUES (?, ?, ?, ?, ?)`,
			inv.ID, inv.Name, inv.Description, inv.Color, inv.GoalValue.String()); err != nil {
			return fmt.Errorf("import investment %s: %w", inv.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('theme', ?)`, string(snap.Theme)); err != nil {
		return fmt.Errorf("import theme: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var tx core.Transaction
	var date, value, kind string
	var withdrawal int
	if err := rows.Scan(&tx.ID, &date, &tx.Description, &value, &kind, &tx.CategoryID, &tx.InvestmentID, &withdrawal); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	tx.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tx.Value, err = core.ParseMoney(value)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse value %q: %w", value, err)
	}
	tx.Kind = core.TransactionKind(kind)
	tx.Withdrawal = withdrawal != 0
	return tx, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
