// Package google persists the ledger to a Google Spreadsheet, one tab per
// entity kind. It is the cloud backend: slower than sqlite but shareable
// and inspectable from any browser.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"infinance/internal/core"
	"infinance/internal/store"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	investmentsSheet  string
	metaSheet         string
}

// Ensure interface conformance
var _ store.Backend = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional tab names: GOOGLE_TRANSACTIONS_SHEET (default "Transactions"),
// GOOGLE_CATEGORIES_SHEET (default "Categories"),
// GOOGLE_INVESTMENTS_SHEET (default "Investments"),
// GOOGLE_META_SHEET (default "Meta").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: envOr("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),
		categoriesSheet:   envOr("GOOGLE_CATEGORIES_SHEET", "Categories"),
		investmentsSheet:  envOr("GOOGLE_INVESTMENTS_SHEET", "Investments"),
		metaSheet:         envOr("GOOGLE_META_SHEET", "Meta"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, c.transactionsSheet, "A2:H")
	if err != nil {
		return nil, err
	}
	return rowsToTransactions(rows), nil
}

func (c *Client) PutTransaction(ctx context.Context, tx core.Transaction) error {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return err
	}
	txs = upsertTransaction(txs, tx)
	return c.writeTab(ctx, c.transactionsSheet, transactionHeader, transactionsToRows(txs))
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return err
	}
	kept := txs[:0]
	for _, tx := range txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	if len(kept) == len(txs) {
		return store.ErrNotFound
	}
	return c.writeTab(ctx, c.transactionsSheet, transactionHeader, transactionsToRows(kept))
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := c.readRows(ctx, c.categoriesSheet, "A2:D")
	if err != nil {
		return nil, err
	}
	return rowsToCategories(rows), nil
}

func (c *Client) PutCategory(ctx context.Context, cat core.Category) error {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range cats {
		if cats[i].ID == cat.ID {
			cats[i] = cat
			replaced = true
		}
	}
	if !replaced {
		cats = append(cats, cat)
	}
	return c.writeTab(ctx, c.categoriesSheet, categoryHeader, categoriesToRows(cats))
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return err
	}
	kept := cats[:0]
	for _, cat := range cats {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	if len(kept) == len(cats) {
		return store.ErrNotFound
	}
	return c.writeTab(ctx, c.categoriesSheet, categoryHeader, categoriesToRows(kept))
}

func (c *Client) ListInvestments(ctx context.Context) ([]core.Investment, error) {
	rows, err := c.readRows(ctx, c.investmentsSheet, "A2:E")
	if err != nil {
		return nil, err
	}
	return rowsToInvestments(rows), nil
}

func (c *Client) PutInvestment(ctx context.Context, inv core.Investment) error {
	invs, err := c.ListInvestments(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range invs {
		if invs[i].ID == inv.ID {
			invs[i] = inv
			replaced = true
		}
	}
	if !replaced {
		invs = append(invs, inv)
	}
	return c.writeTab(ctx, c.investmentsSheet, investmentHeader, investmentsToRows(invs))
}

func (c *Client) DeleteInvestment(ctx context.Context, id string) error {
	invs, err := c.ListInvestments(ctx)
	if err != nil {
		return err
	}
	kept := invs[:0]
	for _, inv := range invs {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(invs) {
		return store.ErrNotFound
	}
	return c.writeTab(ctx, c.investmentsSheet, investmentHeader, investmentsToRows(kept))
}

// LoadAll reads the three entity tabs and the theme in parallel.
func (c *Client) LoadAll(ctx context.Context) (core.Snapshot, error) {
	snap := core.DefaultSnapshot()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := c.ListTransactions(gctx)
		if err != nil {
			return err
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		cats, err := c.ListCategories(gctx)
		if err != nil {
			return err
		}
		if len(cats) > 0 {
			snap.Categories = cats
		}
		return nil
	})
	g.Go(func() error {
		invs, err := c.ListInvestments(gctx)
		if err != nil {
			return err
		}
		snap.Investments = invs
		return nil
	})
	g.Go(func() error {
		theme, err := c.readTheme(gctx)
		if err != nil {
			return err
		}
		snap.Theme = theme
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load spreadsheet: %w", err)
	}
	return snap, nil
}

// SaveAll rewrites every tab from the snapshot.
func (c *Client) SaveAll(ctx context.Context, snap core.Snapshot) error {
	if err := c.writeTab(ctx, c.transactionsSheet, transactionHeader, transactionsToRows(snap.Transactions)); err != nil {
		return err
	}
	if err := c.writeTab(ctx, c.categoriesSheet, categoryHeader, categoriesToRows(snap.Categories)); err != nil {
		return err
	}
	if err := c.writeTab(ctx, c.investmentsSheet, investmentHeader, investmentsToRows(snap.Investments)); err != nil {
		return err
	}
	return c.writeTheme(ctx, snap.Theme)
}

func (c *Client) readRows(ctx context.Context, sheetName, rng string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	full := fmt.Sprintf("%s!%s", sheetName, rng)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, full).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return resp.Values, nil
}

// writeTab clears the tab and rewrites it with a header row plus data.
func (c *Client) writeTab(ctx context.Context, sheetName string, header []any, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	clearRng := fmt.Sprintf("%s!A:Z", sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, header)
	values = append(values, rows...)

	writeRng := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", sheetName, err)
	}
	return nil
}

func (c *Client) readTheme(ctx context.Context) (core.Theme, error) {
	rows, err := c.readRows(ctx, c.metaSheet, "A1:B2")
	if err != nil {
		// A missing Meta tab is not fatal: fall back to the default theme.
		return core.ThemeLight, nil
	}
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) >= 2 && cols[0] == "theme" && core.Theme(cols[1]) == core.ThemeDark {
			return core.ThemeDark, nil
		}
	}
	return core.ThemeLight, nil
}

func (c *Client) writeTheme(ctx context.Context, theme core.Theme) error {
	return c.writeTab(ctx, c.metaSheet, []any{"key", "value"}, [][]any{{"theme", string(theme)}})
}

func upsertTransaction(txs []core.Transaction, tx core.Transaction) []core.Transaction {
	for i := range txs {
		if txs[i].ID == tx.ID {
			txs[i] = tx
			return txs
		}
	}
	return append(txs, tx)
}
