// Package backend selects and builds the persistence backend from
// configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"infinance/internal/config"
	"infinance/internal/store"
	"infinance/internal/store/google"
	"infinance/internal/store/memory"
	"infinance/internal/storage"
)

// Type identifies a persistence backend.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Sheets:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the built backend and its optional cleanup.
type Result struct {
	Backend store.Backend
	Cleanup CleanupFunc
}

// Build constructs the backend named by the config.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case Sheets:
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{Backend: cli, Cleanup: nil}, nil

	default:
		s := memory.NewFromFile(cfg.SnapshotPath)
		logger.Info("Initialized memory backend", "snapshot_path", cfg.SnapshotPath)
		return &Result{Backend: s, Cleanup: nil}, nil
	}
}
