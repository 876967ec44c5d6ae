package main

import (
	"context"
	"flag"
	"os"

	"infinance/internal/backend"
	"infinance/internal/cli"
	"infinance/internal/core"
	applog "infinance/internal/log"
)

func main() {
	var (
		export   = flag.Bool("export", false, "write the full ledger snapshot to the given file")
		restore  = flag.Bool("import", false, "replace the ledger with the snapshot from the given file")
		filePath = flag.String("file", "infinance-backup.json", "snapshot file path")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentBackup)

	if *export == *restore {
		logger.Error("Exactly one of -export or -import must be set")
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	result, err := backend.Build(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", applog.FieldError, err)
			}
		}
	}()

	if *export {
		snap, err := result.Backend.LoadAll(ctx)
		if err != nil {
			logger.Error("Failed to load snapshot", applog.FieldError, err)
			os.Exit(1)
		}
		data, err := snap.Encode()
		if err != nil {
			logger.Error("Failed to encode snapshot", applog.FieldError, err)
			os.Exit(1)
		}
		if err := os.WriteFile(*filePath, data, 0o600); err != nil {
			logger.Error("Failed to write snapshot file", applog.FieldError, err, "file", *filePath)
			os.Exit(1)
		}
		logger.Info("Snapshot exported", "file", *filePath, "transactions", len(snap.Transactions))
		return
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		logger.Error("Failed to read snapshot file", applog.FieldError, err, "file", *filePath)
		os.Exit(1)
	}
	snap := core.DecodeSnapshot(data)
	if err := result.Backend.SaveAll(ctx, snap); err != nil {
		logger.Error("Failed to save snapshot", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Snapshot imported", "file", *filePath, "transactions", len(snap.Transactions))
}
