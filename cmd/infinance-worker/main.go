package main

import (
	"context"
	"os"
	"time"

	"infinance/internal/amqp"
	"infinance/internal/backend"
	"infinance/internal/cli"
	"infinance/internal/config"
	applog "infinance/internal/log"
	"infinance/internal/store"
	"infinance/internal/store/google"
	"infinance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	result, err := backend.Build(context.Background(), cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect AMQP", applog.FieldError, err)
		os.Exit(1)
	}

	mirror, err := buildMirror(context.Background(), cfg, result.Backend)
	if err != nil {
		logger.Error("Failed to initialize sheets mirror target", applog.FieldError, err)
		os.Exit(1)
	}
	if mirror != nil {
		if err := mirror.Start(context.Background()); err != nil {
			logger.Error("Failed to start mirror", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Mirror started", "resync", cfg.MirrorResync.String())
	} else {
		logger.Info("Mirror disabled, consuming events only")
	}

	handler := worker.NewEventHandler(mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopMirror(logger, mirror)
		if err := client.Close(); err != nil {
			logger.Warn("AMQP close error", applog.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Worker started", "queue", cfg.AMQPQueue)
	if err := client.Consume(ctx, func(env amqp.Envelope) error {
		return handler.Handle(ctx, env)
	}); err != nil && ctx.Err() == nil {
		logger.Error("Consumer error", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// buildMirror wires a sheets mirror when a spreadsheet is configured and
// is not already the primary backend. Returns nil when mirroring is off.
func buildMirror(ctx context.Context, cfg *config.Config, primary store.Backend) (*worker.Mirror, error) {
	if cfg.GoogleSpreadsheetID == "" || cfg.DataBackend == "sheets" {
		return nil, nil
	}
	sheets, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return worker.NewMirror(primary, sheets, worker.MirrorConfig{
		ResyncInterval: cfg.MirrorResync,
		Debounce:       cfg.MirrorDebounce,
	}), nil
}

// stopMirror stops the mirror with a deadline so shutdown cannot hang on
// a slow sheet write.
func stopMirror(logger *applog.Logger, mirror *worker.Mirror) {
	if mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mirror.Stop(ctx); err != nil {
		logger.Warn("Mirror stop error", applog.FieldError, err)
	}
}
