package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/config"
	"khata/internal/log"
	"khata/internal/sheets"
	"khata/internal/sheets/google"
	"khata/internal/sheets/memory"
	"khata/internal/storage"
	"khata/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logConfig := log.DefaultConfig()
	logConfig.Format = cfg.LogFormat
	logConfig.Component = log.ComponentWorker
	log.SetDefault(log.New(logConfig))

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Without a spreadsheet the worker keeps draining the queue into an
	// in-memory sink, so messages are acknowledged instead of piling up.
	var (
		writer  sheets.PaymentWriter
		deleter sheets.PaymentDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			slog.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = client, client
		slog.Info("Google Sheets backup enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mem := memory.New()
		writer, deleter = mem, mem
		slog.Warn("No GOOGLE_SPREADSHEET_ID configured, using in-memory backup sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(store, writer, deleter, cfg.SyncBatchSize)

	// Catch up on anything published while the worker was down before
	// consuming live messages.
	if err := syncWorker.ResyncAll(ctx); err != nil {
		slog.Error("Startup resync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumePaymentSync(gctx, func(msg *amqp.PaymentSyncMessage) error {
			return syncWorker.HandleMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ResyncAll(gctx); err != nil {
					slog.Error("Periodic resync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped gracefully")
}
