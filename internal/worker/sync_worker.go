package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/sheets"
	"khata/internal/storage"
)

// SyncWorker mirrors payments from SQLite into the Google Sheets backup.
type SyncWorker struct {
	store     *storage.SQLiteStore
	writer    sheets.PaymentWriter
	deleter   sheets.PaymentDeleter
	batchSize int
}

func NewSyncWorker(store *storage.SQLiteStore, writer sheets.PaymentWriter, deleter sheets.PaymentDeleter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		store:     store,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one backup message from AMQP. The message carries
// only the payment ID; the current payment state is always read back from
// the database so a stale message can never overwrite newer data.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	switch msg.Op {
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg.PaymentID)
	case amqp.OpUpsert:
		return w.handleUpsert(ctx, msg.PaymentID)
	default:
		slog.WarnContext(ctx, "Unknown backup operation, dropping message",
			"op", msg.Op, "payment_id", msg.PaymentID)
		return nil
	}
}

func (w *SyncWorker) handleUpsert(ctx context.Context, paymentID string) error {
	payment, err := w.store.GetPayment(ctx, paymentID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and consume; remove the backup row instead.
		slog.InfoContext(ctx, "Payment gone from database, removing backup row",
			"payment_id", paymentID)
		return w.handleDelete(ctx, paymentID)
	}
	if err != nil {
		return fmt.Errorf("get payment from storage: %w", err)
	}

	ref, err := w.writer.UpsertPayment(ctx, payment)
	if err != nil {
		return fmt.Errorf("upsert payment to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Payment synced to backup sheet",
		"payment_id", paymentID,
		"sheets_ref", ref,
		"amount_paise", payment.Amount.Paise)
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, paymentID string) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No backup deleter configured, skipping",
			"payment_id", paymentID)
		return nil
	}
	if err := w.deleter.DeletePayment(ctx, paymentID); err != nil {
		return fmt.Errorf("delete payment from sheets: %w", err)
	}
	return nil
}

// ResyncAll pushes every stored payment to the backup sheet. Run at worker
// startup to recover from missed AMQP messages or downtime.
func (w *SyncWorker) ResyncAll(ctx context.Context) error {
	payments, err := w.store.ListPayments(ctx)
	if err != nil {
		return fmt.Errorf("list payments for resync: %w", err)
	}
	if len(payments) == 0 {
		slog.InfoContext(ctx, "No payments to resync")
		return nil
	}

	slog.InfoContext(ctx, "Resyncing payments to backup sheet", "count", len(payments))

	successCount := 0
	errorCount := 0
	for i, payment := range payments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.writer.UpsertPayment(ctx, payment); err != nil {
			slog.ErrorContext(ctx, "Failed to resync payment",
				"payment_id", payment.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
		if (i+1)%w.batchSize == 0 {
			slog.InfoContext(ctx, "Resync progress",
				"done", i+1, "total", len(payments))
		}
	}

	slog.InfoContext(ctx, "Resync completed",
		"total", len(payments),
		"synced", successCount,
		"errors", errorCount)
	return nil
}
