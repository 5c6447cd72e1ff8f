package worker

import (
	"context"
	"path/filepath"
	"testing"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/sheets/memory"
	"khata/internal/storage"
)

func newFixture(t *testing.T) (*SyncWorker, *storage.SQLiteStore, *memory.Store) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	backup := memory.New()
	return NewSyncWorker(store, backup, backup, 10), store, backup
}

func createPayment(t *testing.T, store *storage.SQLiteStore) core.Payment {
	t.Helper()
	ctx := context.Background()
	shop, err := store.CreateShop(ctx, core.Shop{Name: "Mehta Textiles"})
	if err != nil {
		t.Fatalf("CreateShop: %v", err)
	}
	payment, err := store.CreatePayment(ctx, core.Payment{
		ShopID:    shop.ID,
		Amount:    core.Money{Paise: 1500 * 100},
		Method:    core.MethodOnline,
		Date:      core.NewDate(2025, 8, 10),
		IsAdvance: true,
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	return payment
}

func TestHandleMessageUpsert(t *testing.T) {
	worker, store, backup := newFixture(t)
	payment := createPayment(t, store)

	msg := amqp.NewPaymentSyncMessage(payment.ID)
	if err := worker.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	got, ok := backup.Get(payment.ID)
	if !ok {
		t.Fatal("payment not written to backup")
	}
	if got.Amount.Paise != 1500*100 {
		t.Errorf("backed up amount = %d, want 150000", got.Amount.Paise)
	}
}

func TestHandleMessageUpsertForGonePayment(t *testing.T) {
	worker, store, backup := newFixture(t)
	payment := createPayment(t, store)

	// Back it up, then delete from the database before the next message.
	if err := worker.HandleMessage(context.Background(), amqp.NewPaymentSyncMessage(payment.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if err := store.DeletePayment(context.Background(), payment.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}

	// A late upsert for the deleted payment must clean up the backup row.
	if err := worker.HandleMessage(context.Background(), amqp.NewPaymentSyncMessage(payment.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if _, ok := backup.Get(payment.ID); ok {
		t.Error("stale backup row should be removed when payment is gone")
	}
}

func TestHandleMessageDelete(t *testing.T) {
	worker, store, backup := newFixture(t)
	payment := createPayment(t, store)

	ctx := context.Background()
	if err := worker.HandleMessage(ctx, amqp.NewPaymentSyncMessage(payment.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if err := worker.HandleMessage(ctx, amqp.NewPaymentDeleteMessage(payment.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if backup.Len() != 0 {
		t.Errorf("backup has %d rows, want 0", backup.Len())
	}
}

func TestHandleMessageUnknownOp(t *testing.T) {
	worker, _, _ := newFixture(t)

	msg := &amqp.PaymentSyncMessage{PaymentID: "x", Op: "compact"}
	if err := worker.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("unknown ops should be dropped, got %v", err)
	}
}

func TestResyncAll(t *testing.T) {
	worker, store, backup := newFixture(t)
	p1 := createPayment(t, store)
	p2 := createPayment(t, store)

	if err := worker.ResyncAll(context.Background()); err != nil {
		t.Fatalf("ResyncAll: %v", err)
	}
	if backup.Len() != 2 {
		t.Fatalf("backup has %d rows, want 2", backup.Len())
	}
	for _, id := range []string{p1.ID, p2.ID} {
		if _, ok := backup.Get(id); !ok {
			t.Errorf("payment %s missing from backup", id)
		}
	}
}
