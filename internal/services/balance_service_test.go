package services

import (
	"context"
	"path/filepath"
	"testing"

	"khata/internal/core"
	"khata/internal/storage"
)

func newBalanceFixture(t *testing.T) (*BalanceService, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewBalanceService(store), store
}

func TestSnapshotAggregatesAllStreams(t *testing.T) {
	service, store := newBalanceFixture(t)
	ctx := context.Background()

	shop, err := store.CreateShop(ctx, core.Shop{Name: "Verma Traders"})
	if err != nil {
		t.Fatalf("CreateShop: %v", err)
	}

	// cash: 5000 payment + 2000 income - 3000 expense - 1000 deposit = 3000
	if _, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID, Amount: core.Money{Paise: 5000 * 100},
		Method: core.MethodCash, Date: core.NewDate(2025, 8, 1), IsAdvance: true,
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := store.CreateFamilyIncome(ctx, core.FamilyIncome{
		Source: "job", Amount: core.Money{Paise: 2000 * 100},
		Date: core.NewDate(2025, 8, 2), ReceivedBy: "Ramesh", Method: core.MethodCash,
	}); err != nil {
		t.Fatalf("CreateFamilyIncome: %v", err)
	}
	if _, err := store.CreateFamilyExpense(ctx, core.FamilyExpense{
		Category: "groceries", Amount: core.Money{Paise: 3000 * 100},
		Date: core.NewDate(2025, 8, 3), PaidBy: "Sunita", Method: core.MethodCash,
	}); err != nil {
		t.Fatalf("CreateFamilyExpense: %v", err)
	}
	if _, err := store.CreateBankDeposit(ctx, core.BankDeposit{
		Amount: core.Money{Paise: 1000 * 100}, FromAccount: core.MethodCash,
		BankName: "SBI", Date: core.NewDate(2025, 8, 4),
	}); err != nil {
		t.Fatalf("CreateBankDeposit: %v", err)
	}

	// personal stays out of the combined total
	if _, err := store.CreateFamilyIncome(ctx, core.FamilyIncome{
		Source: "freelance", Amount: core.Money{Paise: 900 * 100},
		Date: core.NewDate(2025, 8, 5), ReceivedBy: "Ramesh", Method: core.MethodPersonal,
	}); err != nil {
		t.Fatalf("CreateFamilyIncome: %v", err)
	}

	snap, err := service.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Cash.Paise != 3000*100 {
		t.Errorf("cash = %d, want 300000", snap.Cash.Paise)
	}
	if snap.Personal.Paise != 900*100 {
		t.Errorf("personal = %d, want 90000", snap.Personal.Paise)
	}
	if snap.Total.Paise != 3000*100 {
		t.Errorf("total = %d, personal must not leak into it", snap.Total.Paise)
	}
}

func TestAvailableExcluding(t *testing.T) {
	service, store := newBalanceFixture(t)
	ctx := context.Background()

	if _, err := store.CreateFamilyIncome(ctx, core.FamilyIncome{
		Source: "job", Amount: core.Money{Paise: 7000 * 100},
		Date: core.NewDate(2025, 8, 1), ReceivedBy: "Ramesh", Method: core.MethodOnline,
	}); err != nil {
		t.Fatalf("CreateFamilyIncome: %v", err)
	}
	expense, err := store.CreateFamilyExpense(ctx, core.FamilyExpense{
		Category: "travel", Amount: core.Money{Paise: 1000 * 100},
		Date: core.NewDate(2025, 8, 2), PaidBy: "Sunita", Method: core.MethodOnline,
	})
	if err != nil {
		t.Fatalf("CreateFamilyExpense: %v", err)
	}

	full, err := service.AvailableExcluding(ctx, core.MethodOnline, "")
	if err != nil {
		t.Fatalf("AvailableExcluding: %v", err)
	}
	if full.Paise != 6000*100 {
		t.Errorf("balance = %d, want 600000", full.Paise)
	}

	without, err := service.AvailableExcluding(ctx, core.MethodOnline, expense.ID)
	if err != nil {
		t.Fatalf("AvailableExcluding: %v", err)
	}
	if without.Paise != 7000*100 {
		t.Errorf("balance excluding expense = %d, want 700000", without.Paise)
	}

	if _, err := service.AvailableExcluding(ctx, "wallet", ""); err == nil {
		t.Error("unknown account should be rejected")
	}
}
