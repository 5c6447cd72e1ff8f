package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"khata/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testShop(t *testing.T, store *SQLiteStore) core.Shop {
	t.Helper()
	shop, err := store.CreateShop(context.Background(), core.Shop{
		Name:              "Sharma General Store",
		Owner:             "Ramesh Sharma",
		MonthlyRent:       core.Money{Paise: 10000 * 100},
		RentStartDate:     core.NewDate(2024, 1, 1),
		YearlyIncreaseBps: 1000,
	})
	if err != nil {
		t.Fatalf("CreateShop: %v", err)
	}
	return shop
}

func testBill(t *testing.T, store *SQLiteStore, shopID string, totalPaise int64) core.Bill {
	t.Helper()
	bill, err := store.CreateBill(context.Background(), core.Bill{
		ShopID:     shopID,
		BillNumber: "B-" + shopID[:8],
		BillDate:   core.NewDate(2025, 8, 1),
		DueDate:    core.NewDate(2025, 8, 15),
		Items: []core.BillItem{
			{Description: "Rent", Amount: core.Money{Paise: totalPaise}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	return bill
}

func TestShopCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	shop := testShop(t, store)
	if shop.ID == "" {
		t.Fatal("expected generated shop ID")
	}
	if shop.LastRentUpdate.String() != "2024-01-01" {
		t.Errorf("LastRentUpdate should default to rent start, got %q", shop.LastRentUpdate)
	}

	got, err := store.GetShop(ctx, shop.ID)
	if err != nil {
		t.Fatalf("GetShop: %v", err)
	}
	if got.Name != shop.Name || got.MonthlyRent != shop.MonthlyRent || got.YearlyIncreaseBps != 1000 {
		t.Errorf("GetShop mismatch: %+v", got)
	}

	got.MonthlyRent = core.Money{Paise: 11000 * 100}
	if _, err := store.UpdateShop(ctx, got); err != nil {
		t.Fatalf("UpdateShop: %v", err)
	}
	got, _ = store.GetShop(ctx, shop.ID)
	if got.MonthlyRent.Paise != 11000*100 {
		t.Errorf("rent not updated: %d", got.MonthlyRent.Paise)
	}

	if _, err := store.GetShop(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBillStartsPending(t *testing.T) {
	store := newTestStore(t)
	shop := testShop(t, store)

	bill := testBill(t, store, shop.ID, 5000*100)
	if bill.Status != core.BillPending {
		t.Errorf("status = %s, want pending", bill.Status)
	}
	if bill.Total.Paise != 5000*100 || bill.Remaining != bill.Total || bill.Paid.Paise != 0 {
		t.Errorf("ledger fields wrong: %+v", bill)
	}

	got, err := store.GetBill(context.Background(), bill.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Rent" {
		t.Errorf("items not persisted: %+v", got.Items)
	}
}

func TestCreateBillAppliesRentEscalation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)

	_, err := store.CreateBill(ctx, core.Bill{
		ShopID:     shop.ID,
		BillNumber: "ESC-1",
		BillDate:   core.NewDate(2025, 8, 1),
		DueDate:    core.NewDate(2025, 8, 15),
		Items:      []core.BillItem{{Description: "Rent", Amount: core.Money{Paise: 11000 * 100}}},
	}, &RentUpdate{
		ShopID:        shop.ID,
		NewRent:       core.Money{Paise: 11000 * 100},
		EffectiveDate: core.NewDate(2025, 8, 1),
	})
	if err != nil {
		t.Fatalf("CreateBill with escalation: %v", err)
	}

	got, _ := store.GetShop(ctx, shop.ID)
	if got.MonthlyRent.Paise != 11000*100 {
		t.Errorf("rent = %d, escalation not applied", got.MonthlyRent.Paise)
	}
	if got.LastRentUpdate.String() != "2025-08-01" {
		t.Errorf("LastRentUpdate = %q, want bill date", got.LastRentUpdate)
	}
}

func TestPaymentApplyAndReverse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	bill := testBill(t, store, shop.ID, 1000*100)

	p1, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 400 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 5),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	got, _ := store.GetBill(ctx, bill.ID)
	if got.Status != core.BillPartial || got.Remaining.Paise != 600*100 {
		t.Fatalf("after first payment: status=%s remaining=%d", got.Status, got.Remaining.Paise)
	}

	p2, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 600 * 100},
		Method: core.MethodOnline,
		Date:   core.NewDate(2025, 8, 10),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	got, _ = store.GetBill(ctx, bill.ID)
	if got.Status != core.BillPaid || got.Remaining.Paise != 0 {
		t.Fatalf("after full payment: status=%s remaining=%d", got.Status, got.Remaining.Paise)
	}

	// Deleting the closing payment must go back to partial, never pending.
	if err := store.DeletePayment(ctx, p2.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	got, _ = store.GetBill(ctx, bill.ID)
	if got.Status != core.BillPartial || got.Paid.Paise != 400*100 {
		t.Errorf("after reversal: status=%s paid=%d", got.Status, got.Paid.Paise)
	}

	if err := store.DeletePayment(ctx, p1.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	got, _ = store.GetBill(ctx, bill.ID)
	if got.Status != core.BillPending || got.Paid.Paise != 0 {
		t.Errorf("after reversing everything: status=%s paid=%d", got.Status, got.Paid.Paise)
	}
}

func TestUpdatePaymentMovesAmountBetweenBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	first := testBill(t, store, shop.ID, 1000*100)

	second, err := store.CreateBill(ctx, core.Bill{
		ShopID:     shop.ID,
		BillNumber: "B-second",
		BillDate:   core.NewDate(2025, 9, 1),
		DueDate:    core.NewDate(2025, 9, 15),
		Items: []core.BillItem{
			{Description: "Rent", Amount: core.Money{Paise: 500 * 100}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	payment, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: first.ID,
		Amount: core.Money{Paise: 300 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 9, 5),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	payment.BillID = second.ID
	payment.Amount = core.Money{Paise: 500 * 100}
	payment.Method = core.MethodOnline
	if _, err := store.UpdatePayment(ctx, payment); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}

	got, _ := store.GetBill(ctx, first.ID)
	if got.Status != core.BillPending || got.Paid.Paise != 0 {
		t.Errorf("old bill not reversed: status=%s paid=%d", got.Status, got.Paid.Paise)
	}
	got, _ = store.GetBill(ctx, second.ID)
	if got.Status != core.BillPaid || got.Remaining.Paise != 0 {
		t.Errorf("new bill not applied: status=%s remaining=%d", got.Status, got.Remaining.Paise)
	}

	updated, err := store.GetPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if updated.Method != core.MethodOnline || updated.Amount.Paise != 500*100 {
		t.Errorf("payment row not updated: method=%s amount=%d", updated.Method, updated.Amount.Paise)
	}
}

func TestUpdatePaymentAgainstMissingBillRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	bill := testBill(t, store, shop.ID, 1000*100)

	payment, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 200 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 9, 5),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	payment.BillID = "no-such-bill"
	if _, err := store.UpdatePayment(ctx, payment); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentAgainstMissingBillRejected(t *testing.T) {
	store := newTestStore(t)
	shop := testShop(t, store)

	_, err := store.CreatePayment(context.Background(), core.Payment{
		ShopID: shop.ID,
		BillID: "no-such-bill",
		Amount: core.Money{Paise: 100 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 5),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePaymentAfterBillGone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	bill := testBill(t, store, shop.ID, 1000*100)

	payment, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 300 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 5),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	// Bill removal cascades the payment; recreate one pointing at the gone
	// bill to exercise the reversal no-op path.
	if err := store.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if _, err := store.GetPayment(ctx, payment.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("payment should cascade with its bill, got %v", err)
	}

	orphan := core.Payment{
		ID:     "orphan-payment",
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 300 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 6),
	}
	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO payments (id, bill_id, shop_id, amount_paise, method, date) VALUES (?, ?, ?, ?, ?, ?)`,
		orphan.ID, orphan.BillID, orphan.ShopID, orphan.Amount.Paise, string(orphan.Method), orphan.Date.String(),
	); err != nil {
		t.Fatalf("insert orphan payment: %v", err)
	}

	if err := store.DeletePayment(ctx, orphan.ID); err != nil {
		t.Errorf("deleting a payment whose bill is gone should succeed, got %v", err)
	}
}

func TestDeleteShopCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	bill := testBill(t, store, shop.ID, 1000*100)
	payment, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 500 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 5),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	if err := store.DeleteShop(ctx, shop.ID); err != nil {
		t.Fatalf("DeleteShop: %v", err)
	}
	if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("bill should be gone, got %v", err)
	}
	if _, err := store.GetPayment(ctx, payment.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("payment should be gone, got %v", err)
	}
}

func TestUpdateBillKeepsPaymentState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	shop := testShop(t, store)
	bill := testBill(t, store, shop.ID, 1000*100)

	if _, err := store.CreatePayment(ctx, core.Payment{
		ShopID: shop.ID,
		BillID: bill.ID,
		Amount: core.Money{Paise: 400 * 100},
		Method: core.MethodCash,
		Date:   core.NewDate(2025, 8, 5),
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	bill.Items = []core.BillItem{
		{Description: "Rent", Amount: core.Money{Paise: 300 * 100}},
		{Description: "Electricity", Amount: core.Money{Paise: 100 * 100}},
	}
	updated, err := store.UpdateBill(ctx, bill)
	if err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}
	if updated.Total.Paise != 400*100 {
		t.Errorf("total = %d, want re-derived 40000", updated.Total.Paise)
	}
	if updated.Paid.Paise != 400*100 || updated.Status != core.BillPaid {
		t.Errorf("payment state lost: paid=%d status=%s", updated.Paid.Paise, updated.Status)
	}
	if len(updated.Items) != 2 {
		t.Errorf("items = %d, want 2", len(updated.Items))
	}
}

func TestFamilyMemberUniqueName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateFamilyMember(ctx, core.FamilyMember{
		Name: "Sunita", Relation: "mother", IsActive: true,
	}); err != nil {
		t.Fatalf("CreateFamilyMember: %v", err)
	}
	_, err := store.CreateFamilyMember(ctx, core.FamilyMember{
		Name: "sunita", Relation: "sister", IsActive: true,
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName for case-insensitive clash, got %v", err)
	}
}

func TestDeactivateFamilyMemberKeepsRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	member, err := store.CreateFamilyMember(ctx, core.FamilyMember{
		Name: "Rahul", Relation: "son", IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateFamilyMember: %v", err)
	}
	if err := store.DeactivateFamilyMember(ctx, member.ID); err != nil {
		t.Fatalf("DeactivateFamilyMember: %v", err)
	}

	members, err := store.ListFamilyMembers(ctx)
	if err != nil {
		t.Fatalf("ListFamilyMembers: %v", err)
	}
	if len(members) != 1 || members[0].IsActive {
		t.Errorf("member should remain listed but inactive: %+v", members)
	}

	if err := store.DeactivateFamilyMember(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFamilyExpenseAndIncomeCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expense, err := store.CreateFamilyExpense(ctx, core.FamilyExpense{
		Category: "groceries",
		Amount:   core.Money{Paise: 1500 * 100},
		Date:     core.NewDate(2025, 8, 3),
		PaidBy:   "Sunita",
		Method:   core.MethodCash,
	})
	if err != nil {
		t.Fatalf("CreateFamilyExpense: %v", err)
	}
	got, err := store.GetFamilyExpense(ctx, expense.ID)
	if err != nil || got.Category != "groceries" || got.Amount.Paise != 1500*100 {
		t.Fatalf("GetFamilyExpense: %+v, %v", got, err)
	}

	income, err := store.CreateFamilyIncome(ctx, core.FamilyIncome{
		Source:     "job",
		Amount:     core.Money{Paise: 50000 * 100},
		Date:       core.NewDate(2025, 8, 1),
		ReceivedBy: "Ramesh",
		Method:     core.MethodOnline,
	})
	if err != nil {
		t.Fatalf("CreateFamilyIncome: %v", err)
	}

	if err := store.DeleteFamilyExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteFamilyExpense: %v", err)
	}
	if err := store.DeleteFamilyIncome(ctx, income.ID); err != nil {
		t.Fatalf("DeleteFamilyIncome: %v", err)
	}
	if err := store.DeleteFamilyExpense(ctx, expense.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestBankDepositCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	deposit, err := store.CreateBankDeposit(ctx, core.BankDeposit{
		Amount:      core.Money{Paise: 20000 * 100},
		FromAccount: core.MethodCash,
		BankName:    "SBI",
		Date:        core.NewDate(2025, 8, 10),
	})
	if err != nil {
		t.Fatalf("CreateBankDeposit: %v", err)
	}

	deposit.BankName = "HDFC"
	if err := store.UpdateBankDeposit(ctx, deposit); err != nil {
		t.Fatalf("UpdateBankDeposit: %v", err)
	}
	got, _ := store.GetBankDeposit(ctx, deposit.ID)
	if got.BankName != "HDFC" || got.FromAccount != core.MethodCash {
		t.Errorf("deposit mismatch: %+v", got)
	}

	if err := store.DeleteBankDeposit(ctx, deposit.ID); err != nil {
		t.Fatalf("DeleteBankDeposit: %v", err)
	}
}
