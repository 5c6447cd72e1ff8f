package ledger

import (
	"testing"

	"khata/internal/core"
)

func pendingBill(totalPaise int64) core.Bill {
	return core.Bill{
		ID:        "b1",
		ShopID:    "s1",
		Total:     core.Money{Paise: totalPaise},
		Remaining: core.Money{Paise: totalPaise},
		Status:    core.BillPending,
	}
}

func TestApplyPaymentScenario(t *testing.T) {
	bill := pendingBill(1000_00)

	bill = ApplyPayment(bill, core.Money{Paise: 400_00})
	if bill.Paid.Paise != 400_00 || bill.Remaining.Paise != 600_00 || bill.Status != core.BillPartial {
		t.Fatalf("after 400: %+v", bill)
	}

	bill = ApplyPayment(bill, core.Money{Paise: 600_00})
	if bill.Paid.Paise != 1000_00 || bill.Remaining.Paise != 0 || bill.Status != core.BillPaid {
		t.Fatalf("after 600: %+v", bill)
	}

	// Deleting the second payment leaves paid=400 > 0: partial, not pending.
	bill = ReversePayment(bill, core.Money{Paise: 600_00})
	if bill.Paid.Paise != 400_00 || bill.Remaining.Paise != 600_00 || bill.Status != core.BillPartial {
		t.Fatalf("after reversing 600: %+v", bill)
	}

	bill = ReversePayment(bill, core.Money{Paise: 400_00})
	if bill.Paid.Paise != 0 || bill.Remaining.Paise != 1000_00 || bill.Status != core.BillPending {
		t.Fatalf("after reversing 400: %+v", bill)
	}
}

func TestApplyThenReverseRoundTrips(t *testing.T) {
	for _, amount := range []int64{1, 250_00, 999_99, 1000_00} {
		before := pendingBill(1000_00)
		after := ReversePayment(ApplyPayment(before, core.Money{Paise: amount}), core.Money{Paise: amount})
		if after.Paid != before.Paid || after.Remaining != before.Remaining || after.Status != before.Status {
			t.Fatalf("amount %d: round trip changed bill:\nbefore %+v\nafter  %+v", amount, before, after)
		}
	}
}

func TestApplyOverpaymentMarksPaid(t *testing.T) {
	bill := ApplyPayment(pendingBill(500_00), core.Money{Paise: 700_00})
	if bill.Status != core.BillPaid {
		t.Fatalf("overpaid bill must be paid: %+v", bill)
	}
	if bill.Remaining.Paise != -200_00 {
		t.Fatalf("remaining must go negative on overpayment: %+v", bill)
	}
}

func TestApplyNeverReturnsToPending(t *testing.T) {
	bill := pendingBill(1000_00)
	bill = ApplyPayment(bill, core.Money{Paise: 1000_00})
	// A further (erroneous) zero-amount application still keys off remaining.
	bill = ApplyPayment(bill, core.Money{})
	if bill.Status != core.BillPaid {
		t.Fatalf("application must never produce pending: %+v", bill)
	}
}
