package core

import (
	"testing"
	"time"
)

func testBill(remainingPaise int64, dueDaysAgo int, today time.Time) Bill {
	return Bill{
		ID:        "b1",
		ShopID:    "s1",
		Total:     Money{Paise: remainingPaise},
		Remaining: Money{Paise: remainingPaise},
		DueDate:   Date{Time: today.AddDate(0, 0, -dueDaysAgo)},
		Status:    BillPending,
	}
}

func TestComputePenaltyStates(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	cases := []struct {
		name        string
		bill        Bill
		wantType    WarningType
		wantPenalty int64
		wantOverdue int
	}{
		{"fully paid ignores due date", testBill(0, 90, today), WarnNone, 0, 0},
		{"far from due", testBill(1000_00, -20, today), WarnNone, 0, 0},
		{"due in 7 days", testBill(1000_00, -7, today), WarnUpcoming, 0, 0},
		{"due tomorrow", testBill(1000_00, -1, today), WarnUpcoming, 0, 0},
		{"due today", testBill(1000_00, 0, today), WarnOverdue, 0, 0},
		{"grace boundary at 30 days", testBill(1000_00, 30, today), WarnOverdue, 0, 30},
		{"penalty starts at 31 days", testBill(1000_00, 31, today), WarnPenalty, 20_00, 31},
		{"second month block at 61 days", testBill(1000_00, 61, today), WarnPenalty, 40_00, 61},
		{"third month block at 91 days", testBill(1000_00, 91, today), WarnPenalty, 60_00, 91},
	}
	for _, tc := range cases {
		got := ComputePenalty(tc.bill, today)
		if got.WarningType != tc.wantType {
			t.Fatalf("%s: want type %s, got %s", tc.name, tc.wantType, got.WarningType)
		}
		if got.PenaltyAmount.Paise != tc.wantPenalty {
			t.Fatalf("%s: want penalty %d, got %d", tc.name, tc.wantPenalty, got.PenaltyAmount.Paise)
		}
		if got.OverdueDays != tc.wantOverdue {
			t.Fatalf("%s: want overdue days %d, got %d", tc.name, tc.wantOverdue, got.OverdueDays)
		}
		if got.HasPenalty != (tc.wantPenalty > 0) {
			t.Fatalf("%s: HasPenalty inconsistent: %+v", tc.name, got)
		}
	}
}

func TestComputePenaltyOnRemainingNotTotal(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	bill := testBill(5000_00, 31, today)
	bill.Total = Money{Paise: 20000_00}
	bill.Paid = Money{Paise: 15000_00}

	got := ComputePenalty(bill, today)
	// 2% of the remaining 5000, not of the 20000 total
	if got.PenaltyAmount.Paise != 100_00 {
		t.Fatalf("penalty must apply to remaining balance: got %s", FormatRupees(got.PenaltyAmount.Paise))
	}
}

func TestComputePenaltyRoundsToRupee(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	// 1050.50 * 0.02 = 21.01 -> rounds to 21
	bill := testBill(1050_50, 31, today)
	got := ComputePenalty(bill, today)
	if got.PenaltyAmount.Paise != 21_00 {
		t.Fatalf("expected ₹21, got %s", FormatRupees(got.PenaltyAmount.Paise))
	}
	// 1075 * 0.02 = 21.50 -> rounds half up to 22
	bill = testBill(1075_00, 31, today)
	got = ComputePenalty(bill, today)
	if got.PenaltyAmount.Paise != 22_00 {
		t.Fatalf("expected ₹22, got %s", FormatRupees(got.PenaltyAmount.Paise))
	}
}

func TestComputePenaltyFloorsDayBoundary(t *testing.T) {
	// Evaluating at midday: half a day past due floors to 0 (overdue day 0),
	// half a day before due floors to -1 (inside the upcoming window).
	noon := time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)

	dueTodayMidnight := testBill(1000_00, 0, time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local))
	got := ComputePenalty(dueTodayMidnight, noon)
	if got.WarningType != WarnOverdue || got.OverdueDays != 0 {
		t.Fatalf("half day past due must floor to day 0: %+v", got)
	}

	dueTomorrowMidnight := testBill(1000_00, -1, time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local))
	got = ComputePenalty(dueTomorrowMidnight, noon)
	if got.WarningType != WarnUpcoming {
		t.Fatalf("half day before due must floor to -1: %+v", got)
	}
}

func TestComputePenaltyIdempotent(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	bill := testBill(3333_00, 45, today)
	a := ComputePenalty(bill, today)
	b := ComputePenalty(bill, today)
	if a != b {
		t.Fatalf("same inputs must give same output:\n%+v\n%+v", a, b)
	}
}
