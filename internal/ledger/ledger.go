// Package ledger implements the running-balance arithmetic that ties
// payments to bills, and the account aggregation over the transaction
// streams. Everything here is pure; persistence wraps these rules in a
// transaction.
package ledger

import "khata/internal/core"

// ApplyPayment returns the bill after a payment of amount is applied.
//
// Status keys off the new remaining balance. Applying a payment never moves
// a bill back to pending; only the initial state or a full reversal can.
func ApplyPayment(bill core.Bill, amount core.Money) core.Bill {
	bill.Paid = bill.Paid.Add(amount)
	bill.Remaining = bill.Total.Sub(bill.Paid)
	if bill.Remaining.Paise <= 0 {
		bill.Status = core.BillPaid
	} else {
		bill.Status = core.BillPartial
	}
	return bill
}

// ReversePayment returns the bill after a payment of amount is backed out.
//
// Status keys off the new paid total, not the remaining balance. With an
// unchanged bill total the two rules are algebraically equivalent; both are
// kept as written because they are the ledger's literal rules.
func ReversePayment(bill core.Bill, amount core.Money) core.Bill {
	bill.Paid = bill.Paid.Sub(amount)
	bill.Remaining = bill.Total.Sub(bill.Paid)
	if bill.Paid.Paise <= 0 {
		bill.Status = core.BillPending
	} else {
		bill.Status = core.BillPartial
	}
	return bill
}
