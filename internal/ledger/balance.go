package ledger

import "khata/internal/core"

// Books is the full set of transaction streams a balance is derived from.
// Balances are recomputed from scratch on every read rather than maintained
// incrementally; at household volumes the O(n) scan is cheaper than keeping
// a materialized balance consistent.
type Books struct {
	Payments []core.Payment
	Incomes  []core.FamilyIncome
	Expenses []core.FamilyExpense
	Deposits []core.BankDeposit
}

// Balance derives the net available balance for one account bucket:
//
//	Σ business payments (advance or not, they all count)
//	+ Σ family income − Σ family expenses − Σ bank deposits
//
// filtered on the bucket. The personal account is computed by the same rule
// but is a fully partitioned ledger: callers must never fold it into a
// combined total with the other three buckets.
func (b Books) Balance(account core.PaymentMethod) core.Money {
	var sum int64
	for _, p := range b.Payments {
		if p.Method == account {
			sum += p.Amount.Paise
		}
	}
	for _, i := range b.Incomes {
		if i.Method == account {
			sum += i.Amount.Paise
		}
	}
	for _, e := range b.Expenses {
		if e.Method == account {
			sum -= e.Amount.Paise
		}
	}
	for _, d := range b.Deposits {
		if d.FromAccount == account {
			sum -= d.Amount.Paise
		}
	}
	return core.Money{Paise: sum}
}

// BalanceExcluding is Balance with one record left out, identified by ID
// across all four streams. Edit forms use it so the record being edited does
// not double-count against its own account; the caller re-adds the submitted
// amount.
func (b Books) BalanceExcluding(account core.PaymentMethod, excludeID string) core.Money {
	var sum int64
	for _, p := range b.Payments {
		if p.Method == account && p.ID != excludeID {
			sum += p.Amount.Paise
		}
	}
	for _, i := range b.Incomes {
		if i.Method == account && i.ID != excludeID {
			sum += i.Amount.Paise
		}
	}
	for _, e := range b.Expenses {
		if e.Method == account && e.ID != excludeID {
			sum -= e.Amount.Paise
		}
	}
	for _, d := range b.Deposits {
		if d.FromAccount == account && d.ID != excludeID {
			sum -= d.Amount.Paise
		}
	}
	return core.Money{Paise: sum}
}
