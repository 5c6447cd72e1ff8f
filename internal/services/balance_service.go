package services

import (
	"context"
	"fmt"

	"khata/internal/core"
	"khata/internal/ledger"
	"khata/internal/storage"
)

// BalanceSnapshot is the dashboard view of all account buckets. The personal
// account is partitioned: Total covers cash, online and family only.
type BalanceSnapshot struct {
	Cash     core.Money
	Online   core.Money
	Family   core.Money
	Personal core.Money
	Total    core.Money
}

// BalanceService derives account balances by recomputing from the full
// transaction history on every read.
type BalanceService struct {
	store *storage.SQLiteStore
}

func NewBalanceService(store *storage.SQLiteStore) *BalanceService {
	return &BalanceService{store: store}
}

func (s *BalanceService) loadBooks(ctx context.Context) (ledger.Books, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return ledger.Books{}, fmt.Errorf("load payments: %w", err)
	}
	incomes, err := s.store.ListFamilyIncome(ctx)
	if err != nil {
		return ledger.Books{}, fmt.Errorf("load income: %w", err)
	}
	expenses, err := s.store.ListFamilyExpenses(ctx)
	if err != nil {
		return ledger.Books{}, fmt.Errorf("load expenses: %w", err)
	}
	deposits, err := s.store.ListBankDeposits(ctx)
	if err != nil {
		return ledger.Books{}, fmt.Errorf("load deposits: %w", err)
	}
	return ledger.Books{
		Payments: payments,
		Incomes:  incomes,
		Expenses: expenses,
		Deposits: deposits,
	}, nil
}

// Snapshot computes all account balances in one pass over the books.
func (s *BalanceService) Snapshot(ctx context.Context) (BalanceSnapshot, error) {
	books, err := s.loadBooks(ctx)
	if err != nil {
		return BalanceSnapshot{}, err
	}

	snap := BalanceSnapshot{
		Cash:     books.Balance(core.MethodCash),
		Online:   books.Balance(core.MethodOnline),
		Family:   books.Balance(core.MethodFamily),
		Personal: books.Balance(core.MethodPersonal),
	}
	snap.Total = snap.Cash.Add(snap.Online).Add(snap.Family)
	return snap, nil
}

// AvailableExcluding reports the balance of one account with a single record
// left out. Edit previews use it so a record does not count against itself.
func (s *BalanceService) AvailableExcluding(ctx context.Context, account core.PaymentMethod, excludeID string) (core.Money, error) {
	if !account.Valid() {
		return core.Money{}, core.ErrInvalidMethod
	}
	books, err := s.loadBooks(ctx)
	if err != nil {
		return core.Money{}, err
	}
	if excludeID == "" {
		return books.Balance(account), nil
	}
	return books.BalanceExcluding(account, excludeID), nil
}
