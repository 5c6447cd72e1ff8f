package memory

import (
	"context"
	"fmt"
	"sync"

	"khata/internal/core"
	ports "khata/internal/sheets"
)

// Store is an in-memory stand-in for the Google Sheets backup, used in tests
// and local development without credentials.
type Store struct {
	mu       sync.Mutex
	payments map[string]core.Payment
}

var (
	_ ports.PaymentWriter  = (*Store)(nil)
	_ ports.PaymentDeleter = (*Store)(nil)
)

func New() *Store {
	return &Store{payments: make(map[string]core.Payment)}
}

func (s *Store) UpsertPayment(_ context.Context, p core.Payment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return fmt.Sprintf("memory:%s", p.ID), nil
}

func (s *Store) DeletePayment(_ context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payments, paymentID)
	return nil
}

// Get exposes stored payments for test assertions.
func (s *Store) Get(paymentID string) (core.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	return p, ok
}

// Len reports the number of backed-up payments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}
