package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

// BillingService orchestrates shop, bill and payment operations across
// SQLite and AMQP, applying the rent and penalty calculators where they
// belong so handlers never run business rules themselves.
type BillingService struct {
	store         *storage.SQLiteStore
	amqpClient    *amqp.Client
	rentPolicy    core.RentPolicy
	penaltyPolicy core.PenaltyPolicy
}

func NewBillingService(store *storage.SQLiteStore, amqpClient *amqp.Client, rentPolicy core.RentPolicy, penaltyPolicy core.PenaltyPolicy) *BillingService {
	return &BillingService{
		store:         store,
		amqpClient:    amqpClient,
		rentPolicy:    rentPolicy,
		penaltyPolicy: penaltyPolicy,
	}
}

// CreateBill validates and stores a bill. When the owning shop's rent
// escalation is due as of the bill date, the new rent is applied to the shop
// in the same transaction and the escalation clock restarts from the bill
// date.
func (s *BillingService) CreateBill(ctx context.Context, bill core.Bill) (core.Bill, error) {
	if err := bill.Validate(); err != nil {
		return core.Bill{}, err
	}

	shop, err := s.store.GetShop(ctx, bill.ShopID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill shop: %w", err)
	}

	var rentUpdate *storage.RentUpdate
	info := s.rentPolicy.ComputeRentIncrease(shop, bill.BillDate.Time)
	if info.ShouldIncrease {
		rentUpdate = &storage.RentUpdate{
			ShopID:        shop.ID,
			NewRent:       info.NewRent,
			EffectiveDate: bill.BillDate,
		}
		slog.InfoContext(ctx, "Rent escalation due at bill creation",
			"shop_id", shop.ID,
			"old_rent_paise", shop.MonthlyRent.Paise,
			"new_rent_paise", info.NewRent.Paise,
			"periods", info.PeriodsElapsed)
	}

	return s.store.CreateBill(ctx, bill, rentUpdate)
}

// RentIncreasePreview reports whether a shop's rent escalation is due today
// without changing anything.
func (s *BillingService) RentIncreasePreview(ctx context.Context, shopID string) (core.RentIncreaseInfo, error) {
	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return core.RentIncreaseInfo{}, err
	}
	return s.rentPolicy.ComputeRentIncrease(shop, time.Now()), nil
}

// BillPenalty evaluates a bill's late state as of today.
func (s *BillingService) BillPenalty(ctx context.Context, billID string) (core.Bill, core.PenaltyInfo, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return core.Bill{}, core.PenaltyInfo{}, err
	}
	return bill, s.penaltyPolicy.ComputePenalty(bill, time.Now()), nil
}

// CreatePayment saves a payment locally and publishes a backup message.
// Backup failures never fail the request, the payment is already recorded.
func (s *BillingService) CreatePayment(ctx context.Context, payment core.Payment) (core.Payment, error) {
	if err := payment.Validate(); err != nil {
		return core.Payment{}, err
	}

	payment, err := s.store.CreatePayment(ctx, payment)
	if err != nil {
		return core.Payment{}, fmt.Errorf("save payment: %w", err)
	}

	if err := s.publishSync(ctx, payment.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish backup message",
			"payment_id", payment.ID, "error", err)
	}
	return payment, nil
}

// UpdatePayment replaces a payment and publishes a fresh backup message so
// the external copy reflects the corrected row.
func (s *BillingService) UpdatePayment(ctx context.Context, payment core.Payment) (core.Payment, error) {
	if err := payment.Validate(); err != nil {
		return core.Payment{}, err
	}

	payment, err := s.store.UpdatePayment(ctx, payment)
	if err != nil {
		return core.Payment{}, err
	}

	if err := s.publishSync(ctx, payment.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish backup message",
			"payment_id", payment.ID, "error", err)
	}
	return payment, nil
}

// DeletePayment removes a payment, reverses its bill effect, and publishes a
// backup removal message.
func (s *BillingService) DeletePayment(ctx context.Context, id string) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish backup delete message",
			"payment_id", id, "error", err)
	}
	return nil
}

func (s *BillingService) publishSync(ctx context.Context, paymentID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping backup message")
		return nil
	}
	return s.amqpClient.PublishPaymentSync(ctx, paymentID)
}

func (s *BillingService) publishDelete(ctx context.Context, paymentID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping backup delete message")
		return nil
	}
	return s.amqpClient.PublishPaymentDelete(ctx, paymentID)
}

// Close closes both storage and AMQP connections.
func (s *BillingService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close billing service: %v", errs)
	}

	return nil
}
