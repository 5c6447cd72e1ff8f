package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"khata/internal/core"
	"khata/internal/ledger"
)

// CreatePayment records a payment and, when it references a bill, applies it
// to that bill's paid/remaining/status in the same transaction. A payment
// naming a missing bill is rejected rather than left dangling.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment core.Payment) (core.Payment, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Payment{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, bill_id, shop_id, amount_paise, method,
		    reference, notes, date, is_advance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, nullString(payment.BillID), payment.ShopID, payment.Amount.Paise,
		string(payment.Method), payment.Reference, payment.Notes,
		payment.Date.String(), payment.IsAdvance, payment.CreatedAt,
	)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	if payment.BillID != "" {
		bill, err := scanBill(tx.QueryRowContext(ctx, selectBill+` WHERE id = ?`, payment.BillID))
		if err != nil {
			return core.Payment{}, fmt.Errorf("payment bill %s: %w", payment.BillID, err)
		}
		bill = ledger.ApplyPayment(bill, payment.Amount)
		if err := updateBillLedger(ctx, tx, bill); err != nil {
			return core.Payment{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Payment{}, fmt.Errorf("commit payment create: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"payment_id", payment.ID,
		"shop_id", payment.ShopID,
		"bill_id", payment.BillID,
		"amount_paise", payment.Amount.Paise,
		"method", string(payment.Method))
	return payment, nil
}

// DeletePayment removes a payment and reverses its effect on the referenced
// bill. When the bill was deleted independently the reversal is a no-op and
// the payment row still goes away.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	payment, err := scanPayment(tx.QueryRowContext(ctx, selectPayment+` WHERE id = ?`, id))
	if err != nil {
		return err
	}

	if payment.BillID != "" {
		bill, err := scanBill(tx.QueryRowContext(ctx, selectBill+` WHERE id = ?`, payment.BillID))
		switch {
		case errors.Is(err, core.ErrNotFound):
			// Bill already gone, nothing to reverse.
		case err != nil:
			return fmt.Errorf("payment bill %s: %w", payment.BillID, err)
		default:
			bill = ledger.ReversePayment(bill, payment.Amount)
			if err := updateBillLedger(ctx, tx, bill); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment delete: %w", err)
	}

	slog.InfoContext(ctx, "Payment deleted",
		"payment_id", id,
		"bill_id", payment.BillID,
		"amount_paise", payment.Amount.Paise)
	return nil
}

// UpdatePayment replaces a payment. The old amount is reversed off its bill
// and the new amount applied to the (possibly different) referenced bill, all
// in one transaction. Bills deleted in the meantime are skipped on the
// reversal side but rejected on the apply side.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment core.Payment) (core.Payment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Payment{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := scanPayment(tx.QueryRowContext(ctx, selectPayment+` WHERE id = ?`, payment.ID))
	if err != nil {
		return core.Payment{}, err
	}

	if old.BillID != "" {
		bill, err := scanBill(tx.QueryRowContext(ctx, selectBill+` WHERE id = ?`, old.BillID))
		switch {
		case errors.Is(err, core.ErrNotFound):
		case err != nil:
			return core.Payment{}, fmt.Errorf("payment bill %s: %w", old.BillID, err)
		default:
			bill = ledger.ReversePayment(bill, old.Amount)
			if err := updateBillLedger(ctx, tx, bill); err != nil {
				return core.Payment{}, err
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE payments SET bill_id = ?, shop_id = ?, amount_paise = ?, method = ?,
		    reference = ?, notes = ?, date = ?, is_advance = ?
		 WHERE id = ?`,
		nullString(payment.BillID), payment.ShopID, payment.Amount.Paise, string(payment.Method),
		payment.Reference, payment.Notes, payment.Date.String(), payment.IsAdvance, payment.ID,
	)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment: %w", err)
	}

	if payment.BillID != "" {
		bill, err := scanBill(tx.QueryRowContext(ctx, selectBill+` WHERE id = ?`, payment.BillID))
		if err != nil {
			return core.Payment{}, fmt.Errorf("payment bill %s: %w", payment.BillID, err)
		}
		bill = ledger.ApplyPayment(bill, payment.Amount)
		if err := updateBillLedger(ctx, tx, bill); err != nil {
			return core.Payment{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Payment{}, fmt.Errorf("commit payment update: %w", err)
	}
	payment.CreatedAt = old.CreatedAt
	return payment, nil
}

func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (core.Payment, error) {
	return scanPayment(s.db.QueryRowContext(ctx, selectPayment+` WHERE id = ?`, id))
}

func (s *SQLiteStore) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return s.listPayments(ctx, selectPayment+` ORDER BY date DESC, created_at DESC`)
}

func (s *SQLiteStore) ListPaymentsByShop(ctx context.Context, shopID string) ([]core.Payment, error) {
	return s.listPayments(ctx, selectPayment+` WHERE shop_id = ? ORDER BY date DESC`, shopID)
}

func (s *SQLiteStore) listPayments(ctx context.Context, query string, args ...any) ([]core.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func updateBillLedger(ctx context.Context, tx *sql.Tx, bill core.Bill) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bills SET paid_paise = ?, remaining_paise = ?, status = ? WHERE id = ?`,
		bill.Paid.Paise, bill.Remaining.Paise, string(bill.Status), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("update bill ledger: %w", err)
	}
	return nil
}

const selectPayment = `SELECT id, bill_id, shop_id, amount_paise, method,
    reference, notes, date, is_advance, created_at FROM payments`

func scanPayment(row rowScanner) (core.Payment, error) {
	var (
		payment core.Payment
		billID  sql.NullString
		date    string
		method  string
		created scanTime
	)
	err := row.Scan(&payment.ID, &billID, &payment.ShopID, &payment.Amount.Paise,
		&method, &payment.Reference, &payment.Notes, &date, &payment.IsAdvance, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	payment.BillID = billID.String
	payment.Date = parseStoredDate(date)
	payment.Method = core.PaymentMethod(method)
	payment.CreatedAt = created.Time
	return payment, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
