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
)

// RentUpdate is the escalation side effect applied together with a bill
// creation: the shop's rent moves to NewRent and its escalation clock resets
// to EffectiveDate (the bill-creation date, not a computed ideal date).
type RentUpdate struct {
	ShopID        string
	NewRent       core.Money
	EffectiveDate core.Date
}

// CreateBill inserts a bill with its line items and, when rentUpdate is
// non-nil, applies the rent escalation to the owning shop in the same
// transaction. The bill always starts unpaid regardless of the caller's
// paid/remaining/status fields.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill core.Bill, rentUpdate *RentUpdate) (core.Bill, error) {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now()
	}
	bill.Total = bill.ItemsTotal()
	bill.Paid = core.Money{}
	bill.Remaining = bill.Total
	bill.Status = core.BillPending

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Bill{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, shop_id, bill_number, bill_date, due_date,
		    total_paise, paid_paise, remaining_paise, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.ShopID, bill.BillNumber, bill.BillDate.String(), bill.DueDate.String(),
		bill.Total.Paise, bill.Paid.Paise, bill.Remaining.Paise, string(bill.Status), bill.CreatedAt,
	)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_items (id, bill_id, position, description, amount_paise)
			 VALUES (?, ?, ?, ?, ?)`,
			item.ID, bill.ID, i, item.Description, item.Amount.Paise,
		)
		if err != nil {
			return core.Bill{}, fmt.Errorf("insert bill item: %w", err)
		}
	}

	if rentUpdate != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE shops SET monthly_rent_paise = ?, last_rent_update = ? WHERE id = ?`,
			rentUpdate.NewRent.Paise, rentUpdate.EffectiveDate.String(), rentUpdate.ShopID,
		)
		if err != nil {
			return core.Bill{}, fmt.Errorf("apply rent escalation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.Bill{}, fmt.Errorf("apply rent escalation: shop %s: %w", rentUpdate.ShopID, core.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Bill{}, fmt.Errorf("commit bill create: %w", err)
	}

	slog.InfoContext(ctx, "Bill created",
		"bill_id", bill.ID,
		"bill_number", bill.BillNumber,
		"shop_id", bill.ShopID,
		"total_paise", bill.Total.Paise,
		"rent_escalated", rentUpdate != nil)
	return bill, nil
}

func (s *SQLiteStore) GetBill(ctx context.Context, id string) (core.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx, selectBill+` WHERE id = ?`, id))
	if err != nil {
		return core.Bill{}, err
	}
	bill.Items, err = s.billItems(ctx, bill.ID)
	if err != nil {
		return core.Bill{}, err
	}
	return bill, nil
}

func (s *SQLiteStore) ListBills(ctx context.Context) ([]core.Bill, error) {
	return s.listBills(ctx, selectBill+` ORDER BY bill_date DESC`)
}

func (s *SQLiteStore) ListBillsByShop(ctx context.Context, shopID string) ([]core.Bill, error) {
	return s.listBills(ctx, selectBill+` WHERE shop_id = ? ORDER BY bill_date DESC`, shopID)
}

func (s *SQLiteStore) listBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items, err = s.billItems(ctx, bills[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return bills, nil
}

// UpdateBill replaces the bill's descriptive fields and line items. Payment
// state (paid/remaining/status) is owned by the ledger paths and left alone;
// the total is re-derived from the new items against the recorded paid sum.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill core.Bill) (core.Bill, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Bill{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanBill(tx.QueryRowContext(ctx, selectBill+` WHERE id = ?`, bill.ID))
	if err != nil {
		return core.Bill{}, err
	}

	total := bill.ItemsTotal()
	remaining := total.Sub(current.Paid)
	status := current.Status
	if current.Paid.Paise > 0 {
		if remaining.Paise <= 0 {
			status = core.BillPaid
		} else {
			status = core.BillPartial
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bills SET bill_number = ?, bill_date = ?, due_date = ?,
		    total_paise = ?, remaining_paise = ?, status = ?
		 WHERE id = ?`,
		bill.BillNumber, bill.BillDate.String(), bill.DueDate.String(),
		total.Paise, remaining.Paise, string(status), bill.ID,
	)
	if err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bill_items WHERE bill_id = ?`, bill.ID); err != nil {
		return core.Bill{}, fmt.Errorf("clear bill items: %w", err)
	}
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_items (id, bill_id, position, description, amount_paise)
			 VALUES (?, ?, ?, ?, ?)`,
			item.ID, bill.ID, i, item.Description, item.Amount.Paise,
		)
		if err != nil {
			return core.Bill{}, fmt.Errorf("insert bill item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Bill{}, fmt.Errorf("commit bill update: %w", err)
	}
	return s.GetBill(ctx, bill.ID)
}

// DeleteBill removes a bill, its items, and its payments in one transaction.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE bill_id = ?`, id); err != nil {
		return fmt.Errorf("delete bill payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bill_items WHERE bill_id = ?`, id); err != nil {
		return fmt.Errorf("delete bill items: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bill delete: %w", err)
	}
	slog.InfoContext(ctx, "Bill deleted with its payments", "bill_id", id)
	return nil
}

const selectBill = `SELECT id, shop_id, bill_number, bill_date, due_date,
    total_paise, paid_paise, remaining_paise, status, created_at FROM bills`

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		bill          core.Bill
		billDate, due string
		status        string
		created       scanTime
	)
	err := row.Scan(&bill.ID, &bill.ShopID, &bill.BillNumber, &billDate, &due,
		&bill.Total.Paise, &bill.Paid.Paise, &bill.Remaining.Paise, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, core.ErrNotFound
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("scan bill: %w", err)
	}
	bill.BillDate = parseStoredDate(billDate)
	bill.DueDate = parseStoredDate(due)
	bill.Status = core.BillStatus(status)
	bill.CreatedAt = created.Time
	return bill, nil
}

func (s *SQLiteStore) billItems(ctx context.Context, billID string) ([]core.BillItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount_paise FROM bill_items
		 WHERE bill_id = ? ORDER BY position`, billID)
	if err != nil {
		return nil, fmt.Errorf("list bill items: %w", err)
	}
	defer rows.Close()

	var items []core.BillItem
	for rows.Next() {
		var item core.BillItem
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount.Paise); err != nil {
			return nil, fmt.Errorf("scan bill item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
