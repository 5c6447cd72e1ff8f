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

// CreateShop persists a new shop. LastRentUpdate defaults to the rent start
// date when unset, so the first escalation clock starts at move-in.
func (s *SQLiteStore) CreateShop(ctx context.Context, shop core.Shop) (core.Shop, error) {
	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = time.Now()
	}
	if shop.LastRentUpdate.IsZero() {
		shop.LastRentUpdate = shop.RentStartDate
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shops (id, name, owner, phone, address, monthly_rent_paise,
		    electricity_rate_paise, rent_start_date, last_rent_update,
		    yearly_increase_bps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shop.ID, shop.Name, shop.Owner, shop.Phone, shop.Address,
		shop.MonthlyRent.Paise, shop.ElectricityRate.Paise,
		shop.RentStartDate.String(), shop.LastRentUpdate.String(),
		shop.YearlyIncreaseBps, shop.CreatedAt,
	)
	if err != nil {
		return core.Shop{}, fmt.Errorf("insert shop: %w", err)
	}

	slog.InfoContext(ctx, "Shop created",
		"shop_id", shop.ID,
		"name", shop.Name,
		"monthly_rent_paise", shop.MonthlyRent.Paise)
	return shop, nil
}

func (s *SQLiteStore) GetShop(ctx context.Context, id string) (core.Shop, error) {
	return scanShop(s.db.QueryRowContext(ctx,
		`SELECT id, name, owner, phone, address, monthly_rent_paise,
		    electricity_rate_paise, rent_start_date, last_rent_update,
		    yearly_increase_bps, created_at
		 FROM shops WHERE id = ?`, id))
}

func (s *SQLiteStore) ListShops(ctx context.Context) ([]core.Shop, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner, phone, address, monthly_rent_paise,
		    electricity_rate_paise, rent_start_date, last_rent_update,
		    yearly_increase_bps, created_at
		 FROM shops ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []core.Shop
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

// UpdateShop overwrites the shop's mutable fields and returns the stored row.
func (s *SQLiteStore) UpdateShop(ctx context.Context, shop core.Shop) (core.Shop, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shops SET name = ?, owner = ?, phone = ?, address = ?,
		    monthly_rent_paise = ?, electricity_rate_paise = ?,
		    rent_start_date = ?, last_rent_update = ?, yearly_increase_bps = ?
		 WHERE id = ?`,
		shop.Name, shop.Owner, shop.Phone, shop.Address,
		shop.MonthlyRent.Paise, shop.ElectricityRate.Paise,
		shop.RentStartDate.String(), shop.LastRentUpdate.String(),
		shop.YearlyIncreaseBps, shop.ID,
	)
	if err != nil {
		return core.Shop{}, fmt.Errorf("update shop: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Shop{}, core.ErrNotFound
	}
	return s.GetShop(ctx, shop.ID)
}

// DeleteShop removes a shop and cascades to its bills and all its payments,
// advance payments included, in one transaction.
func (s *SQLiteStore) DeleteShop(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE shop_id = ?`, id); err != nil {
		return fmt.Errorf("delete shop payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bill_items WHERE bill_id IN (SELECT id FROM bills WHERE shop_id = ?)`, id); err != nil {
		return fmt.Errorf("delete shop bill items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE shop_id = ?`, id); err != nil {
		return fmt.Errorf("delete shop bills: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit shop delete: %w", err)
	}
	slog.InfoContext(ctx, "Shop deleted with its bills and payments", "shop_id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner) (core.Shop, error) {
	var (
		shop       core.Shop
		start, upd string
		created    scanTime
	)
	err := row.Scan(&shop.ID, &shop.Name, &shop.Owner, &shop.Phone, &shop.Address,
		&shop.MonthlyRent.Paise, &shop.ElectricityRate.Paise,
		&start, &upd, &shop.YearlyIncreaseBps, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Shop{}, core.ErrNotFound
	}
	if err != nil {
		return core.Shop{}, fmt.Errorf("scan shop: %w", err)
	}
	shop.RentStartDate = parseStoredDate(start)
	shop.LastRentUpdate = parseStoredDate(upd)
	shop.CreatedAt = created.Time
	return shop, nil
}

// parseStoredDate reads a stored ISO date; an empty or malformed value
// becomes the zero Date, which the calculators treat as missing.
func parseStoredDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}
