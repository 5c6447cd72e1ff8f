package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"khata/internal/core"
)

func (s *SQLiteStore) CreateBankDeposit(ctx context.Context, deposit core.BankDeposit) (core.BankDeposit, error) {
	if deposit.ID == "" {
		deposit.ID = uuid.New().String()
	}
	if deposit.CreatedAt.IsZero() {
		deposit.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bank_deposits (id, amount_paise, from_account, bank_name, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		deposit.ID, deposit.Amount.Paise, string(deposit.FromAccount), deposit.BankName,
		deposit.Description, deposit.Date.String(), deposit.CreatedAt,
	)
	if err != nil {
		return core.BankDeposit{}, fmt.Errorf("insert bank deposit: %w", err)
	}
	return deposit, nil
}

func (s *SQLiteStore) GetBankDeposit(ctx context.Context, id string) (core.BankDeposit, error) {
	return scanBankDeposit(s.db.QueryRowContext(ctx, selectBankDeposit+` WHERE id = ?`, id))
}

func (s *SQLiteStore) ListBankDeposits(ctx context.Context) ([]core.BankDeposit, error) {
	rows, err := s.db.QueryContext(ctx, selectBankDeposit+` ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bank deposits: %w", err)
	}
	defer rows.Close()

	var deposits []core.BankDeposit
	for rows.Next() {
		deposit, err := scanBankDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, deposit)
	}
	return deposits, rows.Err()
}

func (s *SQLiteStore) UpdateBankDeposit(ctx context.Context, deposit core.BankDeposit) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bank_deposits SET amount_paise = ?, from_account = ?, bank_name = ?,
		    description = ?, date = ?
		 WHERE id = ?`,
		deposit.Amount.Paise, string(deposit.FromAccount), deposit.BankName,
		deposit.Description, deposit.Date.String(), deposit.ID,
	)
	if err != nil {
		return fmt.Errorf("update bank deposit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteBankDeposit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bank_deposits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bank deposit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const selectBankDeposit = `SELECT id, amount_paise, from_account, bank_name,
    description, date, created_at FROM bank_deposits`

func scanBankDeposit(row rowScanner) (core.BankDeposit, error) {
	var (
		deposit core.BankDeposit
		account string
		date    string
		created scanTime
	)
	err := row.Scan(&deposit.ID, &deposit.Amount.Paise, &account, &deposit.BankName,
		&deposit.Description, &date, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankDeposit{}, core.ErrNotFound
	}
	if err != nil {
		return core.BankDeposit{}, fmt.Errorf("scan bank deposit: %w", err)
	}
	deposit.FromAccount = core.PaymentMethod(account)
	deposit.Date = parseStoredDate(date)
	deposit.CreatedAt = created.Time
	return deposit, nil
}
