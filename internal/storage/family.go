package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"khata/internal/core"
)

// ErrDuplicateName marks a family member name collision. Names are unique
// case-insensitively.
var ErrDuplicateName = errors.New("family member name already exists")

func (s *SQLiteStore) CreateFamilyMember(ctx context.Context, member core.FamilyMember) (core.FamilyMember, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_members (id, name, relation, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID, member.Name, string(member.Relation), member.IsActive, member.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return core.FamilyMember{}, ErrDuplicateName
		}
		return core.FamilyMember{}, fmt.Errorf("insert family member: %w", err)
	}
	return member, nil
}

func (s *SQLiteStore) ListFamilyMembers(ctx context.Context) ([]core.FamilyMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, relation, is_active, created_at FROM family_members ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []core.FamilyMember
	for rows.Next() {
		var (
			member   core.FamilyMember
			relation string
			created  scanTime
		)
		if err := rows.Scan(&member.ID, &member.Name, &relation, &member.IsActive, &created); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		member.Relation = core.Relation(relation)
		member.CreatedAt = created.Time
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) UpdateFamilyMember(ctx context.Context, member core.FamilyMember) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE family_members SET name = ?, relation = ?, is_active = ? WHERE id = ?`,
		member.Name, string(member.Relation), member.IsActive, member.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrDuplicateName
		}
		return fmt.Errorf("update family member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeactivateFamilyMember marks a member inactive instead of removing the
// row, so historic expense and income entries keep resolving their person.
func (s *SQLiteStore) DeactivateFamilyMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE family_members SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate family member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateFamilyExpense(ctx context.Context, expense core.FamilyExpense) (core.FamilyExpense, error) {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_expenses (id, category, description, amount_paise, date, paid_by, method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, string(expense.Category), expense.Description, expense.Amount.Paise,
		expense.Date.String(), expense.PaidBy, string(expense.Method), expense.CreatedAt,
	)
	if err != nil {
		return core.FamilyExpense{}, fmt.Errorf("insert family expense: %w", err)
	}
	return expense, nil
}

func (s *SQLiteStore) GetFamilyExpense(ctx context.Context, id string) (core.FamilyExpense, error) {
	return scanFamilyExpense(s.db.QueryRowContext(ctx, selectFamilyExpense+` WHERE id = ?`, id))
}

func (s *SQLiteStore) ListFamilyExpenses(ctx context.Context) ([]core.FamilyExpense, error) {
	rows, err := s.db.QueryContext(ctx, selectFamilyExpense+` ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list family expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.FamilyExpense
	for rows.Next() {
		expense, err := scanFamilyExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func (s *SQLiteStore) UpdateFamilyExpense(ctx context.Context, expense core.FamilyExpense) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE family_expenses SET category = ?, description = ?, amount_paise = ?,
		    date = ?, paid_by = ?, method = ?
		 WHERE id = ?`,
		string(expense.Category), expense.Description, expense.Amount.Paise,
		expense.Date.String(), expense.PaidBy, string(expense.Method), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("update family expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteFamilyExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM family_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateFamilyIncome(ctx context.Context, income core.FamilyIncome) (core.FamilyIncome, error) {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	if income.CreatedAt.IsZero() {
		income.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_income (id, source, description, amount_paise, date, received_by, method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		income.ID, string(income.Source), income.Description, income.Amount.Paise,
		income.Date.String(), income.ReceivedBy, string(income.Method), income.CreatedAt,
	)
	if err != nil {
		return core.FamilyIncome{}, fmt.Errorf("insert family income: %w", err)
	}
	return income, nil
}

func (s *SQLiteStore) GetFamilyIncome(ctx context.Context, id string) (core.FamilyIncome, error) {
	return scanFamilyIncome(s.db.QueryRowContext(ctx, selectFamilyIncome+` WHERE id = ?`, id))
}

func (s *SQLiteStore) ListFamilyIncome(ctx context.Context) ([]core.FamilyIncome, error) {
	rows, err := s.db.QueryContext(ctx, selectFamilyIncome+` ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list family income: %w", err)
	}
	defer rows.Close()

	var incomes []core.FamilyIncome
	for rows.Next() {
		income, err := scanFamilyIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}

func (s *SQLiteStore) UpdateFamilyIncome(ctx context.Context, income core.FamilyIncome) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE family_income SET source = ?, description = ?, amount_paise = ?,
		    date = ?, received_by = ?, method = ?
		 WHERE id = ?`,
		string(income.Source), income.Description, income.Amount.Paise,
		income.Date.String(), income.ReceivedBy, string(income.Method), income.ID,
	)
	if err != nil {
		return fmt.Errorf("update family income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteFamilyIncome(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM family_income WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const selectFamilyExpense = `SELECT id, category, description, amount_paise, date,
    paid_by, method, created_at FROM family_expenses`

func scanFamilyExpense(row rowScanner) (core.FamilyExpense, error) {
	var (
		expense          core.FamilyExpense
		category, method string
		date             string
		created          scanTime
	)
	err := row.Scan(&expense.ID, &category, &expense.Description, &expense.Amount.Paise,
		&date, &expense.PaidBy, &method, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FamilyExpense{}, core.ErrNotFound
	}
	if err != nil {
		return core.FamilyExpense{}, fmt.Errorf("scan family expense: %w", err)
	}
	expense.Category = core.ExpenseCategory(category)
	expense.Method = core.PaymentMethod(method)
	expense.Date = parseStoredDate(date)
	expense.CreatedAt = created.Time
	return expense, nil
}

const selectFamilyIncome = `SELECT id, source, description, amount_paise, date,
    received_by, method, created_at FROM family_income`

func scanFamilyIncome(row rowScanner) (core.FamilyIncome, error) {
	var (
		income         core.FamilyIncome
		source, method string
		date           string
		created        scanTime
	)
	err := row.Scan(&income.ID, &source, &income.Description, &income.Amount.Paise,
		&date, &income.ReceivedBy, &method, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FamilyIncome{}, core.ErrNotFound
	}
	if err != nil {
		return core.FamilyIncome{}, fmt.Errorf("scan family income: %w", err)
	}
	income.Source = core.IncomeSource(source)
	income.Method = core.PaymentMethod(method)
	income.Date = parseStoredDate(date)
	income.CreatedAt = created.Time
	return income, nil
}
