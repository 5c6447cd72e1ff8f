package core

import (
	"errors"
	"strings"
	"time"
)

// Payment methods and account buckets. Business payments never use the
// personal account; the personal bucket exists only for family entries.
const (
	MethodCash     PaymentMethod = "cash"
	MethodOnline   PaymentMethod = "online"
	MethodFamily   PaymentMethod = "family_account"
	MethodPersonal PaymentMethod = "personal_account"
)

const (
	BillPending BillStatus = "pending"
	BillPartial BillStatus = "partial"
	BillPaid    BillStatus = "paid"
)

type (
	PaymentMethod string

	BillStatus string

	ExpenseCategory string

	IncomeSource string

	Relation string

	Date struct {
		time.Time
	}

	// Shop is a rented unit generating recurring rent bills.
	Shop struct {
		ID              string
		Name            string
		Owner           string
		Phone           string
		Address         string
		MonthlyRent     Money
		ElectricityRate Money
		RentStartDate   Date
		LastRentUpdate  Date
		// Yearly increase percentage in basis points (1000 = 10%).
		// A negative value means the field was never set.
		YearlyIncreaseBps int64
		CreatedAt         time.Time
	}

	BillItem struct {
		ID          string
		Description string
		Amount      Money
	}

	Bill struct {
		ID         string
		ShopID     string
		BillNumber string
		BillDate   Date
		DueDate    Date
		Items      []BillItem
		Total      Money
		Paid       Money
		Remaining  Money
		Status     BillStatus
		CreatedAt  time.Time
	}

	// Payment records money received from a shop. An empty BillID marks an
	// advance payment not tied to a specific bill.
	Payment struct {
		ID        string
		BillID    string
		ShopID    string
		Amount    Money
		Method    PaymentMethod
		Reference string
		Notes     string
		Date      Date
		IsAdvance bool
		CreatedAt time.Time
	}

	FamilyExpense struct {
		ID          string
		Category    ExpenseCategory
		Description string
		Amount      Money
		Date        Date
		PaidBy      string
		Method      PaymentMethod
		CreatedAt   time.Time
	}

	FamilyIncome struct {
		ID          string
		Source      IncomeSource
		Description string
		Amount      Money
		Date        Date
		ReceivedBy  string
		Method      PaymentMethod
		CreatedAt   time.Time
	}

	FamilyMember struct {
		ID        string
		Name      string
		Relation  Relation
		IsActive  bool
		CreatedAt time.Time
	}

	// BankDeposit is money leaving a tracked account into an external bank
	// account. Always a debit against the source account.
	BankDeposit struct {
		ID          string
		Amount      Money
		FromAccount PaymentMethod
		BankName    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingDate   = errors.New("missing required date")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrInvalidStatus = errors.New("invalid bill status")
)

var expenseCategories = map[ExpenseCategory]bool{
	"groceries": true, "food": true, "online_shopping": true, "recharge": true,
	"petrol": true, "travel": true, "electricity": true, "medical": true,
	"education": true, "clothing": true, "entertainment": true, "makeup": true,
	"insurance": true, "tax": true, "repairing": true, "gym": true, "other": true,
}

var incomeSources = map[IncomeSource]bool{
	"job": true, "business": true, "freelance": true,
	"investment": true, "rental": true, "other": true,
}

var relations = map[Relation]bool{
	"self": true, "father": true, "mother": true, "spouse": true,
	"brother": true, "sister": true, "son": true, "daughter": true,
	"child": true, "other": true,
}

// NewDate creates a Date at local midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses an ISO-8601 day-precision date string in local time.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodOnline, MethodFamily, MethodPersonal:
		return true
	}
	return false
}

// BusinessMethod reports whether the method is allowed on shop payments.
func (m PaymentMethod) BusinessMethod() bool {
	return m == MethodCash || m == MethodOnline || m == MethodFamily
}

func (s BillStatus) Valid() bool {
	switch s {
	case BillPending, BillPartial, BillPaid:
		return true
	}
	return false
}

func (c ExpenseCategory) Valid() bool { return expenseCategories[c] }

func (s IncomeSource) Valid() bool { return incomeSources[s] }

func (r Relation) Valid() bool { return relations[r] }

func (s Shop) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.MonthlyRent.Paise < 0 || s.ElectricityRate.Paise < 0 {
		return ErrInvalidAmount
	}
	if !s.RentStartDate.IsZero() && !s.LastRentUpdate.IsZero() &&
		s.LastRentUpdate.Before(s.RentStartDate.Time) {
		return errors.New("last rent update precedes rent start date")
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.ShopID) == "" {
		return errors.New("missing shop reference")
	}
	if b.BillDate.IsZero() || b.DueDate.IsZero() {
		return ErrMissingDate
	}
	if b.Total.Paise < 0 {
		return ErrInvalidAmount
	}
	for _, it := range b.Items {
		if it.Amount.Paise < 0 {
			return ErrInvalidAmount
		}
	}
	if b.Status != "" && !b.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ItemsTotal sums the bill's line items.
func (b Bill) ItemsTotal() Money {
	var sum int64
	for _, it := range b.Items {
		sum += it.Amount.Paise
	}
	return Money{Paise: sum}
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.ShopID) == "" {
		return errors.New("missing shop reference")
	}
	if p.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if !p.Method.BusinessMethod() {
		return ErrInvalidMethod
	}
	if p.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (e FamilyExpense) Validate() error {
	if !e.Category.Valid() {
		return errors.New("invalid expense category")
	}
	if e.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if !e.Method.Valid() {
		return ErrInvalidMethod
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return errors.New("missing paid-by person")
	}
	return nil
}

func (i FamilyIncome) Validate() error {
	if !i.Source.Valid() {
		return errors.New("invalid income source")
	}
	if i.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if !i.Method.Valid() {
		return ErrInvalidMethod
	}
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(i.ReceivedBy) == "" {
		return errors.New("missing received-by person")
	}
	return nil
}

func (m FamilyMember) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !m.Relation.Valid() {
		return errors.New("invalid relation")
	}
	return nil
}

func (d BankDeposit) Validate() error {
	if d.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	switch d.FromAccount {
	case MethodCash, MethodOnline, MethodPersonal:
	default:
		return errors.New("invalid source account")
	}
	if strings.TrimSpace(d.BankName) == "" {
		return errors.New("missing bank name")
	}
	if d.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}
