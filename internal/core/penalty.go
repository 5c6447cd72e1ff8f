package core

import "time"

// Warning states for a bill's due-date standing.
const (
	WarnNone     WarningType = "none"
	WarnUpcoming WarningType = "upcoming"
	WarnOverdue  WarningType = "overdue"
	WarnPenalty  WarningType = "penalty"
)

type WarningType string

// PenaltyPolicy holds the late-fee knobs. Defaults are the long-standing
// book rules: 7-day reminder window, 30-day grace, 2% of the remaining
// balance per month-block past grace.
type PenaltyPolicy struct {
	UpcomingWindowDays int
	GraceDays          int
	MonthlyRatePercent int64
}

// DefaultPenaltyPolicy returns the production policy.
func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{UpcomingWindowDays: 7, GraceDays: 30, MonthlyRatePercent: 2}
}

// PenaltyInfo is the result of a penalty check.
type PenaltyInfo struct {
	HasPenalty    bool
	PenaltyAmount Money
	OverdueDays   int
	WarningType   WarningType
	Message       string
}

// ComputePenalty applies the default policy.
func ComputePenalty(bill Bill, today time.Time) PenaltyInfo {
	return DefaultPenaltyPolicy().ComputePenalty(bill, today)
}

// ComputePenalty classifies a bill against its due date and computes the
// late fee once the grace period has lapsed.
//
// The fee is linear in elapsed month-blocks and multiplicative on the current
// remaining balance: it never compounds on itself. Day differences use
// floored millisecond arithmetic (see DaysBetween), so state transitions
// happen at midnight of the evaluation clock. Pure and idempotent; 'today'
// is the only clock input.
func (p PenaltyPolicy) ComputePenalty(bill Bill, today time.Time) PenaltyInfo {
	// A fully paid bill carries no penalty regardless of date.
	if bill.Remaining.Paise <= 0 {
		return PenaltyInfo{WarningType: WarnNone}
	}

	daysPastDue := DaysBetween(today, bill.DueDate.Time)

	// Due within the reminder window, not yet due.
	if daysPastDue >= -p.UpcomingWindowDays && daysPastDue < 0 {
		return PenaltyInfo{
			WarningType: WarnUpcoming,
			Message:     WarningMessage(WarnUpcoming, -daysPastDue, Money{}, bill.Remaining),
		}
	}

	// Not due for a while yet.
	if daysPastDue < 0 {
		return PenaltyInfo{WarningType: WarnNone}
	}

	// Inside the grace period: warning only, no fee.
	if daysPastDue <= p.GraceDays {
		return PenaltyInfo{
			OverdueDays: daysPastDue,
			WarningType: WarnOverdue,
			Message:     WarningMessage(WarnOverdue, daysPastDue, Money{}, bill.Remaining),
		}
	}

	overdueMonths := int64((daysPastDue-p.GraceDays)/30) + 1
	amount := penaltyFee(bill.Remaining, p.MonthlyRatePercent, overdueMonths)
	return PenaltyInfo{
		HasPenalty:    true,
		PenaltyAmount: amount,
		OverdueDays:   daysPastDue,
		WarningType:   WarnPenalty,
		Message:       WarningMessage(WarnPenalty, daysPastDue, amount, bill.Remaining),
	}
}

// penaltyFee computes remaining * rate% * months rounded to the whole rupee,
// half up, in exact integer arithmetic.
func penaltyFee(remaining Money, ratePercent, months int64) Money {
	// value in rupees = remaining.Paise * rate * months / (100 * 100)
	num := remaining.Paise * ratePercent * months
	const den = 100 * 100
	rupees := (num + den/2) / den
	return Money{Paise: rupees * 100}
}
