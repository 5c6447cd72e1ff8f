package core

import (
	"math/big"
	"time"
)

// RentPolicy holds the escalation knobs. Rent is reviewed every
// IncreaseIntervalMonths 30-day month buckets. The 30-day bucket is a
// deliberate simplification carried over from the original books, not
// calendar-month arithmetic; changing it would change every monetary output.
type RentPolicy struct {
	IncreaseIntervalMonths int
	DaysPerMonth           int
}

// DefaultRentPolicy returns the production policy: review every 11 buckets
// of 30 days.
func DefaultRentPolicy() RentPolicy {
	return RentPolicy{IncreaseIntervalMonths: 11, DaysPerMonth: 30}
}

// RentIncreaseInfo is the result of an escalation check.
type RentIncreaseInfo struct {
	ShouldIncrease   bool
	NewRent          Money
	IncreaseAmount   Money
	PeriodsElapsed   int
	NextIncreaseDate Date
}

// ComputeRentIncrease applies the default policy.
func ComputeRentIncrease(shop Shop, today time.Time) RentIncreaseInfo {
	return DefaultRentPolicy().ComputeRentIncrease(shop, today)
}

// ComputeRentIncrease determines whether a shop's rent is due for its yearly
// escalation and computes the compounded new rent.
//
// Each elapsed interval compounds off the already-increased rent; rounding to
// the whole rupee happens once after all intervals, never per interval. The
// calculator is pure: 'today' is the only clock input and is always passed in.
//
// It never fails. A shop missing its rent start date, last update date, or
// increase percentage degrades to a no-increase result; a stale calculation
// beats a crashed page for a bookkeeping tool.
func (p RentPolicy) ComputeRentIncrease(shop Shop, today time.Time) RentIncreaseInfo {
	noIncrease := RentIncreaseInfo{
		ShouldIncrease:   false,
		NewRent:          shop.MonthlyRent,
		IncreaseAmount:   Money{},
		NextIncreaseDate: Date{Time: today},
	}
	if shop.RentStartDate.IsZero() || shop.LastRentUpdate.IsZero() || shop.YearlyIncreaseBps < 0 {
		return noIncrease
	}

	daysPerMonth := int64(p.DaysPerMonth)
	interval := int64(p.IncreaseIntervalMonths)
	monthsSinceUpdate := floorDiv(int64(DaysBetween(today, shop.LastRentUpdate.Time)), daysPerMonth)

	info := RentIncreaseInfo{
		ShouldIncrease: monthsSinceUpdate >= interval,
		NewRent:        shop.MonthlyRent,
	}

	if info.ShouldIncrease {
		periods := floorDiv(monthsSinceUpdate, interval)
		info.PeriodsElapsed = int(periods)

		// Exact decimal compounding; one rounding pass at the end.
		rent := new(big.Rat).SetInt64(shop.MonthlyRent.Paise)
		rate := big.NewRat(shop.YearlyIncreaseBps, 10000)
		accumulated := new(big.Rat)
		for i := int64(0); i < periods; i++ {
			increase := new(big.Rat).Mul(rent, rate)
			accumulated.Add(accumulated, increase)
			rent.Add(rent, increase)
		}
		info.NewRent = Money{Paise: roundRatToRupeePaise(rent)}
		info.IncreaseAmount = Money{Paise: roundRatToRupeePaise(accumulated)}
	}

	nextMonths := int((floorDiv(monthsSinceUpdate, interval) + 1) * interval)
	info.NextIncreaseDate = Date{Time: shop.RentStartDate.AddDate(0, nextMonths, 0)}
	return info
}

// roundRatToRupeePaise rounds a paise-denominated rational to the nearest
// whole rupee (half up) and returns the result in paise.
func roundRatToRupeePaise(r *big.Rat) int64 {
	// rupees = floor(r/100 + 1/2)
	half := new(big.Rat).Add(new(big.Rat).Mul(r, big.NewRat(1, 100)), big.NewRat(1, 2))
	rupees := new(big.Int).Div(half.Num(), half.Denom())
	return rupees.Int64() * 100
}
