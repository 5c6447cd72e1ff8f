// Package core holds the domain model and the bookkeeping calculators.
//
// This file contains money parsing and rounding. All amounts are exact paise
// (int64 minor units); binary floating point is never used for arithmetic.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact amount in paise (1/100 rupee).
type Money struct {
	Paise int64
}

// Rupees returns the rupee value as a float64 for display purposes only.
// Use paise for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Paise: m.Paise - other.Paise}
}

// RoundToRupee rounds to the nearest whole rupee, half away from zero.
func (m Money) RoundToRupee() Money {
	p := m.Paise
	neg := p < 0
	if neg {
		p = -p
	}
	r := ((p + 50) / 100) * 100
	if neg {
		r = -r
	}
	return Money{Paise: r}
}

// ParseAmount converts a positive decimal rupee string to paise with half-up
// rounding on the third decimal place. Thousands separators (Indian-style
// comma grouping) and a leading rupee sign are accepted.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234, nil
//	ParseAmount("1,00,000") -> 10000000, nil
//	ParseAmount("12.346")   -> 1235, nil (rounds up)
func ParseAmount(s string) (Money, error) {
	paise, err := parseDecimalPaise(s)
	if err != nil {
		return Money{}, err
	}
	if paise <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Paise: paise}, nil
}

func parseDecimalPaise(s string) (int64, error) {
	s = normalizeAmount(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	return iv*100 + fracPaise, nil
}

// CoerceAmount applies the lenient boundary rule: an unparseable or missing
// amount becomes zero instead of an error. The second return value reports
// whether the input was coerced, so callers can log it; silently zeroing a
// large payment is exactly the failure mode worth an audit trail.
func CoerceAmount(s string) (Money, bool) {
	if normalizeAmount(s) == "" {
		return Money{}, strings.TrimSpace(s) != ""
	}
	paise, err := parseDecimalPaise(s)
	if err != nil || paise < 0 {
		return Money{}, true
	}
	return Money{Paise: paise}, false
}

func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	// Strip thousands separators and inner spaces
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// ParsePercentBps converts a decimal percentage string (e.g. "10" or "12.5")
// to basis points. Zero is a valid percentage.
func ParsePercentBps(s string) (int64, error) {
	return parseDecimalPaise(s)
}

// FormatRupees renders paise as a rupee string like "₹1234.50".
func FormatRupees(paise int64) string {
	neg := paise < 0
	if neg {
		paise = -paise
	}
	s := strconv.FormatInt(paise/100, 10)
	if rem := paise % 100; rem != 0 {
		s += "." + twoDigits(rem)
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
