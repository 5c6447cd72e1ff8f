package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"₹500", 50000, true},
		{"1,00,000", 10000000, true}, // Indian comma grouping
		{"10,000.75", 1000075, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Paise != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Paise, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		in      string
		out     int64
		coerced bool
	}{
		{"1250.50", 125050, false},
		{"1,250", 125000, false},
		{"0", 0, false},
		{"", 0, false},       // absent, not coerced
		{"garbage", 0, true}, // malformed, flag for audit log
		{"-40", 0, true},
	}
	for _, tc := range cases {
		got, coerced := CoerceAmount(tc.in)
		if got.Paise != tc.out || coerced != tc.coerced {
			t.Fatalf("%q: got (%d, %v), want (%d, %v)", tc.in, got.Paise, coerced, tc.out, tc.coerced)
		}
	}
}

func TestRoundToRupee(t *testing.T) {
	cases := []struct{ in, out int64 }{
		{1049, 1000},
		{1050, 1100},
		{100, 100},
		{-1050, -1100},
		{0, 0},
	}
	for _, tc := range cases {
		if got := (Money{Paise: tc.in}).RoundToRupee().Paise; got != tc.out {
			t.Fatalf("%d: got %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestParsePercentBps(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"10", 1000, true},
		{"12.5", 1250, true},
		{"0", 0, true},
		{"-5", 0, false},
		{"pct", 0, false},
	}
	for _, tc := range cases {
		got, err := ParsePercentBps(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{123450, "₹1234.50"},
		{100000, "₹1000"},
		{-2500, "-₹25"},
		{5, "₹0.05"},
	}
	for _, tc := range cases {
		if got := FormatRupees(tc.in); got != tc.out {
			t.Fatalf("%d: got %q, want %q", tc.in, got, tc.out)
		}
	}
}
