// Package core implements the analytics engine of the poker club tracker:
// ledger rows, period filtering, streak detection and the personal and club
// reports, all as pure computations over ordered slices of entries.
//
// This file holds money parsing and arithmetic. Amounts are integer cents
// end-to-end; float64 appears only at the report edge (percentages, averages).
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a raw monetary field to cents.
//
// It accepts the European notation found in imported spreadsheets: an optional
// euro sign, comma as decimal separator with dot as thousands separator
// ("1.234,50"), or plain dot-decimal ("17.5"). A bare dash or an empty field
// means zero. Negative amounts are rejected; buy-ins and cash-outs are
// non-negative by contract.
//
// Examples:
//
//	ParseAmount("€ 17,50")   -> 1750
//	ParseAmount("1.234,50")  -> 123450
//	ParseAmount("20")        -> 2000
//	ParseAmount("-")         -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return Money{}, nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "€", ""))
	if s == "-" {
		return Money{}, nil
	}
	if strings.HasPrefix(s, "-") {
		return Money{}, ErrNegativeAmount
	}
	// A comma marks the European decimal form: dots are thousands separators.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if f < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{Cents: int64(f*100.0 + 0.5)}, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Euros returns the euro value as a float64 for ratios and display.
// Use cents for everything else to avoid floating-point drift.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// MarshalJSON encodes the amount as a bare cent count.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

// UnmarshalJSON decodes a bare cent count.
func (m *Money) UnmarshalJSON(data []byte) error {
	cents, err := strconv.ParseInt(strings.Trim(string(data), `"`), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	m.Cents = cents
	return nil
}

// Sign returns 1 for a win, -1 for a loss, 0 for break-even.
func (m Money) Sign() int {
	switch {
	case m.Cents > 0:
		return 1
	case m.Cents < 0:
		return -1
	default:
		return 0
	}
}
