// Package currency converts between the three supported denominations
// (old SYP, new SYP, USD) and the canonical accounting unit, new SYP.
package currency

import (
	"errors"
	"math"
	"strconv"

	"github.com/daftari/backend/internal/models"
)

// OldPerNew is the fixed denomination factor: 100 old-SYP units equal one
// new-SYP unit. It is not configurable.
const OldPerNew = 100

var (
	ErrInvalidAmount   = errors.New("amount must be a finite number")
	ErrInvalidRate     = errors.New("usd rate must be a positive number")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Normalize converts a user-entered amount into the canonical new-SYP unit.
// rate is only consulted for USD entries and must be the rate in effect for
// the entry being priced, either a per-entry override or the current global
// rate. An entry must never reach storage with a non-positive rate.
func Normalize(originalAmount float64, cur models.Currency, rate float64) (float64, error) {
	if math.IsNaN(originalAmount) || math.IsInf(originalAmount, 0) {
		return 0, ErrInvalidAmount
	}

	switch cur {
	case models.CurrencyNewSYP:
		return originalAmount, nil
	case models.CurrencyOldSYP:
		return originalAmount / OldPerNew, nil
	case models.CurrencyUSD:
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return 0, ErrInvalidRate
		}
		return originalAmount * rate, nil
	default:
		return 0, ErrUnknownCurrency
	}
}

// Display converts a canonical new-SYP amount into a target currency for
// rendering and returns the converted value with its unit label. globalRate
// is only consulted for USD display; it never feeds back into stored amounts.
func Display(canonical float64, cur models.Currency, globalRate float64) (float64, string, error) {
	switch cur {
	case models.CurrencyNewSYP:
		return canonical, "N.SYP", nil
	case models.CurrencyOldSYP:
		return canonical * OldPerNew, "O.SYP", nil
	case models.CurrencyUSD:
		if globalRate <= 0 || math.IsNaN(globalRate) || math.IsInf(globalRate, 0) {
			return 0, "", ErrInvalidRate
		}
		return canonical / globalRate, "$", nil
	default:
		return 0, "", ErrUnknownCurrency
	}
}

// Decimals returns the number of fraction digits a currency is rendered with.
func Decimals(cur models.Currency) int {
	if cur == models.CurrencyUSD {
		return 2
	}
	return 0
}

// Format renders a canonical amount in the target currency, e.g. "50.00 $"
// or "750000 N.SYP".
func Format(canonical float64, cur models.Currency, globalRate float64) (string, error) {
	value, label, err := Display(canonical, cur, globalRate)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(value, 'f', Decimals(cur), 64) + " " + label, nil
}

// Valid reports whether cur is one of the supported denominations.
func Valid(cur models.Currency) bool {
	switch cur {
	case models.CurrencyOldSYP, models.CurrencyNewSYP, models.CurrencyUSD:
		return true
	}
	return false
}
