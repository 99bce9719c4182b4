// Package ledger computes balances and per-day aggregates over a user's
// transaction history. All functions are pure and operate on canonical
// new-SYP amounts.
package ledger

import (
	"sort"
	"strings"

	"github.com/daftari/backend/internal/models"
)

// DayTotals is the income/expense split for a single ledger day.
type DayTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Net returns income minus expense.
func (d DayTotals) Net() float64 {
	return d.Income - d.Expense
}

// DaySummary is one day's line in a monthly breakdown.
type DaySummary struct {
	Date  string  `json:"date"`
	Net   float64 `json:"net"`
	Count int     `json:"count"`
}

// StartingBalance returns the signed sum of all of userID's canonical
// amounts dated strictly before asOfDate. The full history is rescanned on
// every call; no incremental running total is persisted anywhere, so a
// partial write can never leave a drifted balance behind.
//
// Dates are YYYY-MM-DD strings, so lexicographic comparison is also
// chronological comparison.
func StartingBalance(txs []models.Transaction, userID, asOfDate string) float64 {
	var balance float64
	for _, t := range txs {
		if t.UserID != userID || t.Date >= asOfDate {
			continue
		}
		balance += t.Signed()
	}
	return balance
}

// DailyTotals sums the canonical amounts of entries whose ledger day is
// exactly date, split by type.
func DailyTotals(txs []models.Transaction, date string) DayTotals {
	var totals DayTotals
	for _, t := range txs {
		if t.Date != date {
			continue
		}
		if t.Type == models.TypeIncome {
			totals.Income += t.Amount
		} else {
			totals.Expense += t.Amount
		}
	}
	return totals
}

// MonthlyBreakdown returns one summary per calendar day of month ("YYYY-MM")
// that has at least one transaction, most recent day first. Days without
// entries are omitted, not zero-filled.
func MonthlyBreakdown(txs []models.Transaction, month string) []DaySummary {
	prefix := month + "-"
	byDay := make(map[string]*DaySummary)

	for _, t := range txs {
		if !strings.HasPrefix(t.Date, prefix) {
			continue
		}
		day, ok := byDay[t.Date]
		if !ok {
			day = &DaySummary{Date: t.Date}
			byDay[t.Date] = day
		}
		day.Net += t.Signed()
		day.Count++
	}

	days := make([]DaySummary, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}

// FilterDay returns the entries attributed to a single ledger day, ordered
// by creation time. The ordering is for audit display only and never feeds
// balance computation.
func FilterDay(txs []models.Transaction, date string) []models.Transaction {
	day := make([]models.Transaction, 0)
	for _, t := range txs {
		if t.Date == date {
			day = append(day, t)
		}
	}
	sort.Slice(day, func(i, j int) bool {
		return day[i].CreatedAt < day[j].CreatedAt
	})
	return day
}
