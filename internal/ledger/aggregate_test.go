package ledger

import (
	"testing"

	"github.com/daftari/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func tx(userID string, amount float64, txType models.TransactionType, date string, createdAt int64) models.Transaction {
	return models.Transaction{
		ID:             date + "-" + userID,
		UserID:         userID,
		Amount:         amount,
		OriginalAmount: amount,
		InputCurrency:  models.CurrencyNewSYP,
		Description:    "entry",
		Type:           txType,
		Date:           date,
		CreatedAt:      createdAt,
	}
}

func TestStartingBalance(t *testing.T) {
	txs := []models.Transaction{
		tx("u1", 200, models.TypeIncome, "2026-03-01", 1),
		tx("u1", 1000, models.TypeIncome, "2026-03-05", 2),
		tx("u1", 400, models.TypeExpense, "2026-03-05", 3),
		tx("u2", 9999, models.TypeIncome, "2026-03-01", 4),
	}

	t.Run("sums strictly before the day", func(t *testing.T) {
		assert.Equal(t, 200.0, StartingBalance(txs, "u1", "2026-03-05"))
	})

	t.Run("same-day entries excluded", func(t *testing.T) {
		assert.Equal(t, 0.0, StartingBalance(txs, "u1", "2026-03-01"))
	})

	t.Run("other users never counted", func(t *testing.T) {
		assert.Equal(t, 800.0, StartingBalance(txs, "u1", "2026-04-01"))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Equal(t, 0.0, StartingBalance(nil, "u1", "2026-03-05"))
	})
}

func TestDailyTotals(t *testing.T) {
	txs := []models.Transaction{
		tx("u1", 200, models.TypeIncome, "2026-03-04", 1),
		tx("u1", 1000, models.TypeIncome, "2026-03-05", 2),
		tx("u1", 400, models.TypeExpense, "2026-03-05", 3),
	}

	totals := DailyTotals(txs, "2026-03-05")
	assert.Equal(t, 1000.0, totals.Income)
	assert.Equal(t, 400.0, totals.Expense)
	assert.Equal(t, 600.0, totals.Net())

	// Starting balance of 200 before the day gives an ending balance of 800.
	starting := StartingBalance(txs, "u1", "2026-03-05")
	assert.Equal(t, 200.0, starting)
	assert.Equal(t, 800.0, starting+totals.Net())
}

// Ending balance of one day must equal the starting balance of the next.
func TestBalanceConsistencyAcrossDays(t *testing.T) {
	txs := []models.Transaction{
		tx("u1", 500, models.TypeIncome, "2026-02-27", 1),
		tx("u1", 120, models.TypeExpense, "2026-02-28", 2),
		tx("u1", 75, models.TypeIncome, "2026-02-28", 3),
		tx("u1", 60, models.TypeExpense, "2026-03-01", 4),
	}

	days := []struct{ day, next string }{
		{"2026-02-27", "2026-02-28"},
		{"2026-02-28", "2026-03-01"},
		{"2026-03-01", "2026-03-02"},
	}
	for _, d := range days {
		starting := StartingBalance(txs, "u1", d.day)
		totals := DailyTotals(txs, d.day)
		assert.Equal(t, StartingBalance(txs, "u1", d.next), starting+totals.Net(),
			"day %s", d.day)
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	t.Run("only active days, reverse chronological", func(t *testing.T) {
		txs := []models.Transaction{
			tx("u1", 100, models.TypeIncome, "2026-03-03", 1),
			tx("u1", 40, models.TypeExpense, "2026-03-17", 2),
			tx("u1", 90, models.TypeIncome, "2026-03-17", 3),
			tx("u1", 55, models.TypeIncome, "2026-04-01", 4),
		}

		days := MonthlyBreakdown(txs, "2026-03")
		assert.Len(t, days, 2)
		assert.Equal(t, "2026-03-17", days[0].Date)
		assert.Equal(t, 50.0, days[0].Net)
		assert.Equal(t, 2, days[0].Count)
		assert.Equal(t, "2026-03-03", days[1].Date)
		assert.Equal(t, 100.0, days[1].Net)
		assert.Equal(t, 1, days[1].Count)
	})

	t.Run("empty month", func(t *testing.T) {
		assert.Empty(t, MonthlyBreakdown(nil, "2026-03"))
	})
}

func TestFilterDay(t *testing.T) {
	txs := []models.Transaction{
		tx("u1", 1, models.TypeIncome, "2026-03-05", 30),
		tx("u1", 2, models.TypeIncome, "2026-03-05", 10),
		tx("u1", 3, models.TypeIncome, "2026-03-06", 20),
	}

	day := FilterDay(txs, "2026-03-05")
	assert.Len(t, day, 2)
	assert.Equal(t, int64(10), day[0].CreatedAt)
	assert.Equal(t, int64(30), day[1].CreatedAt)
}
