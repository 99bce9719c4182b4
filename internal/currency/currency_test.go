package currency

import (
	"math"
	"testing"

	"github.com/daftari/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("new SYP is identity", func(t *testing.T) {
		got, err := Normalize(1234.5, models.CurrencyNewSYP, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1234.5, got)
	})

	t.Run("old SYP fixed ratio independent of rate", func(t *testing.T) {
		for _, rate := range []float64{0, 1, 15000, 99999} {
			got, err := Normalize(100, models.CurrencyOldSYP, rate)
			assert.NoError(t, err)
			assert.Equal(t, 1.0, got)
		}
	})

	t.Run("usd multiplies by rate", func(t *testing.T) {
		got, err := Normalize(50, models.CurrencyUSD, 15000)
		assert.NoError(t, err)
		assert.Equal(t, 750000.0, got)
	})

	t.Run("usd rejects non-positive rate", func(t *testing.T) {
		_, err := Normalize(50, models.CurrencyUSD, 0)
		assert.ErrorIs(t, err, ErrInvalidRate)

		_, err = Normalize(50, models.CurrencyUSD, -3)
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("rejects non-finite amounts", func(t *testing.T) {
		_, err := Normalize(math.NaN(), models.CurrencyNewSYP, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = Normalize(math.Inf(1), models.CurrencyUSD, 15000)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := Normalize(1, models.Currency("EUR"), 1)
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})
}

func TestDisplay(t *testing.T) {
	t.Run("stored usd entry displays in all currencies", func(t *testing.T) {
		// Global rate 15000, expense of 50 USD: canonical amount is 750000 new SYP.
		canonical, err := Normalize(50, models.CurrencyUSD, 15000)
		assert.NoError(t, err)
		assert.Equal(t, 750000.0, canonical)

		old, label, err := Display(canonical, models.CurrencyOldSYP, 15000)
		assert.NoError(t, err)
		assert.Equal(t, 75000000.0, old)
		assert.Equal(t, "O.SYP", label)

		usd, label, err := Display(canonical, models.CurrencyUSD, 15000)
		assert.NoError(t, err)
		assert.Equal(t, 50.0, usd)
		assert.Equal(t, "$", label)
	})

	t.Run("usd display rejects non-positive rate", func(t *testing.T) {
		_, _, err := Display(1000, models.CurrencyUSD, 0)
		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

func TestRoundTrip(t *testing.T) {
	currencies := []models.Currency{models.CurrencyOldSYP, models.CurrencyNewSYP, models.CurrencyUSD}
	amounts := []float64{0.01, 1, 100, 1234.56, 750000, 98765432.1}
	rates := []float64{1, 250, 15000, 16500.75}

	for _, cur := range currencies {
		for _, amount := range amounts {
			for _, rate := range rates {
				canonical, err := Normalize(amount, cur, rate)
				assert.NoError(t, err)

				back, _, err := Display(canonical, cur, rate)
				assert.NoError(t, err)
				assert.InEpsilon(t, amount, back, 1e-6,
					"round trip failed for %s amount=%v rate=%v", cur, amount, rate)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	s, err := Format(750000, models.CurrencyUSD, 15000)
	assert.NoError(t, err)
	assert.Equal(t, "50.00 $", s)

	s, err = Format(750000, models.CurrencyNewSYP, 15000)
	assert.NoError(t, err)
	assert.Equal(t, "750000 N.SYP", s)

	s, err = Format(750000, models.CurrencyOldSYP, 15000)
	assert.NoError(t, err)
	assert.Equal(t, "75000000 O.SYP", s)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.CurrencyUSD))
	assert.True(t, Valid(models.CurrencyOldSYP))
	assert.True(t, Valid(models.CurrencyNewSYP))
	assert.False(t, Valid(models.Currency("EUR")))
	assert.False(t, Valid(models.Currency("")))
}
