package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daftari/backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteTransactions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rate := 15000.0
	entry := models.Transaction{
		ID:             "tx_1",
		UserID:         "user-1",
		Amount:         750000,
		OriginalAmount: 50,
		InputCurrency:  models.CurrencyUSD,
		UsdRate:        &rate,
		Description:    "groceries",
		Type:           models.TypeExpense,
		Date:           "2026-03-05",
		CreatedAt:      1740000000000,
	}

	t.Run("insert and list", func(t *testing.T) {
		assert.NoError(t, store.UpsertTransaction(ctx, entry))

		txs, err := store.ListTransactions(ctx, "user-1")
		assert.NoError(t, err)
		assert.Len(t, txs, 1)
		assert.Equal(t, entry.ID, txs[0].ID)
		assert.Equal(t, 750000.0, txs[0].Amount)
		assert.NotNil(t, txs[0].UsdRate)
		assert.Equal(t, 15000.0, *txs[0].UsdRate)
	})

	t.Run("upsert replaces in place", func(t *testing.T) {
		edited := entry
		edited.Description = "edited"
		edited.UsdRate = nil
		assert.NoError(t, store.UpsertTransaction(ctx, edited))

		txs, _ := store.ListTransactions(ctx, "user-1")
		assert.Len(t, txs, 1)
		assert.Equal(t, "edited", txs[0].Description)
		assert.Nil(t, txs[0].UsdRate)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, "someone-else")
		assert.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		assert.NoError(t, store.DeleteTransaction(ctx, "tx_1"))
		assert.NoError(t, store.DeleteTransaction(ctx, "tx_1"))

		txs, _ := store.ListTransactions(ctx, "user-1")
		assert.Empty(t, txs)
	})
}

func TestSQLiteGlobalRate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("defaults before first set", func(t *testing.T) {
		rate, err := store.GetGlobalRate(ctx)
		assert.NoError(t, err)
		assert.Equal(t, models.DefaultUsdRate, rate)
	})

	t.Run("set then get", func(t *testing.T) {
		assert.NoError(t, store.SetGlobalRate(ctx, 12500))

		rate, err := store.GetGlobalRate(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 12500.0, rate)
	})
}

func TestSQLiteUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := models.User{ID: "u1", Username: "samira", Password: "digest"}

	t.Run("create and fetch", func(t *testing.T) {
		assert.NoError(t, store.CreateUser(ctx, user))

		got, err := store.GetUserByUsername(ctx, "samira")
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := models.User{ID: "u2", Username: "samira", Password: "other"}
		assert.ErrorIs(t, store.CreateUser(ctx, dup), models.ErrUsernameTaken)
	})

	t.Run("unknown username", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSQLiteReplace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.NoError(t, store.UpsertTransaction(ctx, models.Transaction{
		ID: "tx_old", UserID: "user-1", Amount: 100,
		InputCurrency: models.CurrencyNewSYP, Type: models.TypeIncome,
		Description: "old", Date: "2026-01-01",
	}))

	snap := &models.Snapshot{
		Transactions: []models.Transaction{{
			ID: "tx_new", UserID: "user-1", Amount: 200,
			InputCurrency: models.CurrencyNewSYP, Type: models.TypeExpense,
			Description: "new", Date: "2026-02-02",
		}},
		Users:         []models.User{{ID: "u1", Username: "samira", Password: "digest"}},
		GlobalUsdRate: 11000,
	}

	assert.NoError(t, store.Replace(ctx, snap))

	txs, _ := store.ListTransactions(ctx, "user-1")
	assert.Len(t, txs, 1)
	assert.Equal(t, "tx_new", txs[0].ID)

	rate, _ := store.GetGlobalRate(ctx)
	assert.Equal(t, 11000.0, rate)

	got, _ := store.GetUserByUsername(ctx, "samira")
	assert.NotNil(t, got)
}
