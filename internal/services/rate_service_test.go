package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daftari/backend/internal/logger"
	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages/memory"
)

func TestRateService(t *testing.T) {
	store := memory.New()
	service := NewRateService(store, logger.New("error"))

	t.Run("defaults until first set", func(t *testing.T) {
		r := authedRequest("GET", "/rate", nil)
		w := httptest.NewRecorder()

		service.GetRate(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp RateResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, models.DefaultUsdRate, resp.Rate)
	})

	t.Run("update sticks", func(t *testing.T) {
		body, _ := json.Marshal(RateRequest{Rate: 12500})
		r := authedRequest("PUT", "/rate", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.SetRate(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		rate, err := store.GetGlobalRate(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 12500.0, rate)
	})

	t.Run("non-positive rate rejected", func(t *testing.T) {
		body, _ := json.Marshal(RateRequest{Rate: 0})
		r := authedRequest("PUT", "/rate", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.SetRate(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rate change leaves stored entries alone", func(t *testing.T) {
		seedEntry(t, store, "tx_rate", "2026-03-05", 750000, models.TypeExpense)

		body, _ := json.Marshal(RateRequest{Rate: 20000})
		r := authedRequest("PUT", "/rate", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		service.SetRate(w, r)
		assert.Equal(t, http.StatusOK, w.Code)

		txs, _ := store.ListTransactions(context.Background(), testUserID)
		assert.Len(t, txs, 1)
		assert.Equal(t, 750000.0, txs[0].Amount)
	})
}
