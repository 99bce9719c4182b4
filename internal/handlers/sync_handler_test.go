package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/daftari/backend/internal/logger"
	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/services"
	"github.com/daftari/backend/internal/storages/memory"
)

func seedStore(t *testing.T, store *memory.Store) {
	t.Helper()
	err := store.UpsertTransaction(context.Background(), models.Transaction{
		ID:          "tx_1",
		UserID:      "user-1",
		Amount:      1000,
		Description: "seed",
		Type:        models.TypeIncome,
		Date:        "2026-03-05",
	})
	assert.NoError(t, err)
}

func TestSyncHandler_Export(t *testing.T) {
	viper.Set("server.base_url", "https://daftari.example")

	store := memory.New()
	seedStore(t, store)
	handler := NewSyncHandler(services.NewSyncService(store, nil, logger.New("error")))

	t.Run("payload and link", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/sync/export", nil)
		w := httptest.NewRecorder()

		handler.Export(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		payload, _ := resp["payload"].(string)
		assert.NotEmpty(t, payload)
		assert.Equal(t, "https://daftari.example/sync?payload="+payload, resp["link"])
		assert.NotContains(t, resp, "qrImage")
	})

	t.Run("qr image on request", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/sync/export?qr=1", nil)
		w := httptest.NewRecorder()

		handler.Export(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NotEmpty(t, resp["qrImage"])
	})
}

func TestSyncHandler_Import(t *testing.T) {
	source := memory.New()
	seedStore(t, source)
	payload, err := services.NewSyncService(source, nil, logger.New("error")).Export(context.Background())
	assert.NoError(t, err)

	t.Run("replaces state", func(t *testing.T) {
		target := memory.New()
		handler := NewSyncHandler(services.NewSyncService(target, nil, logger.New("error")))

		body, _ := json.Marshal(map[string]string{"payload": payload})
		r := httptest.NewRequest("POST", "/sync/import", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Import(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		txs, _ := target.ListTransactions(context.Background(), "user-1")
		assert.Len(t, txs, 1)
	})

	t.Run("missing payload rejected", func(t *testing.T) {
		handler := NewSyncHandler(services.NewSyncService(memory.New(), nil, logger.New("error")))

		r := httptest.NewRequest("POST", "/sync/import", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()

		handler.Import(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("garbage payload rejected", func(t *testing.T) {
		target := memory.New()
		seedStore(t, target)
		handler := NewSyncHandler(services.NewSyncService(target, nil, logger.New("error")))

		body, _ := json.Marshal(map[string]string{"payload": "!!!not-base64!!!"})
		r := httptest.NewRequest("POST", "/sync/import", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Import(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		txs, _ := target.ListTransactions(context.Background(), "user-1")
		assert.Len(t, txs, 1)
	})
}

func TestSyncHandler_Backup(t *testing.T) {
	store := memory.New()
	seedStore(t, store)
	handler := NewSyncHandler(services.NewSyncService(store, nil, logger.New("error")))

	r := httptest.NewRequest("GET", "/sync/backup", nil)
	w := httptest.NewRecorder()

	handler.Backup(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "daftari-backup-")
	assert.NotEmpty(t, w.Body.String())
}

func TestSyncHandler_ImportFromLink(t *testing.T) {
	source := memory.New()
	seedStore(t, source)
	payload, err := services.NewSyncService(source, nil, logger.New("error")).Export(context.Background())
	assert.NoError(t, err)

	t.Run("imports then redirects off the payload url", func(t *testing.T) {
		target := memory.New()
		handler := NewSyncHandler(services.NewSyncService(target, nil, logger.New("error")))

		r := httptest.NewRequest("GET", "/sync?payload="+payload, nil)
		w := httptest.NewRecorder()

		handler.ImportFromLink(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		txs, _ := target.ListTransactions(context.Background(), "user-1")
		assert.Len(t, txs, 1)
	})

	t.Run("no payload just redirects", func(t *testing.T) {
		handler := NewSyncHandler(services.NewSyncService(memory.New(), nil, logger.New("error")))

		r := httptest.NewRequest("GET", "/sync", nil)
		w := httptest.NewRecorder()

		handler.ImportFromLink(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
	})
}
