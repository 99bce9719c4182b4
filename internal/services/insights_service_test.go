package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/daftari/backend/internal/logger"
	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages/memory"
)

func TestInsightsService_Generate(t *testing.T) {
	t.Run("unconfigured key is a clean 503", func(t *testing.T) {
		viper.Set("gemini.api_key", "")

		service := NewInsightsService(memory.New(), logger.New("error"))

		r := authedRequest("POST", "/insights", nil)
		w := httptest.NewRecorder()

		service.Generate(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		service := NewInsightsService(memory.New(), logger.New("error"))

		r := httptest.NewRequest("POST", "/insights", nil)
		w := httptest.NewRecorder()

		service.Generate(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty ledger short-circuits without calling the model", func(t *testing.T) {
		viper.Set("gemini.api_key", "test-key")
		defer viper.Set("gemini.api_key", "")

		service := NewInsightsService(memory.New(), logger.New("error"))

		r := authedRequest("POST", "/insights", nil)
		w := httptest.NewRecorder()

		service.Generate(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No entries yet")
	})
}

func TestBuildPrompt(t *testing.T) {
	txs := []models.Transaction{
		{Date: "2026-03-01", Type: models.TypeIncome, Amount: 1000, Description: "salary"},
		{Date: "2026-03-09", Type: models.TypeExpense, Amount: 400, Description: "groceries"},
	}

	prompt := buildPrompt(txs)

	assert.Contains(t, prompt, "salary")
	assert.Contains(t, prompt, "groceries")
	// Most recent entry first.
	assert.Less(t, strings.Index(prompt, "groceries"), strings.Index(prompt, "salary"))
}
