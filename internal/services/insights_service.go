package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages"
)

const insightsEntryLimit = 50

// InsightsService asks a language model for a short spending summary.
type InsightsService struct {
	store  storages.Storage
	client *http.Client
	logger *logrus.Logger
}

// InsightsResponse carries the generated summary text.
type InsightsResponse struct {
	Insights string `json:"insights"`
}

func NewInsightsService(store storages.Storage, log *logrus.Logger) *InsightsService {
	return &InsightsService{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: log,
	}
}

// Generate produces spending insights
// @Summary Spending insights
// @Description Summarizes recent ledger activity into short natural-language insights.
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} InsightsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /insights [post]
func (is *InsightsService) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	apiKey := viper.GetString("gemini.api_key")
	if apiKey == "" {
		SendErrorResponse(w, "Insights are not configured", http.StatusServiceUnavailable, nil)
		return
	}

	txs, err := is.store.ListTransactions(r.Context(), userID)
	if err != nil {
		is.logger.WithError(err).Error("transaction listing failed")
		SendErrorResponse(w, "Failed to load entries", http.StatusInternalServerError, nil)
		return
	}
	if len(txs) == 0 {
		SendJSON(w, http.StatusOK, InsightsResponse{Insights: "No entries yet. Add some income or expenses first."})
		return
	}

	text, err := is.generate(r.Context(), apiKey, buildPrompt(txs))
	if err != nil {
		is.logger.WithError(err).Error("insights generation failed")
		SendErrorResponse(w, "Insights generation failed", http.StatusBadGateway, nil)
		return
	}

	SendJSON(w, http.StatusOK, InsightsResponse{Insights: text})
}

func (is *InsightsService) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	model := viper.GetString("gemini.model")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := is.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(txs []models.Transaction) string {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if len(sorted) > insightsEntryLimit {
		sorted = sorted[:insightsEntryLimit]
	}

	var sb strings.Builder
	sb.WriteString("You are a personal finance assistant. Amounts are in new Syrian pounds. ")
	sb.WriteString("Give 2-3 short, practical observations about this ledger:\n")
	for _, t := range sorted {
		fmt.Fprintf(&sb, "- %s %s %.0f: %s\n", t.Date, t.Type, t.Amount, t.Description)
	}
	return sb.String()
}
