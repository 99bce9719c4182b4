package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/daftari/backend/internal/currency"
	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages"
)

type TransactionService struct {
	store     storages.Storage
	validator *ValidationHelper
	logger    *logrus.Logger
}

// TransactionRequest carries what the user typed. The canonical amount is
// derived server-side and never accepted from the client.
// @Description Transaction create/update payload
type TransactionRequest struct {
	OriginalAmount float64                `json:"originalAmount" example:"50"`
	InputCurrency  models.Currency        `json:"inputCurrency" validate:"required,oneof=OLD_SYP NEW_SYP USD" example:"USD"`
	UsdRate        *float64               `json:"usdRate,omitempty" example:"15000"`
	Description    string                 `json:"description" validate:"required,max=200" example:"groceries"`
	Notes          string                 `json:"notes,omitempty" validate:"max=500"`
	Type           models.TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
	Date           string                 `json:"date" validate:"required,datetime=2006-01-02" example:"2026-03-05"`
}

func NewTransactionService(store storages.Storage, log *logrus.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		validator: NewValidationHelper(),
		logger:    log,
	}
}

// ListTransactions returns the caller's entries
// @Summary List transactions
// @Description List the authenticated user's transactions, optionally for one ledger day
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param date query string false "Ledger day filter (YYYY-MM-DD)"
// @Success 200 {array} models.Transaction
// @Failure 401 {object} ErrorResponse
// @Router /transactions [get]
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	txs, err := ts.store.ListTransactions(r.Context(), userID)
	if err != nil {
		ts.logger.WithError(err).Error("transaction listing failed")
		SendErrorResponse(w, "Failed to list transactions", http.StatusInternalServerError, nil)
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		filtered := txs[:0]
		for _, t := range txs {
			if t.Date == date {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}

	SendJSON(w, http.StatusOK, txs)
}

// CreateTransaction records a new ledger entry
// @Summary Create a transaction
// @Description Normalize the entered amount to new SYP and persist the entry
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transaction body TransactionRequest true "Transaction data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /transactions [post]
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req TransactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	entry, err := ts.buildTransaction(r, userID, req)
	if err != nil {
		SendBadRequest(w, err)
		return
	}
	entry.ID = "tx_" + uuid.NewString()
	entry.CreatedAt = time.Now().UnixMilli()

	if err := ts.store.UpsertTransaction(r.Context(), entry); err != nil {
		ts.logger.WithError(err).Error("transaction write failed")
		SendErrorResponse(w, "Failed to save transaction", http.StatusInternalServerError, nil)
		return
	}

	ts.logger.WithFields(logrus.Fields{
		"tx_id":  entry.ID,
		"user":   userID,
		"amount": entry.Amount,
		"type":   entry.Type,
	}).Info("transaction recorded")
	SendJSON(w, http.StatusCreated, entry)
}

// UpdateTransaction replaces an existing entry
// @Summary Update a transaction
// @Description Replace an entry's fields, re-normalizing from the submitted original values
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param txId path string true "Transaction id"
// @Param transaction body TransactionRequest true "Transaction data"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{txId} [put]
func (ts *TransactionService) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	txID := chi.URLParam(r, "txId")

	existing, err := ts.findOwned(r, userID, txID)
	if err != nil {
		SendErrorResponse(w, "Failed to load transaction", http.StatusInternalServerError, nil)
		return
	}
	if existing == nil {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}

	var req TransactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	entry, err := ts.buildTransaction(r, userID, req)
	if err != nil {
		SendBadRequest(w, err)
		return
	}
	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt

	if err := ts.store.UpsertTransaction(r.Context(), entry); err != nil {
		ts.logger.WithError(err).Error("transaction write failed")
		SendErrorResponse(w, "Failed to save transaction", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, entry)
}

// DeleteTransaction removes an entry
// @Summary Delete a transaction
// @Description Hard-delete an entry; deleting an unknown id succeeds
// @Tags transactions
// @Security BearerAuth
// @Param txId path string true "Transaction id"
// @Success 204 "Deleted"
// @Failure 401 {object} ErrorResponse
// @Router /transactions/{txId} [delete]
func (ts *TransactionService) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	txID := chi.URLParam(r, "txId")

	// Idempotent: an entry that is already gone (or was never ours) still
	// yields 204.
	existing, err := ts.findOwned(r, userID, txID)
	if err != nil {
		SendErrorResponse(w, "Failed to load transaction", http.StatusInternalServerError, nil)
		return
	}
	if existing != nil {
		if err := ts.store.DeleteTransaction(r.Context(), txID); err != nil {
			ts.logger.WithError(err).Error("transaction delete failed")
			SendErrorResponse(w, "Failed to delete transaction", http.StatusInternalServerError, nil)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// buildTransaction validates the request and derives the canonical amount.
// For USD entries the per-entry rate wins; the global rate is only the
// fallback at creation time and is snapshotted onto the entry so later rate
// edits never re-price it.
func (ts *TransactionService) buildTransaction(r *http.Request, userID string, req TransactionRequest) (models.Transaction, error) {
	var entry models.Transaction

	if err := ts.validator.ValidateStruct(&req); err != nil {
		return entry, err
	}

	var rate float64
	var rateRef *float64
	if req.InputCurrency == models.CurrencyUSD {
		if req.UsdRate != nil {
			rate = *req.UsdRate
		} else {
			current, err := ts.store.GetGlobalRate(r.Context())
			if err != nil {
				return entry, errors.New("failed to resolve usd rate")
			}
			rate = current
		}
		rateRef = &rate
	}

	amount, err := currency.Normalize(req.OriginalAmount, req.InputCurrency, rate)
	if err != nil {
		return entry, err
	}

	return models.Transaction{
		UserID:         userID,
		Amount:         amount,
		OriginalAmount: req.OriginalAmount,
		InputCurrency:  req.InputCurrency,
		UsdRate:        rateRef,
		Description:    req.Description,
		Notes:          req.Notes,
		Type:           req.Type,
		Date:           req.Date,
	}, nil
}

func (ts *TransactionService) findOwned(r *http.Request, userID, txID string) (*models.Transaction, error) {
	txs, err := ts.store.ListTransactions(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	for _, t := range txs {
		if t.ID == txID {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}
