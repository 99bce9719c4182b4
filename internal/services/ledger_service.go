package services

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daftari/backend/internal/currency"
	"github.com/daftari/backend/internal/ledger"
	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages"
)

type LedgerService struct {
	store  storages.Storage
	logger *logrus.Logger
}

// DayView is one ledger day with its surrounding balances.
// @Description Daily ledger view
type DayView struct {
	Date            string               `json:"date"`
	StartingBalance float64              `json:"startingBalance"`
	Income          float64              `json:"income"`
	Expense         float64              `json:"expense"`
	Net             float64              `json:"net"`
	EndingBalance   float64              `json:"endingBalance"`
	Transactions    []models.Transaction `json:"transactions"`
	Display         *DayDisplay          `json:"display,omitempty"`
}

// DayDisplay carries the day's balances converted into a requested currency.
type DayDisplay struct {
	Currency        models.Currency `json:"currency"`
	StartingBalance string          `json:"startingBalance"`
	Net             string          `json:"net"`
	EndingBalance   string          `json:"endingBalance"`
}

// MonthView is the per-day breakdown of one calendar month.
// @Description Monthly history view
type MonthView struct {
	Month string              `json:"month"`
	Days  []ledger.DaySummary `json:"days"`
}

func NewLedgerService(store storages.Storage, log *logrus.Logger) *LedgerService {
	return &LedgerService{store: store, logger: log}
}

// GetDay returns the ledger for one day
// @Summary Daily ledger
// @Description Starting balance, same-day totals and entries for a ledger day
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param date query string false "Ledger day (YYYY-MM-DD), defaults to today"
// @Param display query string false "Currency to render balances in (OLD_SYP, NEW_SYP, USD)"
// @Success 200 {object} DayView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /ledger/day [get]
func (ls *LedgerService) GetDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		SendErrorResponse(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest, nil)
		return
	}

	txs, err := ls.store.ListTransactions(r.Context(), userID)
	if err != nil {
		ls.logger.WithError(err).Error("transaction listing failed")
		SendErrorResponse(w, "Failed to load ledger", http.StatusInternalServerError, nil)
		return
	}

	starting := ledger.StartingBalance(txs, userID, date)
	totals := ledger.DailyTotals(txs, date)

	view := DayView{
		Date:            date,
		StartingBalance: starting,
		Income:          totals.Income,
		Expense:         totals.Expense,
		Net:             totals.Net(),
		EndingBalance:   starting + totals.Net(),
		Transactions:    ledger.FilterDay(txs, date),
	}

	if cur := models.Currency(r.URL.Query().Get("display")); cur != "" {
		if !currency.Valid(cur) {
			SendErrorResponse(w, "Unknown display currency", http.StatusBadRequest, nil)
			return
		}
		rate, err := ls.store.GetGlobalRate(r.Context())
		if err != nil {
			ls.logger.WithError(err).Error("rate lookup failed")
			SendErrorResponse(w, "Failed to load ledger", http.StatusInternalServerError, nil)
			return
		}

		display := &DayDisplay{Currency: cur}
		if display.StartingBalance, err = currency.Format(view.StartingBalance, cur, rate); err != nil {
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		display.Net, _ = currency.Format(view.Net, cur, rate)
		display.EndingBalance, _ = currency.Format(view.EndingBalance, cur, rate)
		view.Display = display
	}

	SendJSON(w, http.StatusOK, view)
}

// GetMonth returns the month history
// @Summary Monthly breakdown
// @Description Net and entry count for every active day of a month, most recent first
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param month query string true "Calendar month (YYYY-MM)"
// @Success 200 {object} MonthView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /ledger/month [get]
func (ls *LedgerService) GetMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	month := r.URL.Query().Get("month")
	if _, err := time.Parse("2006-01", month); err != nil {
		SendErrorResponse(w, "Invalid month, want YYYY-MM", http.StatusBadRequest, nil)
		return
	}

	txs, err := ls.store.ListTransactions(r.Context(), userID)
	if err != nil {
		ls.logger.WithError(err).Error("transaction listing failed")
		SendErrorResponse(w, "Failed to load history", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, MonthView{
		Month: month,
		Days:  ledger.MonthlyBreakdown(txs, month),
	})
}
