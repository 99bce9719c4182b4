package services

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/daftari/backend/internal/storages"
)

type RateService struct {
	store     storages.Storage
	validator *validator.Validate
	logger    *logrus.Logger
}

// RateRequest updates the global USD exchange rate.
type RateRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

// RateResponse carries the current global USD exchange rate.
type RateResponse struct {
	Rate float64 `json:"rate"`
}

func NewRateService(store storages.Storage, log *logrus.Logger) *RateService {
	return &RateService{store: store, validator: validator.New(), logger: log}
}

// GetRate returns the global USD rate
// @Summary Current USD rate
// @Tags rate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RateResponse
// @Router /rate [get]
func (rs *RateService) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := rs.store.GetGlobalRate(r.Context())
	if err != nil {
		rs.logger.WithError(err).Error("rate lookup failed")
		SendErrorResponse(w, "Failed to load rate", http.StatusInternalServerError, nil)
		return
	}
	SendJSON(w, http.StatusOK, RateResponse{Rate: rate})
}

// SetRate replaces the global USD rate
// @Summary Update USD rate
// @Description Sets the global USD rate used for new USD entries and display conversion. Stored entries keep the rate they were created with.
// @Tags rate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RateRequest true "New rate"
// @Success 200 {object} RateResponse
// @Failure 400 {object} ErrorResponse
// @Router /rate [put]
func (rs *RateService) SetRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := rs.validator.Struct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Changing the rate never re-prices stored amounts; USD entries carry
	// their own snapshot.
	if err := rs.store.SetGlobalRate(r.Context(), req.Rate); err != nil {
		rs.logger.WithError(err).Error("rate update failed")
		SendErrorResponse(w, "Failed to update rate", http.StatusInternalServerError, nil)
		return
	}

	rs.logger.WithField("rate", req.Rate).Info("global usd rate updated")
	SendJSON(w, http.StatusOK, RateResponse{Rate: req.Rate})
}
