package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"

	"github.com/daftari/backend/internal/services"
)

type SyncHandler struct {
	service   *services.SyncService
	validator *services.ValidationHelper
}

func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// Export exports the full state as a portable payload
// @Summary Export state
// @Description Returns the full ledger state as a URL-safe payload plus a shareable link. Pass qr=1 for a scannable QR image.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Param qr query string false "Set to 1 to include a base64 QR PNG"
// @Success 200 {object} object{payload=string,link=string}
// @Failure 401 {object} services.ErrorResponse
// @Router /sync/export [get]
func (h *SyncHandler) Export(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Export(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Export failed", http.StatusInternalServerError, nil)
		return
	}

	resp := map[string]any{
		"payload": payload,
		"link":    fmt.Sprintf("%s/sync?payload=%s", viper.GetString("server.base_url"), payload),
	}

	if r.URL.Query().Get("qr") == "1" {
		image, err := h.service.QRCodePNG(payload)
		if err != nil {
			services.SendErrorResponse(w, "QR generation failed", http.StatusInternalServerError, nil)
			return
		}
		resp["qrImage"] = image
	}

	services.SendJSON(w, http.StatusOK, resp)
}

// Import replaces the full state from a payload
// @Summary Import state
// @Description Wholesale replaces the stored state with the decoded payload. A malformed payload is rejected and the stored state is untouched.
// @Tags sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{payload=string} true "Exported payload"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} services.ErrorResponse
// @Router /sync/import [post]
func (h *SyncHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload" validate:"required"`
	}
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := h.service.Import(r.Context(), req.Payload); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Backup downloads the state as a file
// @Summary Download backup
// @Description Downloads the exported payload as a dated text file.
// @Tags sync
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string
// @Router /sync/backup [get]
func (h *SyncHandler) Backup(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Export(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Export failed", http.StatusInternalServerError, nil)
		return
	}

	filename := fmt.Sprintf("daftari-backup-%s.txt", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write([]byte(payload))
}

// CreateShare parks the state behind a one-time code
// @Summary Create share code
// @Description Stores the exported state behind a short-lived one-time code another device can redeem.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{code=string,expiresIn=int}
// @Failure 503 {object} services.ErrorResponse
// @Router /sync/share [post]
func (h *SyncHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.CreateShareCode(r.Context())
	if errors.Is(err, services.ErrSharingUnavailable) {
		services.SendErrorResponse(w, err.Error(), http.StatusServiceUnavailable, nil)
		return
	}
	if err != nil {
		services.SendErrorResponse(w, "Share failed", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]any{
		"code":      code,
		"expiresIn": 600,
	})
}

// RedeemShare imports the state parked behind a code
// @Summary Redeem share code
// @Description Imports the state behind a one-time code. The code is burned on first use.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Param code path string true "Share code"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /sync/share/{code} [post]
func (h *SyncHandler) RedeemShare(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	err := h.service.ResolveShareCode(r.Context(), code)
	switch {
	case errors.Is(err, services.ErrSharingUnavailable):
		services.SendErrorResponse(w, err.Error(), http.StatusServiceUnavailable, nil)
	case errors.Is(err, services.ErrShareCodeNotFound):
		services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case err != nil:
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	default:
		services.SendJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ImportFromLink handles the shareable link target. On success the payload
// parameter is stripped by redirecting to the app root.
func (h *SyncHandler) ImportFromLink(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.service.Import(r.Context(), payload); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
