package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/service"
)

// SettingsService defines the service methods needed by settings
// handlers. Satisfied by *service.POS; narrow interface for
// testability.
type SettingsService interface {
	Settings(ctx context.Context) (model.StoreSettings, error)
	UpdateSettings(ctx context.Context, s model.StoreSettings) (model.StoreSettings, error)
}

// SettingsHandler handles the singleton store configuration document.
type SettingsHandler struct {
	svc SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers the read endpoint on the given Chi router.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
}

// RegisterManagerRoutes registers the write endpoint, mounted behind
// the manager role check.
func (h *SettingsHandler) RegisterManagerRoutes(r chi.Router) {
	r.Put("/settings", h.Update)
}

// --- Request / Response types ---

type settingsRequest struct {
	Name              string `json:"name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Currency          string `json:"currency"`
	GSTRate           string `json:"gst_rate"`
	ServiceChargeRate string `json:"service_charge_rate"`
}

type settingsResponse struct {
	Name              string `json:"name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Currency          string `json:"currency"`
	GSTRate           string `json:"gst_rate"`
	ServiceChargeRate string `json:"service_charge_rate"`
}

func toSettingsResponse(s model.StoreSettings) settingsResponse {
	return settingsResponse{
		Name:              s.Name,
		Address:           s.Address,
		Phone:             s.Phone,
		Currency:          s.Currency,
		GSTRate:           s.GSTRate.String(),
		ServiceChargeRate: s.ServiceChargeRate.String(),
	}
}

// --- Handlers ---

// Get returns the store configuration.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		logrus.WithError(err).Error("get settings")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// Update replaces the store configuration. New rates apply from the
// next order recompute; existing bills keep their computed amounts.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gst, err := decimal.NewFromString(req.GSTRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gst_rate")
		return
	}
	svcRate, err := decimal.NewFromString(req.ServiceChargeRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service_charge_rate")
		return
	}

	saved, err := h.svc.UpdateSettings(r.Context(), model.StoreSettings{
		Name:              req.Name,
		Address:           req.Address,
		Phone:             req.Phone,
		Currency:          req.Currency,
		GSTRate:           gst,
		ServiceChargeRate: svcRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingName):
			writeError(w, http.StatusBadRequest, "name is required")
		case errors.Is(err, service.ErrInvalidRate):
			writeError(w, http.StatusBadRequest, "rates must be between 0 and 100")
		default:
			logrus.WithError(err).Error("update settings")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(saved))
}
