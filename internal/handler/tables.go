package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/model"
)

// TableLister defines the service methods needed by table handlers.
// Satisfied by *service.POS; narrow interface for testability.
type TableLister interface {
	ListTables(ctx context.Context) ([]model.Table, error)
}

// TablesHandler handles table endpoints. Table mutations happen only
// through the order lifecycle, so the floor plan is read-only here.
type TablesHandler struct {
	svc TableLister
}

// NewTablesHandler creates a new TablesHandler.
func NewTablesHandler(svc TableLister) *TablesHandler {
	return &TablesHandler{svc: svc}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TablesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.List)
}

// List returns every table with its live status.
func (h *TablesHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.ListTables(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list tables")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tables)
}
