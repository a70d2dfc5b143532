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
)

// MenuService defines the service methods needed by menu handlers.
// Satisfied by *service.POS; narrow interface for testability.
type MenuService interface {
	ListMenu(ctx context.Context) ([]model.MenuItem, error)
	SaveMenuItem(ctx context.Context, mi model.MenuItem) (model.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
}

// MenuHandler handles menu catalog CRUD endpoints.
type MenuHandler struct {
	svc MenuService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers read endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
}

// RegisterManagerRoutes registers the write endpoints, mounted behind
// the manager role check.
func (h *MenuHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/menu", h.Create)
	r.Put("/menu/{id}", h.Update)
	r.Delete("/menu/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	CostPrice   string `json:"cost_price"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type menuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	CostPrice   string `json:"cost_price"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

func toMenuItemResponse(mi model.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          mi.ID,
		Name:        mi.Name,
		Price:       mi.Price.StringFixed(2),
		CostPrice:   mi.CostPrice.StringFixed(2),
		Category:    mi.Category,
		Description: mi.Description,
	}
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegativePrice
	}
	return d, nil
}

func (h *MenuHandler) parseRequest(w http.ResponseWriter, r *http.Request) (model.MenuItem, bool) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return model.MenuItem{}, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return model.MenuItem{}, false
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return model.MenuItem{}, false
	}
	if req.Price == "" {
		writeError(w, http.StatusBadRequest, "price is required")
		return model.MenuItem{}, false
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeError(w, http.StatusBadRequest, "price must be >= 0")
		} else {
			writeError(w, http.StatusBadRequest, "invalid price")
		}
		return model.MenuItem{}, false
	}

	costPrice := decimal.Zero
	if req.CostPrice != "" {
		costPrice, err = parsePrice(req.CostPrice)
		if err != nil {
			if errors.Is(err, errNegativePrice) {
				writeError(w, http.StatusBadRequest, "cost_price must be >= 0")
			} else {
				writeError(w, http.StatusBadRequest, "invalid cost_price")
			}
			return model.MenuItem{}, false
		}
	}

	return model.MenuItem{
		Name:        req.Name,
		Price:       price,
		CostPrice:   costPrice,
		Category:    req.Category,
		Description: req.Description,
	}, true
}

// --- Handlers ---

// List returns the full menu, sorted by category then name.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListMenu(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list menu")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, mi := range items {
		resp[i] = toMenuItemResponse(mi)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	mi, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	saved, err := h.svc.SaveMenuItem(r.Context(), mi)
	if err != nil {
		logrus.WithError(err).Error("create menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(saved))
}

// Update writes a menu item at the given id. Orders already holding
// the item keep their snapshotted name and price.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	mi, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	mi.ID = chi.URLParam(r, "id")

	saved, err := h.svc.SaveMenuItem(r.Context(), mi)
	if err != nil {
		logrus.WithError(err).Error("update menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(saved))
}

// Delete removes a menu item from the catalog. Deleting an absent id
// is a no-op, matching the document store semantics.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMenuItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		logrus.WithError(err).Error("delete menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
