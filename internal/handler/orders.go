package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/order"
	"github.com/spicegarden/pos/internal/service"
)

// OrderService defines the service methods needed by order handlers.
// Satisfied by *service.POS; narrow interface for testability.
type OrderService interface {
	AddItemToTable(ctx context.Context, tableID, menuItemID string) (model.Order, error)
	ChangeQuantity(ctx context.Context, orderID, lineItemID string, delta int) (model.Order, error)
	SetItemNote(ctx context.Context, orderID, lineItemID, note string) (model.Order, error)
	SetOrderType(ctx context.Context, orderID, orderType string) (model.Order, error)
	SetCustomer(ctx context.Context, orderID, name, phone string) (model.Order, error)
	CompleteOrder(ctx context.Context, orderID, paymentMode, deliveryMethod string) (model.Order, error)
	CancelOrder(ctx context.Context, orderID string) (model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
}

// OrdersHandler handles the order lifecycle endpoints.
type OrdersHandler struct {
	svc OrderService
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(svc OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrdersHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tables/{tableID}/items", h.AddItem)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/items/{itemID}", h.ChangeQuantity)
	r.Patch("/orders/{id}/items/{itemID}/note", h.SetNote)
	r.Patch("/orders/{id}/type", h.SetType)
	r.Patch("/orders/{id}/customer", h.SetCustomer)
	r.Post("/orders/{id}/complete", h.Complete)
	r.Post("/orders/{id}/cancel", h.Cancel)
}

// --- Request types ---

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

type setNoteRequest struct {
	Note string `json:"note"`
}

type setTypeRequest struct {
	OrderType string `json:"order_type"`
}

type setCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type completeRequest struct {
	PaymentMode    string `json:"payment_mode"`
	DeliveryMethod string `json:"delivery_method"`
}

// --- Helpers ---

// writeOrderError maps domain errors onto HTTP statuses; anything
// unrecognized is a 500.
func writeOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "table not found")
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrMenuItemNotFound):
		writeError(w, http.StatusNotFound, "menu item not found")
	case errors.Is(err, order.ErrNotActive):
		writeError(w, http.StatusConflict, "order is not active")
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, "order has no items")
	case errors.Is(err, order.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "line item not found")
	case errors.Is(err, order.ErrInvalidOrderType):
		writeError(w, http.StatusBadRequest, "invalid order type")
	case errors.Is(err, order.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, "invalid payment mode")
	case errors.Is(err, order.ErrInvalidDelivery):
		writeError(w, http.StatusBadRequest, "invalid delivery method")
	default:
		logrus.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// --- Handlers ---

// AddItem adds one unit of a menu item to the table's active order,
// starting the order if the table is free.
func (h *OrdersHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MenuItemID == "" {
		writeError(w, http.StatusBadRequest, "menu_item_id is required")
		return
	}

	o, err := h.svc.AddItemToTable(r.Context(), tableID, req.MenuItemID)
	if err != nil {
		writeOrderError(w, "add item", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// List returns all orders, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

// Get returns a single order by ID.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ChangeQuantity adjusts a line item's quantity by a signed delta.
// Reaching zero removes the line item.
func (h *OrdersHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	o, err := h.svc.ChangeQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.Delta)
	if err != nil {
		writeOrderError(w, "change quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// SetNote updates a line item's kitchen note.
func (h *OrdersHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	var req setNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.svc.SetItemNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.Note)
	if err != nil {
		writeOrderError(w, "set note", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// SetType switches the order between eat-in and takeaway.
func (h *OrdersHandler) SetType(w http.ResponseWriter, r *http.Request) {
	var req setTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.svc.SetOrderType(r.Context(), chi.URLParam(r, "id"), req.OrderType)
	if err != nil {
		writeOrderError(w, "set order type", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// SetCustomer attaches a customer name and phone to the order.
func (h *OrdersHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req setCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.svc.SetCustomer(r.Context(), chi.URLParam(r, "id"), req.Name, req.Phone)
	if err != nil {
		writeOrderError(w, "set customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Complete settles an order and releases its table.
func (h *OrdersHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.svc.CompleteOrder(r.Context(), chi.URLParam(r, "id"), req.PaymentMode, req.DeliveryMethod)
	if err != nil {
		writeOrderError(w, "complete order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Cancel voids an order and releases its table.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
