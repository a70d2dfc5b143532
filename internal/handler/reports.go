package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/analytics"
	"github.com/spicegarden/pos/internal/model"
)

// ReportsService defines the service methods needed by report
// handlers. Satisfied by *service.POS; narrow interface for
// testability.
type ReportsService interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// ReportsHandler computes analytics over the order history on demand.
// Aggregation happens in memory; a single location's history stays
// small enough that precomputed rollups are not worth their staleness.
type ReportsHandler struct {
	svc ReportsService
	now func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportsService) *ReportsHandler {
	return &ReportsHandler{svc: svc, now: time.Now}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/sales", h.Sales)
	r.Get("/reports/payment-modes", h.PaymentModes)
	r.Get("/reports/delivery-methods", h.DeliveryMethods)
	r.Get("/reports/transactions", h.Transactions)
}

// --- Response types ---

type salesBucketResponse struct {
	Key    string `json:"key"`
	Sales  string `json:"sales"`
	Orders int    `json:"orders"`
}

type distributionResponse struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type transactionsResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// --- Handlers ---

// Sales returns the sales series for ?range=daily|weekly|monthly.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	rng := analytics.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = analytics.RangeDaily
	}
	if !rng.Valid() {
		writeError(w, http.StatusBadRequest, "range must be daily, weekly or monthly")
		return
	}

	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("sales report")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	buckets := analytics.SalesSeries(orders, rng, h.now())
	resp := make([]salesBucketResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = salesBucketResponse{
			Key:    b.Key,
			Sales:  b.Sales.StringFixed(2),
			Orders: b.Orders,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PaymentModes returns how completed orders split across payment modes.
func (h *ReportsHandler) PaymentModes(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("payment modes report")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toDistributionResponse(analytics.PaymentModes(orders)))
}

// DeliveryMethods returns how completed orders split across delivery
// methods.
func (h *ReportsHandler) DeliveryMethods(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("delivery methods report")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toDistributionResponse(analytics.DeliveryMethods(orders)))
}

// Transactions returns the searchable ledger of completed orders,
// filtered by ?q= over customer name, phone and order id.
func (h *ReportsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("transactions report")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	result := analytics.SearchLedger(orders, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, transactionsResponse{
		Orders: toOrderListResponse(result.Orders),
		Total:  result.Total,
	})
}

func toDistributionResponse(entries []analytics.DistributionEntry) []distributionResponse {
	resp := make([]distributionResponse, len(entries))
	for i, e := range entries {
		resp[i] = distributionResponse{Name: e.Name, Count: e.Count, Percent: e.Percent}
	}
	return resp
}
