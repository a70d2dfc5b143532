package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Shared response types ---
//
// Money fields render as 2-decimal strings; the stored decimals stay
// unrounded.

type lineItemResponse struct {
	ID         string `json:"id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

type orderResponse struct {
	ID                  string             `json:"id"`
	TableID             string             `json:"table_id"`
	Items               []lineItemResponse `json:"items"`
	Status              string             `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	Subtotal            string             `json:"subtotal"`
	TaxAmount           string             `json:"tax_amount"`
	ServiceChargeAmount string             `json:"service_charge_amount"`
	DiscountAmount      string             `json:"discount_amount"`
	Total               string             `json:"total"`
	OrderType           string             `json:"order_type"`
	CustomerName        string             `json:"customer_name,omitempty"`
	CustomerPhone       string             `json:"customer_phone,omitempty"`
	PaymentMode         string             `json:"payment_mode,omitempty"`
	DeliveryMethod      string             `json:"delivery_method,omitempty"`
}

func toOrderResponse(o model.Order) orderResponse {
	items := make([]lineItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = lineItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price.StringFixed(2),
			Quantity:   it.Quantity,
			Note:       it.Note,
		}
	}
	return orderResponse{
		ID:                  o.ID,
		TableID:             o.TableID,
		Items:               items,
		Status:              o.Status,
		CreatedAt:           o.CreatedAt,
		CompletedAt:         o.CompletedAt,
		Subtotal:            o.Subtotal.StringFixed(2),
		TaxAmount:           o.TaxAmount.StringFixed(2),
		ServiceChargeAmount: o.ServiceChargeAmount.StringFixed(2),
		DiscountAmount:      o.DiscountAmount.StringFixed(2),
		Total:               o.Total.StringFixed(2),
		OrderType:           o.OrderType,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		PaymentMode:         o.PaymentMode,
		DeliveryMethod:      o.DeliveryMethod,
	}
}

func toOrderListResponse(orders []model.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return resp
}
