// Package model holds the document types persisted to the store.
// Orders snapshot menu item name and price at add-time, so menu edits
// never change historical bills.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry. Never referenced by value inside an
// order; line items copy name and price instead.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

// OrderLineItem is one row of an order's cart. ID is a per-instance
// id, distinct from MenuItemID: the same menu item appears once with
// quantity N, never as N rows.
type OrderLineItem struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

// Order binds a table to a cart and its computed totals. The four
// monetary fields are always a function of Items and the settings
// rates at last recompute, never hand-edited.
type Order struct {
	ID                  string          `json:"id"`
	TableID             string          `json:"table_id"`
	Items               []OrderLineItem `json:"items"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	ServiceChargeAmount decimal.Decimal `json:"service_charge_amount"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	Total               decimal.Decimal `json:"total"`
	OrderType           string          `json:"order_type"`
	CustomerName        string          `json:"customer_name,omitempty"`
	CustomerPhone       string          `json:"customer_phone,omitempty"`
	PaymentMode         string          `json:"payment_mode,omitempty"`
	DeliveryMethod      string          `json:"delivery_method,omitempty"`
}

// Table is a physical table. Status is derived from its order's
// lifecycle: occupied iff CurrentOrderID points at an active order.
type Table struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	Status         string `json:"status"`
	CurrentOrderID string `json:"current_order_id,omitempty"`
}

// Staff is a staff member account. PasswordHash is bcrypt and never
// leaves the server.
type Staff struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	Status       string    `json:"status"`
}

// StoreSettings is the singleton configuration document. Read by the
// billing engine on every recompute; written only through the
// settings update operation.
type StoreSettings struct {
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone"`
	Currency          string          `json:"currency"`
	GSTRate           decimal.Decimal `json:"gst_rate"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
}
