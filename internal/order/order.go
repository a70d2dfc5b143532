// Package order owns an order's item list and status transitions.
// Every structural mutation recomputes totals through the billing
// engine, so the stored monetary fields never drift from the items.
package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/billing"
	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
)

// Errors returned by order operations.
var (
	ErrNotActive        = errors.New("order is not active")
	ErrEmptyItems       = errors.New("order has no items")
	ErrItemNotFound     = errors.New("line item not found")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrInvalidPayment   = errors.New("invalid payment mode")
	ErrInvalidDelivery  = errors.New("invalid delivery method")
)

// Rates are the billing inputs read from store settings on every
// recompute.
type Rates struct {
	GST           decimal.Decimal
	ServiceCharge decimal.Decimal
}

// RatesFrom extracts the billing rates from the settings document.
func RatesFrom(s model.StoreSettings) Rates {
	return Rates{GST: s.GSTRate, ServiceCharge: s.ServiceChargeRate}
}

// TableTransition is the table mutation an order transition requires.
// Order status drives table status in exactly one place (here); call
// sites apply it instead of re-deriving occupancy by convention.
type TableTransition struct {
	TableID string
	// Occupy true binds the table to OrderID; false releases it.
	Occupy  bool
	OrderID string
}

// New creates an empty active order for a table. The caller is
// expected to occupy the table with the returned transition.
func New(tableID string, now time.Time) (*model.Order, TableTransition) {
	o := &model.Order{
		ID:        uuid.NewString(),
		TableID:   tableID,
		Items:     []model.OrderLineItem{},
		Status:    enum.OrderStatusActive,
		CreatedAt: now,
		OrderType: enum.OrderTypeEatIn,
	}
	return o, TableTransition{TableID: tableID, Occupy: true, OrderID: o.ID}
}

// AddItem adds one unit of a menu item. If a line item for the same
// menu item already exists its quantity is incremented and its note
// preserved; otherwise a new line item with quantity 1 is appended.
// Name and price are snapshotted from the catalog entry. No-op on a
// non-active order; callers check status before invoking.
func AddItem(o *model.Order, mi model.MenuItem, rates Rates) {
	if o.Status != enum.OrderStatusActive {
		return
	}

	found := false
	for i := range o.Items {
		if o.Items[i].MenuItemID == mi.ID {
			o.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		o.Items = append(o.Items, model.OrderLineItem{
			ID:         uuid.NewString(),
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Price:      mi.Price,
			Quantity:   1,
		})
	}

	recompute(o, rates)
}

// ChangeQuantity adjusts a line item's quantity by delta, clamped at
// zero. A line item reaching zero is removed from the list entirely,
// never retained at quantity 0.
func ChangeQuantity(o *model.Order, lineItemID string, delta int, rates Rates) error {
	if o.Status != enum.OrderStatusActive {
		return ErrNotActive
	}

	idx := -1
	for i := range o.Items {
		if o.Items[i].ID == lineItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}

	q := o.Items[idx].Quantity + delta
	if q < 0 {
		q = 0
	}
	if q == 0 {
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	} else {
		o.Items[idx].Quantity = q
	}

	recompute(o, rates)
	return nil
}

// SetItemNote attaches free-text instructions to a line item. Pure
// metadata edit, no totals recompute.
func SetItemNote(o *model.Order, lineItemID, note string) error {
	if o.Status != enum.OrderStatusActive {
		return ErrNotActive
	}
	for i := range o.Items {
		if o.Items[i].ID == lineItemID {
			o.Items[i].Note = note
			return nil
		}
	}
	return ErrItemNotFound
}

// SetOrderType switches between eat-in and takeaway. Affects printed
// bill labeling only; no recompute.
func SetOrderType(o *model.Order, orderType string) error {
	if o.Status != enum.OrderStatusActive {
		return ErrNotActive
	}
	switch orderType {
	case enum.OrderTypeEatIn, enum.OrderTypeTakeaway:
		o.OrderType = orderType
		return nil
	}
	return ErrInvalidOrderType
}

// SetCustomer records the customer's name and phone for the ledger.
func SetCustomer(o *model.Order, name, phone string) error {
	if o.Status != enum.OrderStatusActive {
		return ErrNotActive
	}
	o.CustomerName = name
	o.CustomerPhone = phone
	return nil
}

// Complete moves an active order to completed, freezing the item
// list, and returns the release the owning table requires. Completing
// an order with no items or from a terminal state is rejected with
// state unchanged.
func Complete(o *model.Order, paymentMode, deliveryMethod string, now time.Time) (TableTransition, error) {
	if o.Status != enum.OrderStatusActive {
		return TableTransition{}, ErrNotActive
	}
	if len(o.Items) == 0 {
		return TableTransition{}, ErrEmptyItems
	}
	switch paymentMode {
	case enum.PaymentModeCash, enum.PaymentModeCard, enum.PaymentModeUPI:
	default:
		return TableTransition{}, ErrInvalidPayment
	}
	switch deliveryMethod {
	case enum.DeliveryMethodWhatsApp, enum.DeliveryMethodPrinted, enum.DeliveryMethodNone:
	default:
		return TableTransition{}, ErrInvalidDelivery
	}

	o.Status = enum.OrderStatusCompleted
	o.CompletedAt = &now
	o.PaymentMode = paymentMode
	o.DeliveryMethod = deliveryMethod
	return TableTransition{TableID: o.TableID, Occupy: false}, nil
}

// Cancel moves an active order to cancelled and returns the table
// release. Cancelled orders are excluded from analytics.
func Cancel(o *model.Order) (TableTransition, error) {
	if o.Status != enum.OrderStatusActive {
		return TableTransition{}, ErrNotActive
	}
	o.Status = enum.OrderStatusCancelled
	return TableTransition{TableID: o.TableID, Occupy: false}, nil
}

func recompute(o *model.Order, rates Rates) {
	billing.ComputeTotals(o.Items, rates.GST, rates.ServiceCharge).Apply(o)
}
