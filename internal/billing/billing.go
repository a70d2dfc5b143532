// Package billing derives an order's totals from its line items and
// the configured rates. ComputeTotals is pure and must run after every
// structural change to the item list; totals are never memoized across
// mutations or a displayed total could diverge from the persisted one.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal            decimal.Decimal
	TaxAmount           decimal.Decimal
	ServiceChargeAmount decimal.Decimal
	DiscountAmount      decimal.Decimal
	Total               decimal.Decimal
}

// ComputeTotals sums price*quantity over items with quantity > 0 and
// applies the GST and service charge percentages. DiscountAmount is
// reserved and always zero; no discount input path exists. Values are
// kept at full precision, rounding to 2 decimals is presentation-only.
func ComputeTotals(items []model.OrderLineItem, gstRate, serviceChargeRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	tax := subtotal.Mul(gstRate).Div(oneHundred)
	serviceCharge := subtotal.Mul(serviceChargeRate).Div(oneHundred)

	return Totals{
		Subtotal:            subtotal,
		TaxAmount:           tax,
		ServiceChargeAmount: serviceCharge,
		DiscountAmount:      decimal.Zero,
		Total:               subtotal.Add(tax).Add(serviceCharge),
	}
}

// Apply writes the breakdown onto an order.
func (t Totals) Apply(o *model.Order) {
	o.Subtotal = t.Subtotal
	o.TaxAmount = t.TaxAmount
	o.ServiceChargeAmount = t.ServiceChargeAmount
	o.DiscountAmount = t.DiscountAmount
	o.Total = t.Total
}
