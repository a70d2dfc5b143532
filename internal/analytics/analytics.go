// Package analytics aggregates the historical order set into report
// views. It is a pure read side: input orders are never mutated, and
// malformed records are skipped or defaulted instead of aborting the
// whole report.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
)

// Range selects the time-bucketing granularity.
type Range string

const (
	RangeDaily   Range = "daily"
	RangeWeekly  Range = "weekly"
	RangeMonthly Range = "monthly"
)

// Valid reports whether r is a known range.
func (r Range) Valid() bool {
	switch r {
	case RangeDaily, RangeWeekly, RangeMonthly:
		return true
	}
	return false
}

// Bucket is one point of the sales series.
type Bucket struct {
	// Key is the ISO date for daily/weekly ranges, year-month for
	// monthly. Buckets are emitted sorted by Key ascending.
	Key    string
	Sales  decimal.Decimal
	Orders int
}

// DistributionEntry is one slice of a categorical tally.
type DistributionEntry struct {
	Name    string
	Count   int
	Percent float64
}

// LedgerResult is a page of the searchable transaction ledger.
type LedgerResult struct {
	// Orders holds at most ledgerCap rows, most recent first.
	Orders []model.Order
	// Total is the true match count before capping.
	Total int
}

const ledgerCap = 50

// completedOnly filters to completed orders carrying a completedAt.
// Orders missing completedAt should not occur given the lifecycle,
// but the aggregator must not choke on them.
func completedOnly(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == enum.OrderStatusCompleted && o.CompletedAt != nil {
			out = append(out, o)
		}
	}
	return out
}

// SalesSeries buckets completed orders by completedAt. The daily
// range covers the trailing day and the weekly range the trailing 30
// days, both bucketed by ISO date; weekly deliberately does not use
// calendar weeks. Monthly covers everything, bucketed by year-month.
func SalesSeries(orders []model.Order, r Range, now time.Time) []Bucket {
	grouped := make(map[string]*Bucket)

	for _, o := range completedOnly(orders) {
		ct := *o.CompletedAt
		days := int(math.Ceil(now.Sub(ct).Abs().Hours() / 24))

		var key string
		switch r {
		case RangeDaily:
			if days > 1 {
				continue
			}
			key = ct.UTC().Format("2006-01-02")
		case RangeWeekly:
			if days > 30 {
				continue
			}
			key = ct.UTC().Format("2006-01-02")
		case RangeMonthly:
			key = ct.UTC().Format("2006-01")
		default:
			continue
		}

		b, ok := grouped[key]
		if !ok {
			b = &Bucket{Key: key, Sales: decimal.Zero}
			grouped[key] = b
		}
		b.Sales = b.Sales.Add(o.Total)
		b.Orders++
	}

	out := make([]Bucket, 0, len(grouped))
	for _, b := range grouped {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// PaymentModes tallies completed orders by payment mode. Unset or
// unrecognized modes count as Cash, matching how the floor actually
// settles unmarked bills.
func PaymentModes(orders []model.Order) []DistributionEntry {
	completed := completedOnly(orders)
	counts := map[string]int{
		enum.PaymentModeCash: 0,
		enum.PaymentModeCard: 0,
		enum.PaymentModeUPI:  0,
	}
	for _, o := range completed {
		if _, known := counts[o.PaymentMode]; known {
			counts[o.PaymentMode]++
		} else {
			counts[enum.PaymentModeCash]++
		}
	}
	return distribution(counts, len(completed),
		enum.PaymentModeCash, enum.PaymentModeCard, enum.PaymentModeUPI)
}

// DeliveryMethods tallies completed orders by bill delivery method,
// defaulting unset or unrecognized values to None.
func DeliveryMethods(orders []model.Order) []DistributionEntry {
	completed := completedOnly(orders)
	counts := map[string]int{
		enum.DeliveryMethodWhatsApp: 0,
		enum.DeliveryMethodPrinted:  0,
		enum.DeliveryMethodNone:     0,
	}
	for _, o := range completed {
		if _, known := counts[o.DeliveryMethod]; known {
			counts[o.DeliveryMethod]++
		} else {
			counts[enum.DeliveryMethodNone]++
		}
	}
	return distribution(counts, len(completed),
		enum.DeliveryMethodWhatsApp, enum.DeliveryMethodPrinted, enum.DeliveryMethodNone)
}

// distribution builds entries in a fixed display order. An empty
// completed set uses denominator 1 so percentages come out 0, not NaN.
func distribution(counts map[string]int, total int, order ...string) []DistributionEntry {
	denom := total
	if denom == 0 {
		denom = 1
	}
	out := make([]DistributionEntry, 0, len(order))
	for _, name := range order {
		c := counts[name]
		out = append(out, DistributionEntry{
			Name:    name,
			Count:   c,
			Percent: float64(c) / float64(denom) * 100,
		})
	}
	return out
}

// SearchLedger filters completed orders by a case-insensitive
// substring of customer name, customer phone or order id, most recent
// first. An empty query matches everything. The returned page is
// capped at 50 rows; Total reports the real match count.
func SearchLedger(orders []model.Order, query string) LedgerResult {
	q := strings.ToLower(query)

	matches := make([]model.Order, 0)
	for _, o := range completedOnly(orders) {
		if q == "" ||
			strings.Contains(strings.ToLower(o.CustomerName), q) ||
			strings.Contains(strings.ToLower(o.CustomerPhone), q) ||
			strings.Contains(strings.ToLower(o.ID), q) {
			matches = append(matches, o)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CompletedAt.After(*matches[j].CompletedAt)
	})

	total := len(matches)
	if len(matches) > ledgerCap {
		matches = matches[:ledgerCap]
	}
	return LedgerResult{Orders: matches, Total: total}
}
