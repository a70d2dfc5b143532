package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/billing"
	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
)

var testRates = Rates{GST: decimal.NewFromInt(5), ServiceCharge: decimal.NewFromInt(5)}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func menuItem(id, name, price string) model.MenuItem {
	return model.MenuItem{ID: id, Name: name, Price: dec(price), Category: "Starters"}
}

// assertTotalsConsistent checks the central invariant: the stored
// monetary fields match a fresh ComputeTotals over the current items.
func assertTotalsConsistent(t *testing.T, o *model.Order) {
	t.Helper()
	want := billing.ComputeTotals(o.Items, testRates.GST, testRates.ServiceCharge)
	if !o.Subtotal.Equal(want.Subtotal) || !o.TaxAmount.Equal(want.TaxAmount) ||
		!o.ServiceChargeAmount.Equal(want.ServiceChargeAmount) || !o.Total.Equal(want.Total) {
		t.Fatalf("totals inconsistent with items: got %s/%s/%s/%s want %s/%s/%s/%s",
			o.Subtotal, o.TaxAmount, o.ServiceChargeAmount, o.Total,
			want.Subtotal, want.TaxAmount, want.ServiceChargeAmount, want.Total)
	}
}

func TestNew(t *testing.T) {
	now := time.Now()
	o, tr := New("t1", now)

	if o.Status != enum.OrderStatusActive {
		t.Errorf("status = %q, want active", o.Status)
	}
	if len(o.Items) != 0 {
		t.Errorf("new order has %d items, want 0", len(o.Items))
	}
	if o.OrderType != enum.OrderTypeEatIn {
		t.Errorf("order type = %q, want eat-in", o.OrderType)
	}
	if !tr.Occupy || tr.TableID != "t1" || tr.OrderID != o.ID {
		t.Errorf("transition = %+v, want occupy t1 with order id", tr)
	}
}

func TestAddItemMergesSameMenuItem(t *testing.T) {
	o, _ := New("t1", time.Now())
	paneer := menuItem("1", "Paneer Tikka", "240")

	AddItem(o, paneer, testRates)
	AddItem(o, paneer, testRates)

	if len(o.Items) != 1 {
		t.Fatalf("got %d line items, want 1", len(o.Items))
	}
	if o.Items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", o.Items[0].Quantity)
	}
	assertTotalsConsistent(t, o)
}

func TestAddItemPreservesNoteOnIncrement(t *testing.T) {
	o, _ := New("t1", time.Now())
	chai := menuItem("15", "Masala Chai", "30")

	AddItem(o, chai, testRates)
	if err := SetItemNote(o, o.Items[0].ID, "less sugar"); err != nil {
		t.Fatalf("set note: %v", err)
	}
	AddItem(o, chai, testRates)

	if o.Items[0].Note != "less sugar" {
		t.Errorf("note = %q, want preserved", o.Items[0].Note)
	}
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	o, _ := New("t1", time.Now())
	mi := menuItem("5", "Butter Chicken", "350")
	AddItem(o, mi, testRates)

	// A later menu edit must not touch the line item.
	mi.Price = dec("999")
	if !o.Items[0].Price.Equal(dec("350")) {
		t.Errorf("line item price = %s, want snapshotted 350", o.Items[0].Price)
	}
}

func TestAddItemNoOpWhenNotActive(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	if _, err := Complete(o, enum.PaymentModeCash, enum.DeliveryMethodNone, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	AddItem(o, menuItem("2", "Chicken Tikka", "280"), testRates)
	if len(o.Items) != 1 {
		t.Errorf("items after add on completed order = %d, want 1", len(o.Items))
	}
}

func TestChangeQuantity(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	id := o.Items[0].ID

	if err := ChangeQuantity(o, id, 2, testRates); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if o.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", o.Items[0].Quantity)
	}
	assertTotalsConsistent(t, o)
}

func TestChangeQuantityToZeroRemovesItem(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	AddItem(o, menuItem("4", "Samosa (2pcs)", "40"), testRates)
	id := o.Items[0].ID

	if err := ChangeQuantity(o, id, -1, testRates); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if len(o.Items) != 1 {
		t.Fatalf("got %d items, want 1 after removal", len(o.Items))
	}
	if o.Items[0].MenuItemID != "4" {
		t.Errorf("remaining item = %q, want menu item 4", o.Items[0].MenuItemID)
	}
	assertTotalsConsistent(t, o)

	if !o.Subtotal.Equal(dec("40")) {
		t.Errorf("subtotal after removal = %s, want 40", o.Subtotal)
	}
}

func TestChangeQuantityClampsBelowZero(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	id := o.Items[0].ID

	if err := ChangeQuantity(o, id, -5, testRates); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if len(o.Items) != 0 {
		t.Errorf("got %d items, want 0", len(o.Items))
	}
	assertTotalsConsistent(t, o)
}

func TestChangeQuantityUnknownItem(t *testing.T) {
	o, _ := New("t1", time.Now())
	if err := ChangeQuantity(o, "nope", 1, testRates); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestSetOrderType(t *testing.T) {
	o, _ := New("t1", time.Now())
	if err := SetOrderType(o, enum.OrderTypeTakeaway); err != nil {
		t.Fatalf("set order type: %v", err)
	}
	if o.OrderType != enum.OrderTypeTakeaway {
		t.Errorf("order type = %q, want takeaway", o.OrderType)
	}
	if err := SetOrderType(o, "drive-thru"); !errors.Is(err, ErrInvalidOrderType) {
		t.Errorf("err = %v, want ErrInvalidOrderType", err)
	}
}

func TestComplete(t *testing.T) {
	o, _ := New("t3", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	now := time.Now()

	tr, err := Complete(o, enum.PaymentModeUPI, enum.DeliveryMethodWhatsApp, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if o.Status != enum.OrderStatusCompleted {
		t.Errorf("status = %q, want completed", o.Status)
	}
	if o.CompletedAt == nil || !o.CompletedAt.Equal(now) {
		t.Errorf("completedAt = %v, want %v", o.CompletedAt, now)
	}
	if o.PaymentMode != enum.PaymentModeUPI || o.DeliveryMethod != enum.DeliveryMethodWhatsApp {
		t.Errorf("payment/delivery = %q/%q", o.PaymentMode, o.DeliveryMethod)
	}
	if tr.Occupy || tr.TableID != "t3" {
		t.Errorf("transition = %+v, want release of t3", tr)
	}
}

func TestCompleteEmptyOrderRejected(t *testing.T) {
	o, _ := New("t1", time.Now())
	if _, err := Complete(o, enum.PaymentModeCash, enum.DeliveryMethodNone, time.Now()); !errors.Is(err, ErrEmptyItems) {
		t.Errorf("err = %v, want ErrEmptyItems", err)
	}
	if o.Status != enum.OrderStatusActive {
		t.Errorf("status = %q, want unchanged active", o.Status)
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)
	first := time.Now()
	if _, err := Complete(o, enum.PaymentModeCash, enum.DeliveryMethodNone, first); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := Complete(o, enum.PaymentModeCard, enum.DeliveryMethodPrinted, time.Now()); !errors.Is(err, ErrNotActive) {
		t.Errorf("second complete err = %v, want ErrNotActive", err)
	}
	if o.PaymentMode != enum.PaymentModeCash || !o.CompletedAt.Equal(first) {
		t.Error("second complete mutated a terminal order")
	}

	if _, err := Cancel(o); !errors.Is(err, ErrNotActive) {
		t.Errorf("cancel after complete err = %v, want ErrNotActive", err)
	}
}

func TestCancel(t *testing.T) {
	o, _ := New("t2", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)

	tr, err := Cancel(o)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", o.Status)
	}
	if o.CompletedAt != nil {
		t.Error("cancelled order must not carry completedAt")
	}
	if tr.Occupy || tr.TableID != "t2" {
		t.Errorf("transition = %+v, want release of t2", tr)
	}
}

func TestCompleteInvalidModes(t *testing.T) {
	o, _ := New("t1", time.Now())
	AddItem(o, menuItem("1", "Paneer Tikka", "240"), testRates)

	if _, err := Complete(o, "Cheque", enum.DeliveryMethodNone, time.Now()); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("err = %v, want ErrInvalidPayment", err)
	}
	if _, err := Complete(o, enum.PaymentModeCash, "Fax", time.Now()); !errors.Is(err, ErrInvalidDelivery) {
		t.Errorf("err = %v, want ErrInvalidDelivery", err)
	}
	if o.Status != enum.OrderStatusActive {
		t.Errorf("status = %q, want still active", o.Status)
	}
}
