package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/order"
	"github.com/spicegarden/pos/internal/seed"
	"github.com/spicegarden/pos/internal/store"
	"github.com/spicegarden/pos/internal/table"
)

func newSeededPOS(t *testing.T) (*POS, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	if err := seed.Run(context.Background(), st); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return New(st), st
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func loadTable(t *testing.T, st *store.Memory, id string) model.Table {
	t.Helper()
	snap, _ := st.Load(context.Background(), store.CollectionTables)
	var tbl model.Table
	ok, err := store.Decode(snap, id, &tbl)
	if err != nil || !ok {
		t.Fatalf("table %s: ok=%v err=%v", id, ok, err)
	}
	return tbl
}

func TestAddItemToTableCreatesOrderAndOccupiesTable(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	// Menu item 1 is Paneer Tikka at 240; seeded rates are 5/5.
	o, err := pos.AddItemToTable(ctx, "t1", "1")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if o.Status != enum.OrderStatusActive || o.TableID != "t1" {
		t.Errorf("order = %+v", o)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 1 {
		t.Fatalf("items = %+v", o.Items)
	}
	if !o.Subtotal.Equal(dec("240")) || !o.Total.Equal(dec("264")) {
		t.Errorf("totals = %s/%s, want 240/264", o.Subtotal, o.Total)
	}

	tbl := loadTable(t, st, "t1")
	if tbl.Status != enum.TableStatusOccupied || tbl.CurrentOrderID != o.ID {
		t.Errorf("table = %+v, want occupied by %s", tbl, o.ID)
	}
}

func TestAddItemToTableReusesActiveOrder(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	first, err := pos.AddItemToTable(ctx, "t1", "1")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	second, err := pos.AddItemToTable(ctx, "t1", "1")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("second add created a new order")
	}
	if len(second.Items) != 1 || second.Items[0].Quantity != 2 {
		t.Errorf("items = %+v, want one line item qty 2", second.Items)
	}
	if !second.Subtotal.Equal(dec("480")) {
		t.Errorf("subtotal = %s, want 480", second.Subtotal)
	}
}

func TestAddItemUnknownTableOrMenuItem(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	if _, err := pos.AddItemToTable(ctx, "t99", "1"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
	if _, err := pos.AddItemToTable(ctx, "t1", "999"); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("err = %v, want ErrMenuItemNotFound", err)
	}
}

func TestChangeQuantityPersistsRecompute(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	o, _ := pos.AddItemToTable(ctx, "t2", "4") // Samosa at 40
	updated, err := pos.ChangeQuantity(ctx, o.ID, o.Items[0].ID, 2)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if updated.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", updated.Items[0].Quantity)
	}
	if !updated.Subtotal.Equal(dec("120")) || !updated.Total.Equal(dec("132")) {
		t.Errorf("totals = %s/%s, want 120/132", updated.Subtotal, updated.Total)
	}

	// Down to zero removes the item and zeroes the totals.
	updated, err = pos.ChangeQuantity(ctx, o.ID, o.Items[0].ID, -3)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if len(updated.Items) != 0 || !updated.Total.IsZero() {
		t.Errorf("after removal: items=%d total=%s", len(updated.Items), updated.Total)
	}
}

func TestCompleteOrderReleasesTable(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	o, _ := pos.AddItemToTable(ctx, "t3", "5")
	done, err := pos.CompleteOrder(ctx, o.ID, enum.PaymentModeCard, enum.DeliveryMethodPrinted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != enum.OrderStatusCompleted || done.CompletedAt == nil {
		t.Errorf("order = %+v", done)
	}

	tbl := loadTable(t, st, "t3")
	if tbl.Status != enum.TableStatusAvailable || tbl.CurrentOrderID != "" {
		t.Errorf("table = %+v, want released", tbl)
	}

	// The table is immediately reusable with a fresh order.
	next, err := pos.AddItemToTable(ctx, "t3", "1")
	if err != nil {
		t.Fatalf("add after complete: %v", err)
	}
	if next.ID == done.ID {
		t.Error("reused a completed order")
	}
}

func TestCancelOrderReleasesTable(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	o, _ := pos.AddItemToTable(ctx, "t4", "6")
	cancelled, err := pos.CancelOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %q", cancelled.Status)
	}
	if cancelled.CompletedAt != nil {
		t.Error("cancelled order has completedAt")
	}

	tbl := loadTable(t, st, "t4")
	if tbl.Status != enum.TableStatusAvailable {
		t.Errorf("table = %+v, want released", tbl)
	}
}

func TestCompleteTwiceRejected(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	o, _ := pos.AddItemToTable(ctx, "t5", "1")
	if _, err := pos.CompleteOrder(ctx, o.ID, enum.PaymentModeCash, enum.DeliveryMethodNone); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := pos.CompleteOrder(ctx, o.ID, enum.PaymentModeCash, enum.DeliveryMethodNone); !errors.Is(err, order.ErrNotActive) {
		t.Errorf("err = %v, want order.ErrNotActive", err)
	}
}

func TestAddItemHealsStaleOccupiedTable(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	// Simulate a crash between order completion and table release:
	// the table points at a terminal order.
	o, _ := pos.AddItemToTable(ctx, "t6", "1")
	o.Status = enum.OrderStatusCompleted
	now := time.Now()
	o.CompletedAt = &now
	if err := st.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		t.Fatalf("save: %v", err)
	}

	next, err := pos.AddItemToTable(ctx, "t6", "2")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if next.ID == o.ID {
		t.Fatal("stale terminal order was mutated")
	}
	tbl := loadTable(t, st, "t6")
	if tbl.CurrentOrderID != next.ID {
		t.Errorf("table bound to %q, want %q", tbl.CurrentOrderID, next.ID)
	}
}

func TestAddItemHealsMissingOrderBinding(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	// The table claims an order that was never written.
	tbl := loadTable(t, st, "t7")
	if err := table.AssignOrder(&tbl, "ghost-order"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := st.Save(ctx, store.CollectionTables, tbl.ID, tbl); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The ghost order doesn't resolve, so the flow starts a fresh
	// order rather than failing: the stale binding heals.
	o, err := pos.AddItemToTable(ctx, "t7", "1")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if o.TableID != "t7" {
		t.Errorf("order table = %q", o.TableID)
	}
}

func TestSettingsRatesDriveBilling(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	s, err := pos.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s.GSTRate = dec("10")
	s.ServiceChargeRate = dec("0")
	if _, err := pos.UpdateSettings(ctx, s); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	o, err := pos.AddItemToTable(ctx, "t8", "12") // Jeera Rice at 140
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !o.TaxAmount.Equal(dec("14")) || !o.ServiceChargeAmount.IsZero() {
		t.Errorf("tax/service = %s/%s, want 14/0", o.TaxAmount, o.ServiceChargeAmount)
	}
	if !o.Total.Equal(dec("154")) {
		t.Errorf("total = %s, want 154", o.Total)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	s, _ := pos.Settings(ctx)
	s.GSTRate = dec("-1")
	if _, err := pos.UpdateSettings(ctx, s); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}

	s, _ = pos.Settings(ctx)
	s.Name = ""
	if _, err := pos.UpdateSettings(ctx, s); !errors.Is(err, ErrMissingName) {
		t.Errorf("err = %v, want ErrMissingName", err)
	}
}

func TestMenuCRUD(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	mi, err := pos.SaveMenuItem(ctx, model.MenuItem{
		Name: "Tandoori Roti", Price: dec("25"), CostPrice: dec("6"), Category: "Breads",
	})
	if err != nil {
		t.Fatalf("save menu item: %v", err)
	}
	if mi.ID == "" {
		t.Fatal("no id assigned")
	}

	items, err := pos.ListMenu(ctx)
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(items) != 18 {
		t.Errorf("menu has %d items, want 18", len(items))
	}

	if err := pos.DeleteMenuItem(ctx, mi.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ = pos.ListMenu(ctx)
	if len(items) != 17 {
		t.Errorf("menu has %d items after delete, want 17", len(items))
	}
}

func TestMenuEditDoesNotChangeHistoricalBill(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	o, _ := pos.AddItemToTable(ctx, "t9", "1")
	before := o.Total

	mi, _ := pos.loadMenuItem(ctx, "1")
	mi.Price = dec("999")
	if _, err := pos.SaveMenuItem(ctx, mi); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := pos.GetOrder(ctx, o.ID)
	if !got.Total.Equal(before) {
		t.Errorf("total changed after menu edit: %s -> %s", before, got.Total)
	}
}

func TestStaffAuthenticate(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	s, err := pos.Authenticate(ctx, "rahul@spicegarden.in", seed.DefaultPassword)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if s.Role != enum.StaffRoleManager || s.PasswordHash != "" {
		t.Errorf("staff = %+v", s)
	}

	if _, err := pos.Authenticate(ctx, "rahul@spicegarden.in", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("err = %v, want ErrBadCredentials", err)
	}
	if _, err := pos.Authenticate(ctx, "nobody@spicegarden.in", seed.DefaultPassword); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("err = %v, want ErrBadCredentials", err)
	}
}

func TestSaveStaffKeepsHashWhenPasswordEmpty(t *testing.T) {
	ctx := context.Background()
	pos, _ := newSeededPOS(t)

	staff, _ := pos.ListStaff(ctx)
	var rahul model.Staff
	for _, s := range staff {
		if s.Email == "rahul@spicegarden.in" {
			rahul = s
		}
	}
	rahul.Phone = "98765-99999"
	if _, err := pos.SaveStaff(ctx, rahul, ""); err != nil {
		t.Fatalf("save staff: %v", err)
	}

	// The old password still works.
	if _, err := pos.Authenticate(ctx, "rahul@spicegarden.in", seed.DefaultPassword); err != nil {
		t.Errorf("authenticate after edit: %v", err)
	}
}

func TestSnapshotFanoutOnOrderWrites(t *testing.T) {
	ctx := context.Background()
	pos, st := newSeededPOS(t)

	var orderEvents, tableEvents int
	st.Subscribe(store.CollectionOrders, func(string, store.Snapshot) { orderEvents++ })
	st.Subscribe(store.CollectionTables, func(string, store.Snapshot) { tableEvents++ })

	o, err := pos.AddItemToTable(ctx, "t10", "1")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := pos.CompleteOrder(ctx, o.ID, enum.PaymentModeCash, enum.DeliveryMethodNone); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if orderEvents != 2 {
		t.Errorf("order snapshots = %d, want 2 (add, complete)", orderEvents)
	}
	if tableEvents != 2 {
		t.Errorf("table snapshots = %d, want 2 (occupy, release)", tableEvents)
	}
}
