// Package service orchestrates the POS flows: it loads documents,
// applies the order/table/billing domain logic, and persists the
// results. The store fans snapshots out to terminals after every
// write, so the service never broadcasts explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/order"
	"github.com/spicegarden/pos/internal/seed"
	"github.com/spicegarden/pos/internal/store"
	"github.com/spicegarden/pos/internal/table"
)

// Errors returned by the POS service.
var (
	ErrTableNotFound    = errors.New("table not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrStaffNotFound    = errors.New("staff not found")
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrInvalidRate      = errors.New("rates must be between 0 and 100")
	ErrMissingName      = errors.New("name is required")
)

// POS is the application service behind the HTTP surface.
type POS struct {
	store store.Store
	now   func() time.Time
}

// New creates a POS service. now is swappable for tests.
func New(st store.Store) *POS {
	return &POS{store: st, now: time.Now}
}

// --- document loads ---

func (p *POS) loadTable(ctx context.Context, id string) (model.Table, error) {
	snap, err := p.store.Load(ctx, store.CollectionTables)
	if err != nil {
		return model.Table{}, fmt.Errorf("load tables: %w", err)
	}
	var t model.Table
	ok, err := store.Decode(snap, id, &t)
	if err != nil {
		return model.Table{}, fmt.Errorf("decode table %s: %w", id, err)
	}
	if !ok {
		return model.Table{}, ErrTableNotFound
	}
	return t, nil
}

func (p *POS) loadOrder(ctx context.Context, id string) (model.Order, error) {
	snap, err := p.store.Load(ctx, store.CollectionOrders)
	if err != nil {
		return model.Order{}, fmt.Errorf("load orders: %w", err)
	}
	var o model.Order
	ok, err := store.Decode(snap, id, &o)
	if err != nil {
		return model.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (p *POS) loadMenuItem(ctx context.Context, id string) (model.MenuItem, error) {
	snap, err := p.store.Load(ctx, store.CollectionMenu)
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("load menu: %w", err)
	}
	var mi model.MenuItem
	ok, err := store.Decode(snap, id, &mi)
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("decode menu item %s: %w", id, err)
	}
	if !ok {
		return model.MenuItem{}, ErrMenuItemNotFound
	}
	return mi, nil
}

// Settings returns the singleton settings document, falling back to
// the seed defaults when it is missing.
func (p *POS) Settings(ctx context.Context) (model.StoreSettings, error) {
	snap, err := p.store.Load(ctx, store.CollectionSettings)
	if err != nil {
		return model.StoreSettings{}, fmt.Errorf("load settings: %w", err)
	}
	var s model.StoreSettings
	ok, err := store.Decode(snap, store.SettingsDocID, &s)
	if err != nil {
		return model.StoreSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	if !ok {
		return seed.DefaultSettings, nil
	}
	return s, nil
}

// --- POS flows ---

// AddItemToTable adds one unit of a menu item to the table's active
// order, creating the order and occupying the table on the first
// item. Two terminals racing on the same free table converge on
// whichever order's write landed first: the loser's next add joins
// the winner's active order instead of overwriting it.
func (p *POS) AddItemToTable(ctx context.Context, tableID, menuItemID string) (model.Order, error) {
	tbl, err := p.loadTable(ctx, tableID)
	if err != nil {
		return model.Order{}, err
	}
	mi, err := p.loadMenuItem(ctx, menuItemID)
	if err != nil {
		return model.Order{}, err
	}
	settings, err := p.Settings(ctx)
	if err != nil {
		return model.Order{}, err
	}
	rates := order.RatesFrom(settings)

	var o model.Order
	fresh := true
	if tbl.Status == enum.TableStatusOccupied && tbl.CurrentOrderID != "" {
		existing, err := p.loadOrder(ctx, tbl.CurrentOrderID)
		if err != nil && !errors.Is(err, ErrOrderNotFound) {
			return model.Order{}, err
		}
		// A terminal or missing order under an occupied table is a
		// stale binding from an interrupted write; start over.
		if err == nil && existing.Status == enum.OrderStatusActive {
			o = existing
			fresh = false
		}
	}

	if fresh {
		created, tr := order.New(tableID, p.now())
		o = *created
		table.Release(&tbl)
		if err := table.AssignOrder(&tbl, tr.OrderID); err != nil {
			return model.Order{}, err
		}
	}

	order.AddItem(&o, mi, rates)

	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	if fresh {
		if err := p.store.Save(ctx, store.CollectionTables, tbl.ID, tbl); err != nil {
			return model.Order{}, fmt.Errorf("save table: %w", err)
		}
	}
	return o, nil
}

// ChangeQuantity adjusts a line item's quantity by delta, removing it
// at zero, and persists the recomputed order.
func (p *POS) ChangeQuantity(ctx context.Context, orderID, lineItemID string, delta int) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	settings, err := p.Settings(ctx)
	if err != nil {
		return model.Order{}, err
	}
	if err := order.ChangeQuantity(&o, lineItemID, delta, order.RatesFrom(settings)); err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}

// SetItemNote updates a line item's note.
func (p *POS) SetItemNote(ctx context.Context, orderID, lineItemID, note string) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := order.SetItemNote(&o, lineItemID, note); err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}

// SetOrderType switches an order between eat-in and takeaway.
func (p *POS) SetOrderType(ctx context.Context, orderID, orderType string) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := order.SetOrderType(&o, orderType); err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}

// SetCustomer records customer contact details on an active order.
func (p *POS) SetCustomer(ctx context.Context, orderID, name, phone string) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := order.SetCustomer(&o, name, phone); err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}

// CompleteOrder settles an active order and releases its table. The
// order is persisted before the table so a crash between the two
// writes leaves a stale occupied table, which AddItemToTable heals,
// rather than a lost completed order.
func (p *POS) CompleteOrder(ctx context.Context, orderID, paymentMode, deliveryMethod string) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	tr, err := order.Complete(&o, paymentMode, deliveryMethod, p.now())
	if err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	if err := p.applyTransition(ctx, tr); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// CancelOrder voids an active order and releases its table.
func (p *POS) CancelOrder(ctx context.Context, orderID string) (model.Order, error) {
	o, err := p.loadOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	tr, err := order.Cancel(&o)
	if err != nil {
		return model.Order{}, err
	}
	if err := p.store.Save(ctx, store.CollectionOrders, o.ID, o); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	if err := p.applyTransition(ctx, tr); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// applyTransition writes the table mutation an order transition
// demands. Release is idempotent, so replays converge.
func (p *POS) applyTransition(ctx context.Context, tr order.TableTransition) error {
	tbl, err := p.loadTable(ctx, tr.TableID)
	if err != nil {
		return err
	}
	if tr.Occupy {
		if err := table.AssignOrder(&tbl, tr.OrderID); err != nil {
			return err
		}
	} else {
		table.Release(&tbl)
	}
	if err := p.store.Save(ctx, store.CollectionTables, tbl.ID, tbl); err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

// --- reads ---

// ListTables returns all tables sorted by id.
func (p *POS) ListTables(ctx context.Context) ([]model.Table, error) {
	snap, err := p.store.Load(ctx, store.CollectionTables)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	tables, err := store.DecodeAll[model.Table](snap)
	if err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables, nil
}

// ListOrders returns every order, newest first.
func (p *POS) ListOrders(ctx context.Context) ([]model.Order, error) {
	snap, err := p.store.Load(ctx, store.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	orders, err := store.DecodeAll[model.Order](snap)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// GetOrder returns one order by id.
func (p *POS) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return p.loadOrder(ctx, id)
}

// ListMenu returns the catalog sorted by category then name.
func (p *POS) ListMenu(ctx context.Context) ([]model.MenuItem, error) {
	snap, err := p.store.Load(ctx, store.CollectionMenu)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	items, err := store.DecodeAll[model.MenuItem](snap)
	if err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// --- menu management ---

// SaveMenuItem creates or replaces a catalog entry. Historical bills
// are untouched: orders snapshot name and price at add-time.
func (p *POS) SaveMenuItem(ctx context.Context, mi model.MenuItem) (model.MenuItem, error) {
	if mi.Name == "" {
		return model.MenuItem{}, ErrMissingName
	}
	if mi.ID == "" {
		mi.ID = uuid.NewString()
	}
	if err := p.store.Save(ctx, store.CollectionMenu, mi.ID, mi); err != nil {
		return model.MenuItem{}, fmt.Errorf("save menu item: %w", err)
	}
	return mi, nil
}

// DeleteMenuItem removes a catalog entry.
func (p *POS) DeleteMenuItem(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, store.CollectionMenu, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

// --- staff management ---

// ListStaff returns the roster sorted by name, password hashes
// stripped.
func (p *POS) ListStaff(ctx context.Context) ([]model.Staff, error) {
	snap, err := p.store.Load(ctx, store.CollectionStaff)
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	staff, err := store.DecodeAll[model.Staff](snap)
	if err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	for i := range staff {
		staff[i].PasswordHash = ""
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Name < staff[j].Name })
	return staff, nil
}

// SaveStaff creates or updates a staff member. A non-empty password
// is hashed; an empty one keeps the stored hash.
func (p *POS) SaveStaff(ctx context.Context, s model.Staff, password string) (model.Staff, error) {
	if s.Name == "" {
		return model.Staff{}, ErrMissingName
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.JoinedAt = p.now()
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return model.Staff{}, fmt.Errorf("hash password: %w", err)
		}
		s.PasswordHash = string(hash)
	} else {
		snap, err := p.store.Load(ctx, store.CollectionStaff)
		if err != nil {
			return model.Staff{}, fmt.Errorf("load staff: %w", err)
		}
		var existing model.Staff
		if ok, err := store.Decode(snap, s.ID, &existing); err == nil && ok {
			s.PasswordHash = existing.PasswordHash
			if s.JoinedAt.IsZero() {
				s.JoinedAt = existing.JoinedAt
			}
		}
	}

	if err := p.store.Save(ctx, store.CollectionStaff, s.ID, s); err != nil {
		return model.Staff{}, fmt.Errorf("save staff: %w", err)
	}
	s.PasswordHash = ""
	return s, nil
}

// DeleteStaff removes a staff member.
func (p *POS) DeleteStaff(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, store.CollectionStaff, id); err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return nil
}

// Authenticate verifies staff credentials for login.
func (p *POS) Authenticate(ctx context.Context, email, password string) (model.Staff, error) {
	snap, err := p.store.Load(ctx, store.CollectionStaff)
	if err != nil {
		return model.Staff{}, fmt.Errorf("load staff: %w", err)
	}
	staff, err := store.DecodeAll[model.Staff](snap)
	if err != nil {
		return model.Staff{}, fmt.Errorf("decode staff: %w", err)
	}
	for _, s := range staff {
		if s.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) != nil {
			return model.Staff{}, ErrBadCredentials
		}
		s.PasswordHash = ""
		return s, nil
	}
	return model.Staff{}, ErrBadCredentials
}

// --- settings ---

// UpdateSettings replaces the singleton settings document. The next
// billing recompute picks the new rates up automatically.
func (p *POS) UpdateSettings(ctx context.Context, s model.StoreSettings) (model.StoreSettings, error) {
	if s.Name == "" {
		return model.StoreSettings{}, ErrMissingName
	}
	hundred := decimal.NewFromInt(100)
	if s.GSTRate.IsNegative() || s.GSTRate.GreaterThan(hundred) ||
		s.ServiceChargeRate.IsNegative() || s.ServiceChargeRate.GreaterThan(hundred) {
		return model.StoreSettings{}, ErrInvalidRate
	}
	if err := p.store.Save(ctx, store.CollectionSettings, store.SettingsDocID, s); err != nil {
		return model.StoreSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}
