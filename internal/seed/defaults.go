package seed

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
)

// DefaultPassword is the initial staff password; hashed at seed time
// and expected to be changed on first login.
const DefaultPassword = "spicegarden123"

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// DefaultSettings is the initial store configuration.
var DefaultSettings = model.StoreSettings{
	Name:              "Spice Garden",
	Address:           "42 Masala Street, New Delhi, 110001",
	Phone:             "+91 98765 43210",
	Currency:          "₹",
	GSTRate:           decimal.NewFromInt(5),
	ServiceChargeRate: decimal.NewFromInt(5),
}

// DefaultMenu is the opening menu catalog.
var DefaultMenu = []model.MenuItem{
	{ID: "1", Name: "Paneer Tikka", Price: price(240), CostPrice: price(90), Category: "Starters", Description: "Marinated cottage cheese grilled in tandoor"},
	{ID: "2", Name: "Chicken Tikka", Price: price(280), CostPrice: price(110), Category: "Starters", Description: "Spicy marinated chicken chunks"},
	{ID: "3", Name: "Veg Manchurian", Price: price(180), CostPrice: price(60), Category: "Starters", Description: "Vegetable balls in spicy chinese sauce"},
	{ID: "4", Name: "Samosa (2pcs)", Price: price(40), CostPrice: price(12), Category: "Starters", Description: "Crispy pastry filled with spiced potatoes"},
	{ID: "5", Name: "Butter Chicken", Price: price(350), CostPrice: price(140), Category: "Main Course", Description: "Classic chicken in rich tomato butter gravy"},
	{ID: "6", Name: "Dal Makhani", Price: price(220), CostPrice: price(80), Category: "Main Course", Description: "Creamy black lentils slow cooked overnight"},
	{ID: "7", Name: "Paneer Butter Masala", Price: price(260), CostPrice: price(95), Category: "Main Course", Description: "Cottage cheese in rich tomato gravy"},
	{ID: "8", Name: "Kadai Chicken", Price: price(320), CostPrice: price(130), Category: "Main Course", Description: "Chicken cooked with bell peppers and spices"},
	{ID: "9", Name: "Garlic Naan", Price: price(55), CostPrice: price(15), Category: "Breads", Description: "Leavened bread topped with garlic"},
	{ID: "10", Name: "Butter Roti", Price: price(35), CostPrice: price(8), Category: "Breads", Description: "Whole wheat bread with butter"},
	{ID: "11", Name: "Chicken Biryani", Price: price(280), CostPrice: price(120), Category: "Rice", Description: "Aromatic basmati rice cooked with spiced chicken"},
	{ID: "12", Name: "Jeera Rice", Price: price(140), CostPrice: price(40), Category: "Rice", Description: "Basmati rice tempered with cumin seeds"},
	{ID: "13", Name: "Masala Dosa", Price: price(120), CostPrice: price(45), Category: "South Indian", Description: "Crispy rice crepe filled with potato masala"},
	{ID: "14", Name: "Idli Sambar", Price: price(80), CostPrice: price(25), Category: "South Indian", Description: "Steamed rice cakes with lentil soup"},
	{ID: "15", Name: "Masala Chai", Price: price(30), CostPrice: price(8), Category: "Beverages", Description: "Spiced indian tea"},
	{ID: "16", Name: "Sweet Lassi", Price: price(80), CostPrice: price(25), Category: "Beverages", Description: "Chilled yogurt drink"},
	{ID: "17", Name: "Gulab Jamun", Price: price(60), CostPrice: price(20), Category: "Dessert", Description: "Deep fried milk dumplings in sugar syrup"},
}

// DefaultTables returns the 12 floor tables.
func DefaultTables() []model.Table {
	tables := make([]model.Table, 0, 12)
	for i := 1; i <= 12; i++ {
		tables = append(tables, model.Table{
			ID:       fmt.Sprintf("t%d", i),
			Name:     fmt.Sprintf("Table %d", i),
			Capacity: 4,
			Status:   enum.TableStatusAvailable,
		})
	}
	return tables
}

// DefaultStaff returns the opening staff roster. Password hashes are
// filled in by the seeder.
func DefaultStaff(now time.Time) []model.Staff {
	return []model.Staff{
		{ID: "s1", Name: "Rahul Sharma", Role: enum.StaffRoleManager, Phone: "98765-00001", Email: "rahul@spicegarden.in", JoinedAt: now, Status: enum.StaffStatusPresent},
		{ID: "s2", Name: "Priya Singh", Role: enum.StaffRoleWaiter, Phone: "98765-00002", Email: "priya@spicegarden.in", JoinedAt: now, Status: enum.StaffStatusPresent},
		{ID: "s3", Name: "Amit Kumar", Role: enum.StaffRoleChef, Phone: "98765-00003", Email: "amit@spicegarden.in", JoinedAt: now, Status: enum.StaffStatusAbsent},
	}
}
