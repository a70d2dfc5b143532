package enum

// ── State machines ──

const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

// ── Labels surfaced on bills and reports ──

const (
	OrderTypeEatIn    = "eat-in"
	OrderTypeTakeaway = "takeaway"
)

const (
	PaymentModeCash = "Cash"
	PaymentModeCard = "Card"
	PaymentModeUPI  = "UPI"
)

const (
	DeliveryMethodWhatsApp = "WhatsApp"
	DeliveryMethodPrinted  = "Printed"
	DeliveryMethodNone     = "None"
)

const (
	StaffRoleManager = "Manager"
	StaffRoleWaiter  = "Waiter"
	StaffRoleChef    = "Chef"
	StaffRoleCashier = "Cashier"
)

const (
	StaffStatusPresent = "present"
	StaffStatusAbsent  = "absent"
)
