package enums

// Well-known names of the seeded order_statuses rows.
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusCancelled = "Cancelled"
)

// Well-known names of the seeded payment_methods rows.
const (
	PaymentMethodFreeOrder  = "Free Order"
	PaymentMethodCreditCard = "Credit Card"
)
