package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/pkg/types"
)

type OrderStatus struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

func (s *OrderStatus) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type PaymentMethod struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

func (m *PaymentMethod) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Order is the immutable checkout snapshot of a quote. Money values are
// captured at conversion time and never re-derived.
type Order struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID           uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	QuoteID              uuid.UUID       `gorm:"column:quote_id;type:uuid;not null;uniqueIndex"`
	CouponID             *uuid.UUID      `gorm:"column:coupon_id;type:uuid"`
	OrderStatusID        uuid.UUID       `gorm:"column:order_status_id;type:uuid;not null"`
	OrderStatus          *OrderStatus    `gorm:"foreignKey:OrderStatusID"`
	PaymentMethodID      uuid.UUID       `gorm:"column:payment_method_id;type:uuid;not null"`
	PaymentMethod        *PaymentMethod  `gorm:"foreignKey:PaymentMethodID"`
	ShippingAddressID    uuid.UUID       `gorm:"column:shipping_address_id;type:uuid;not null"`
	ShippingAddress      *Address        `gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID     uuid.UUID       `gorm:"column:billing_address_id;type:uuid;not null"`
	BillingAddress       *Address        `gorm:"foreignKey:BillingAddressID"`
	Email                string          `gorm:"column:email;not null"`
	Price                decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Discount             decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	Subtotal             decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax                  decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null"`
	Total                decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentTransactionID *string         `gorm:"column:payment_transaction_id"`
	TrackingNumber       *string         `gorm:"column:tracking_number"`
	Items                []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem stores line money as plain values.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i OrderItem) Line() types.LinePricing {
	return types.LinePricing{
		ProductID:  i.ProductID,
		Quantity:   i.Quantity,
		UnitPrice:  i.UnitPrice,
		TotalPrice: i.TotalPrice,
		Discount:   i.Discount,
		Total:      i.Total,
	}
}
