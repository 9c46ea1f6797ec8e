package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote is the mutable cart aggregate. Tax is the only stored money value;
// every other total is derived from the items and coupon.
type Quote struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        *uuid.UUID      `gorm:"column:customer_id;type:uuid;index"`
	CouponID          *uuid.UUID      `gorm:"column:coupon_id;type:uuid"`
	Coupon            *Coupon         `gorm:"foreignKey:CouponID"`
	IsOpen            bool            `gorm:"column:is_open;not null"`
	Email             *string         `gorm:"column:email"`
	ShippingAddressID *uuid.UUID      `gorm:"column:shipping_address_id;type:uuid"`
	ShippingAddress   *Address        `gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID  *uuid.UUID      `gorm:"column:billing_address_id;type:uuid"`
	BillingAddress    *Address        `gorm:"foreignKey:BillingAddressID"`
	Items             []QuoteItem     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Tax               decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// BelongsToCustomer reports whether the quote is owned by a customer account
// rather than identified by a guest email.
func (q *Quote) BelongsToCustomer() bool {
	return q != nil && q.CustomerID != nil && *q.CustomerID != uuid.Nil
}

// CouponCode returns the attached coupon's code or "".
func (q *Quote) CouponCode() string {
	if q == nil || q.Coupon == nil {
		return ""
	}
	return q.Coupon.Code
}

// QuoteItem is one product line. Its price is never stored; it is derived from
// Product on every read.
type QuoteItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID   uuid.UUID `gorm:"column:quote_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *QuoteItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
