package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/pkg/enums"
)

// Product is the live catalog record a quote line prices against.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	SKU            string          `gorm:"column:sku;not null;uniqueIndex"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	IsDiscounted   bool            `gorm:"column:is_discounted;not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ActualPrice is the base price less the discount amount while the product is
// marked discounted, floored at zero.
func (p Product) ActualPrice() decimal.Decimal {
	price := p.Price
	if p.IsDiscounted {
		price = price.Sub(p.DiscountAmount)
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// Coupon is a quote-level discount. Discount is an amount per unit for fixed
// coupons and a percentage (0-100) for percentage coupons.
type Coupon struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code      string           `gorm:"column:code;not null;uniqueIndex"`
	Type      enums.CouponType `gorm:"column:type;not null"`
	Discount  decimal.Decimal  `gorm:"column:discount;type:numeric(12,2);not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
