package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
	"github.com/angelmondragon/quotecart-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// PricedItem is a quote line with its money derived from the live product and
// the quote's coupon.
type PricedItem struct {
	Item    models.QuoteItem
	Pricing types.LinePricing
}

func (p PricedItem) Line() types.LinePricing {
	return p.Pricing
}

// Pricing is the derived money view of a quote. Only Tax comes from storage.
type Pricing struct {
	Items     []PricedItem
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// UnitPrice is the product's actual price. A line without a loaded product
// prices at zero.
func UnitPrice(product *models.Product) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	return product.ActualPrice()
}

// LineDiscount applies coupon to a line of quantity units at unitPrice.
func LineDiscount(coupon *models.Coupon, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(quantity))
	switch coupon.Type {
	case enums.CouponTypeFixed:
		return coupon.Discount.Mul(qty)
	case enums.CouponTypePercentage:
		return unitPrice.Mul(coupon.Discount.Div(hundred)).Mul(qty)
	default:
		return decimal.Zero
	}
}

// PriceItem derives a single line's money.
func PriceItem(item models.QuoteItem, coupon *models.Coupon) PricedItem {
	unit := UnitPrice(item.Product)
	totalPrice := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
	discount := LineDiscount(coupon, unit, item.Quantity)
	return PricedItem{
		Item: item,
		Pricing: types.LinePricing{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unit,
			TotalPrice: totalPrice,
			Discount:   discount,
			Total:      totalPrice.Sub(discount),
		},
	}
}

// Price derives every total of q from its items, coupon and stored tax.
func Price(q *models.Quote) Pricing {
	if q == nil {
		return Pricing{Price: decimal.Zero, Discount: decimal.Zero, Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	}
	items := make([]PricedItem, 0, len(q.Items))
	count := 0
	for _, item := range q.Items {
		items = append(items, PriceItem(item, q.Coupon))
		count += item.Quantity
	}
	price, discount, subtotal := types.LineTotals(items)
	return Pricing{
		Items:     items,
		Price:     price,
		Discount:  discount,
		Subtotal:  subtotal,
		Tax:       q.Tax,
		Total:     subtotal.Add(q.Tax),
		ItemCount: count,
	}
}
