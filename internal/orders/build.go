package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/types"
)

// Build freezes quote into an unsaved order. Addresses are cloned and every
// money value is copied from the quote's pricing at this moment.
func Build(quote *models.Quote, customer *models.Customer, status *models.OrderStatus, method *models.PaymentMethod) *models.Order {
	pricing := quotes.Price(quote)
	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		QuoteID:         quote.ID,
		OrderStatusID:   status.ID,
		OrderStatus:     status,
		PaymentMethodID: method.ID,
		PaymentMethod:   method,
		ShippingAddress: snapshotAddress(quote.ShippingAddress),
		BillingAddress:  snapshotAddress(quote.BillingAddress),
		Email:           customer.Email,
		Price:           pricing.Price,
		Discount:        pricing.Discount,
		Subtotal:        pricing.Subtotal,
		Tax:             pricing.Tax,
		Total:           pricing.Total,
		Items:           make([]models.OrderItem, 0, len(pricing.Items)),
	}
	if quote.Coupon != nil {
		couponID := quote.Coupon.ID
		order.CouponID = &couponID
	}
	if quote.Email != nil && *quote.Email != "" {
		order.Email = *quote.Email
	}
	for _, item := range pricing.Items {
		order.Items = append(order.Items, orderItem(order.ID, item.Line()))
	}
	return order
}

func orderItem(orderID uuid.UUID, line types.LinePricing) models.OrderItem {
	return models.OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductID:  line.ProductID,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		TotalPrice: line.TotalPrice,
		Discount:   line.Discount,
		Total:      line.Total,
	}
}

// snapshotAddress copies an address for the order. The copy is not part of
// the customer's address book.
func snapshotAddress(address *models.Address) *models.Address {
	clone := address.Clone()
	if clone == nil {
		return nil
	}
	clone.CustomerID = nil
	return clone
}
