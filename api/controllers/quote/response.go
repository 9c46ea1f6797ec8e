package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

type addressResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Company     *string    `json:"company,omitempty"`
	Line1       string     `json:"line1"`
	Line2       *string    `json:"line2,omitempty"`
	City        string     `json:"city"`
	PostalCode  string     `json:"postal_code"`
	Phone       *string    `json:"phone,omitempty"`
	CountryID   uuid.UUID  `json:"country_id"`
	CountryCode string     `json:"country_code,omitempty"`
	StateID     *uuid.UUID `json:"state_id,omitempty"`
	StateCode   string     `json:"state_code,omitempty"`
}

func newAddressResponse(a *models.Address) *addressResponse {
	if a == nil {
		return nil
	}
	resp := &addressResponse{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Company:    a.Company,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
		CountryID:  a.CountryID,
		StateID:    a.StateID,
	}
	if a.Country != nil {
		resp.CountryCode = a.Country.Code
	}
	if a.State != nil {
		resp.StateCode = a.State.Code
	}
	return resp
}

type itemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	SKU        string          `json:"sku,omitempty"`
	Name       string          `json:"name,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

func newItemResponse(priced quotes.PricedItem) itemResponse {
	resp := itemResponse{
		ID:         priced.Item.ID,
		ProductID:  priced.Item.ProductID,
		Quantity:   priced.Item.Quantity,
		UnitPrice:  priced.Pricing.UnitPrice,
		TotalPrice: priced.Pricing.TotalPrice,
		Discount:   priced.Pricing.Discount,
		Total:      priced.Pricing.Total,
	}
	if priced.Item.Product != nil {
		resp.SKU = priced.Item.Product.SKU
		resp.Name = priced.Item.Product.Name
	}
	return resp
}

type quoteResponse struct {
	ID              *uuid.UUID       `json:"id"`
	CustomerID      *uuid.UUID       `json:"customer_id,omitempty"`
	Email           *string          `json:"email,omitempty"`
	CouponCode      string           `json:"coupon_code,omitempty"`
	ShippingAddress *addressResponse `json:"shipping_address,omitempty"`
	BillingAddress  *addressResponse `json:"billing_address,omitempty"`
	Items           []itemResponse   `json:"items"`
	ItemCount       int              `json:"item_count"`
	Price           decimal.Decimal  `json:"price"`
	Discount        decimal.Decimal  `json:"discount"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tax             decimal.Decimal  `json:"tax"`
	Total           decimal.Decimal  `json:"total"`
}

// newQuoteResponse renders a quote; a nil quote renders as an empty cart.
func newQuoteResponse(q *models.Quote) quoteResponse {
	pricing := quotes.Price(q)
	resp := quoteResponse{
		Items:     make([]itemResponse, 0, len(pricing.Items)),
		ItemCount: pricing.ItemCount,
		Price:     pricing.Price,
		Discount:  pricing.Discount,
		Subtotal:  pricing.Subtotal,
		Tax:       pricing.Tax,
		Total:     pricing.Total,
	}
	for _, priced := range pricing.Items {
		resp.Items = append(resp.Items, newItemResponse(priced))
	}
	if q == nil {
		return resp
	}
	id := q.ID
	resp.ID = &id
	resp.CustomerID = q.CustomerID
	resp.Email = q.Email
	resp.CouponCode = q.CouponCode()
	resp.ShippingAddress = newAddressResponse(q.ShippingAddress)
	resp.BillingAddress = newAddressResponse(q.BillingAddress)
	return resp
}

type addItemResponse struct {
	Item  *itemResponse `json:"item"`
	Quote quoteResponse `json:"quote"`
}

type updateItemResponse struct {
	Item  *itemResponse `json:"item"`
	Quote quoteResponse `json:"quote"`
}

// item finds the rendered line for itemID in a quote response.
func (q quoteResponse) item(itemID uuid.UUID) *itemResponse {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			return &q.Items[i]
		}
	}
	return nil
}

type orderItemResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

type orderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	QuoteID              uuid.UUID           `json:"quote_id"`
	CustomerID           uuid.UUID           `json:"customer_id"`
	Email                string              `json:"email"`
	Status               string              `json:"status,omitempty"`
	PaymentMethod        string              `json:"payment_method,omitempty"`
	PaymentTransactionID *string             `json:"payment_transaction_id,omitempty"`
	Price                decimal.Decimal     `json:"price"`
	Discount             decimal.Decimal     `json:"discount"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	Tax                  decimal.Decimal     `json:"tax"`
	Total                decimal.Decimal     `json:"total"`
	Items                []orderItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}

func newOrderResponse(o *models.Order) orderResponse {
	resp := orderResponse{
		ID:                   o.ID,
		QuoteID:              o.QuoteID,
		CustomerID:           o.CustomerID,
		Email:                o.Email,
		PaymentTransactionID: o.PaymentTransactionID,
		Price:                o.Price,
		Discount:             o.Discount,
		Subtotal:             o.Subtotal,
		Tax:                  o.Tax,
		Total:                o.Total,
		Items:                make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:            o.CreatedAt,
	}
	if o.OrderStatus != nil {
		resp.Status = o.OrderStatus.Name
	}
	if o.PaymentMethod != nil {
		resp.PaymentMethod = o.PaymentMethod.Name
	}
	for _, item := range o.Items {
		line := item.Line()
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Discount:   line.Discount,
			Total:      line.Total,
		})
	}
	return resp
}
