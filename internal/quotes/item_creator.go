package quotes

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

// AddItemInput adds Quantity units of a product. QuoteID may be nil to start
// (or reuse) the customer's quote.
type AddItemInput struct {
	QuoteID    *uuid.UUID
	CustomerID *uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
}

// AddItemResult carries the touched line and the quote it lives on. Item is
// nil when a zero quantity was added for a product not yet in the quote.
type AddItemResult struct {
	QuoteID uuid.UUID
	Item    *models.QuoteItem
	Quote   *models.Quote
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	product, err := s.catalog.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, lookupError(err, "product")
	}
	quote, err := s.resolveOrCreate(ctx, input.QuoteID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	var item *models.QuoteItem
	if idx := indexOfProduct(quote.Items, product.ID); idx >= 0 {
		item = &quote.Items[idx]
		if input.Quantity > 0 {
			if err := validateQuantity(item.Quantity + input.Quantity); err != nil {
				return nil, err
			}
			item.Quantity += input.Quantity
			if err := s.repo.UpdateItem(ctx, item); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote item")
			}
		}
	} else if input.Quantity > 0 {
		quote.Items = append(quote.Items, models.QuoteItem{
			ID:        uuid.New(),
			QuoteID:   quote.ID,
			ProductID: product.ID,
			Product:   product,
			Quantity:  input.Quantity,
		})
		item = &quote.Items[len(quote.Items)-1]
		if err := s.save(ctx, quote); err != nil {
			return nil, err
		}
	}

	if err := s.taxes.Recalculate(ctx, quote); err != nil {
		return nil, err
	}

	result := &AddItemResult{QuoteID: quote.ID, Quote: quote}
	if item != nil {
		line := *item
		result.Item = &line
	}
	return result, nil
}
