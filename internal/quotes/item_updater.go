package quotes

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

// UpdateItem sets a line's quantity. Zero removes the line and returns nil.
func (s *service) UpdateItem(ctx context.Context, quoteID, itemID uuid.UUID, quantity int) (*models.QuoteItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	quote, err := s.loadOpen(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	idx := indexOfItem(quote.Items, itemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote item not found")
	}

	if quantity == 0 {
		quote.Items = withoutItem(quote.Items, itemID)
		if err := s.save(ctx, quote); err != nil {
			return nil, err
		}
		return nil, s.taxes.Recalculate(ctx, quote)
	}

	item := &quote.Items[idx]
	if item.Quantity != quantity {
		item.Quantity = quantity
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote item")
		}
		if err := s.taxes.Recalculate(ctx, quote); err != nil {
			return nil, err
		}
	}

	line := *item
	return &line, nil
}
