package quotes

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
)

func (s *service) DeleteItem(ctx context.Context, quoteID, itemID uuid.UUID) error {
	quote, err := s.loadOpen(ctx, quoteID)
	if err != nil {
		return err
	}
	if indexOfItem(quote.Items, itemID) < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quote item not found")
	}
	quote.Items = withoutItem(quote.Items, itemID)
	if err := s.save(ctx, quote); err != nil {
		return err
	}
	return s.taxes.Recalculate(ctx, quote)
}
