package quotes

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

// indexOfItem returns the position of the line with the given id, or -1.
func indexOfItem(items []models.QuoteItem, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// indexOfProduct returns the position of the line for productID, or -1.
func indexOfProduct(items []models.QuoteItem, productID uuid.UUID) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// withoutItem returns a new slice without the line id.
func withoutItem(items []models.QuoteItem, id uuid.UUID) []models.QuoteItem {
	out := make([]models.QuoteItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// cloneItem copies a line into quoteID under a fresh identity.
func cloneItem(item models.QuoteItem, quoteID uuid.UUID) models.QuoteItem {
	return models.QuoteItem{
		ID:        uuid.New(),
		QuoteID:   quoteID,
		ProductID: item.ProductID,
		Product:   item.Product,
		Quantity:  item.Quantity,
	}
}

// mergeItems folds src into dst: shared products add quantities, the rest are
// cloned into quoteID. Neither input slice is modified.
func mergeItems(dst, src []models.QuoteItem, quoteID uuid.UUID) []models.QuoteItem {
	out := make([]models.QuoteItem, len(dst), len(dst)+len(src))
	copy(out, dst)
	for _, item := range src {
		if idx := indexOfProduct(out, item.ProductID); idx >= 0 {
			out[idx].Quantity += item.Quantity
			continue
		}
		out = append(out, cloneItem(item, quoteID))
	}
	return out
}
