package quotes

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

func TestMergeItems(t *testing.T) {
	t.Parallel()

	target := uuid.New()
	shared, onlySource := uuid.New(), uuid.New()
	dst := []models.QuoteItem{{ID: uuid.New(), QuoteID: target, ProductID: shared, Quantity: 1}}
	src := []models.QuoteItem{
		{ID: uuid.New(), ProductID: shared, Quantity: 2},
		{ID: uuid.New(), ProductID: onlySource, Quantity: 4},
	}

	merged := mergeItems(dst, src, target)
	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
	if merged[0].Quantity != 3 {
		t.Fatalf("expected shared quantity 3, got %d", merged[0].Quantity)
	}
	if merged[1].ProductID != onlySource || merged[1].Quantity != 4 {
		t.Fatalf("unexpected cloned line %+v", merged[1])
	}
	if merged[1].ID == src[1].ID || merged[1].QuoteID != target {
		t.Fatalf("clone must get a fresh id on the target quote")
	}
	if dst[0].Quantity != 1 || src[0].Quantity != 2 {
		t.Fatalf("inputs must not be modified")
	}
}

func TestWithoutItem(t *testing.T) {
	t.Parallel()

	keep, drop := uuid.New(), uuid.New()
	items := []models.QuoteItem{{ID: keep}, {ID: drop}}
	out := withoutItem(items, drop)
	if len(out) != 1 || out[0].ID != keep {
		t.Fatalf("unexpected items %+v", out)
	}
	if len(items) != 2 {
		t.Fatalf("input slice must not change")
	}
	if indexOfItem(out, drop) != -1 || indexOfItem(out, keep) != 0 {
		t.Fatalf("index lookup mismatch")
	}
}
