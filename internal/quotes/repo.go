package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

// QuoteRepository is the persistence surface the quote services need.
// Lookups return gorm.ErrRecordNotFound for missing or closed quotes.
type QuoteRepository interface {
	WithTx(tx *gorm.DB) QuoteRepository
	FindOpenByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	FindOpenByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Quote, error)
	Create(ctx context.Context, customerID *uuid.UUID) (*models.Quote, error)
	Save(ctx context.Context, quote *models.Quote) error
	UpdateItem(ctx context.Context, item *models.QuoteItem) error
	UpdateTax(ctx context.Context, quoteID uuid.UUID, tax decimal.Decimal) error
	Close(ctx context.Context, quoteID uuid.UUID) error
	CloseForCustomer(ctx context.Context, quoteID, customerID uuid.UUID) error
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) QuoteRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) withGraph(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Items.Product").
		Preload("Coupon").
		Preload("ShippingAddress.Country").
		Preload("ShippingAddress.State").
		Preload("BillingAddress.Country").
		Preload("BillingAddress.State")
}

// FindOpenByID loads an open quote with its items, products, coupon and addresses.
func (r *Repository) FindOpenByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.withGraph(ctx).
		Where("id = ? AND is_open = ?", id, true).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FindOpenByCustomerID loads the customer's open quote, newest first.
func (r *Repository) FindOpenByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.withGraph(ctx).
		Where("customer_id = ? AND is_open = ?", customerID, true).
		Order("created_at DESC").
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create inserts an empty open quote, anonymous when customerID is nil.
func (r *Repository) Create(ctx context.Context, customerID *uuid.UUID) (*models.Quote, error) {
	quote := &models.Quote{
		CustomerID: customerID,
		IsOpen:     true,
		Tax:        decimal.Zero,
		Items:      []models.QuoteItem{},
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// Save writes the quote row, its addresses and its item set. Items missing
// from quote.Items are deleted.
func (r *Repository) Save(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAddress(tx, quote.ShippingAddress); err != nil {
			return err
		}
		if err := saveAddress(tx, quote.BillingAddress); err != nil {
			return err
		}
		quote.ShippingAddressID = addressID(quote.ShippingAddress)
		quote.BillingAddressID = addressID(quote.BillingAddress)
		quote.CouponID = nil
		if quote.Coupon != nil {
			id := quote.Coupon.ID
			quote.CouponID = &id
		}

		err := tx.Model(&models.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]any{
				"customer_id":         nullable(quote.CustomerID),
				"coupon_id":           nullable(quote.CouponID),
				"is_open":             quote.IsOpen,
				"email":               nullableString(quote.Email),
				"shipping_address_id": nullable(quote.ShippingAddressID),
				"billing_address_id":  nullable(quote.BillingAddressID),
				"tax":                 quote.Tax,
				"updated_at":          time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
		return syncItems(tx, quote)
	})
}

func syncItems(tx *gorm.DB, quote *models.Quote) error {
	var existing []uuid.UUID
	if err := tx.Model(&models.QuoteItem{}).Where("quote_id = ?", quote.ID).Pluck("id", &existing).Error; err != nil {
		return err
	}
	persisted := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		persisted[id] = struct{}{}
	}

	keep := make(map[uuid.UUID]struct{}, len(quote.Items))
	for i := range quote.Items {
		item := &quote.Items[i]
		item.QuoteID = quote.ID
		if _, ok := persisted[item.ID]; ok {
			err := tx.Model(&models.QuoteItem{}).
				Where("id = ?", item.ID).
				Updates(map[string]any{
					"product_id": item.ProductID,
					"quantity":   item.Quantity,
					"updated_at": time.Now().UTC(),
				}).Error
			if err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}
		keep[item.ID] = struct{}{}
	}

	var stale []uuid.UUID
	for _, id := range existing {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return tx.Where("id IN ?", stale).Delete(&models.QuoteItem{}).Error
}

func saveAddress(tx *gorm.DB, address *models.Address) error {
	if address == nil {
		return nil
	}
	if address.Country != nil {
		address.CountryID = address.Country.ID
	}
	if address.State != nil {
		id := address.State.ID
		address.StateID = &id
	}
	if address.ID == uuid.Nil {
		return tx.Omit(clause.Associations).Create(address).Error
	}
	return tx.Omit(clause.Associations).Save(address).Error
}

// UpdateItem persists a line's quantity.
func (r *Repository) UpdateItem(ctx context.Context, item *models.QuoteItem) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   item.Quantity,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) UpdateTax(ctx context.Context, quoteID uuid.UUID, tax decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", quoteID).
		Updates(map[string]any{
			"tax":        tax,
			"updated_at": time.Now().UTC(),
		}).Error
}

// Close marks the quote as no longer open. Items are left as they were.
func (r *Repository) Close(ctx context.Context, quoteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", quoteID).
		Updates(map[string]any{
			"is_open":    false,
			"updated_at": time.Now().UTC(),
		}).Error
}

// CloseForCustomer closes the quote and records its owner in one statement,
// so a guest quote never holds a customer id while it is still open.
func (r *Repository) CloseForCustomer(ctx context.Context, quoteID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", quoteID).
		Updates(map[string]any{
			"is_open":     false,
			"customer_id": customerID,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// DeleteStaleGuestQuotes removes up to limit open quotes without a customer
// that have not been touched since cutoff, together with their items.
func (r *Repository) DeleteStaleGuestQuotes(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	var ids []uuid.UUID
	err := conn.WithContext(ctx).
		Model(&models.Quote{}).
		Where("customer_id IS NULL AND is_open = ? AND updated_at < ?", true, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	if err := conn.WithContext(ctx).Where("quote_id IN ?", ids).Delete(&models.QuoteItem{}).Error; err != nil {
		return 0, err
	}
	res := conn.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Quote{})
	return res.RowsAffected, res.Error
}

func addressID(address *models.Address) *uuid.UUID {
	if address == nil {
		return nil
	}
	id := address.ID
	return &id
}

func nullable(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
