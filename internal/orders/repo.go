package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

// Repository defines persistence for orders and their lookup tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStatusByName(ctx context.Context, name string) (*models.OrderStatus, error)
	FindPaymentMethodByName(ctx context.Context, name string) (*models.PaymentMethod, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStatusByName(ctx context.Context, name string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) FindPaymentMethodByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// Create inserts the order's address clones, the order row and its items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.ShippingAddress != nil {
			if err := tx.Omit(clause.Associations).Create(order.ShippingAddress).Error; err != nil {
				return err
			}
			order.ShippingAddressID = order.ShippingAddress.ID
		}
		if order.BillingAddress != nil {
			if err := tx.Omit(clause.Associations).Create(order.BillingAddress).Error; err != nil {
				return err
			}
			order.BillingAddressID = order.BillingAddress.ID
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return tx.Create(&order.Items).Error
	})
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("OrderStatus").
		Preload("PaymentMethod").
		Preload("ShippingAddress.Country").
		Preload("ShippingAddress.State").
		Preload("BillingAddress.Country").
		Preload("BillingAddress.State").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
