package addresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
)

// Repository persists saved addresses and reads country/state lookups.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads an address with its country and state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Preload("Country").
		Preload("State").
		Where("id = ?", id).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *Repository) FindCountryByID(ctx context.Context, id uuid.UUID) (*models.Country, error) {
	var country models.Country
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&country).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *Repository) FindStateByID(ctx context.Context, id uuid.UUID) (*models.State, error) {
	var state models.State
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// ListByCustomer returns a customer's saved addresses, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Preload("Country").
		Preload("State").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Update writes the address columns without touching country/state rows.
func (r *Repository) Update(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(address).Error
}
