package quotes

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/internal/tax"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type addressReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	FindCountryByID(ctx context.Context, id uuid.UUID) (*models.Country, error)
	FindStateByID(ctx context.Context, id uuid.UUID) (*models.State, error)
}

// Service exposes the cart operations: item lifecycle, quote-level updates,
// validation and cart identity resolution.
type Service interface {
	Get(ctx context.Context, quoteID uuid.UUID) (*Detail, error)
	AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error)
	UpdateItem(ctx context.Context, quoteID, itemID uuid.UUID, quantity int) (*models.QuoteItem, error)
	DeleteItem(ctx context.Context, quoteID, itemID uuid.UUID) error
	Update(ctx context.Context, input UpdateInput) (*models.Quote, error)
	Validate(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	Resolve(ctx context.Context, caller Caller, cookie string) (*models.Quote, error)
}

// ServiceParams bundles the quote service collaborators.
type ServiceParams struct {
	Repo      QuoteRepository
	Tx        txRunner
	Catalog   catalogReader
	Addresses addressReader
	Tax       tax.Calculator
	Outbox    outbox.Emitter
	Metrics   *metrics.QuoteMetrics
	Logger    *logger.Logger
	Currency  string
}

type service struct {
	repo      QuoteRepository
	tx        txRunner
	catalog   catalogReader
	addresses addressReader
	taxes     *TaxCalculator
	outbox    outbox.Emitter
	metrics   *metrics.QuoteMetrics
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	taxes, err := NewTaxCalculator(params.Repo, params.Tax, params.Currency, params.Metrics, params.Logger)
	if err != nil {
		return nil, err
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		catalog:   params.Catalog,
		addresses: params.Addresses,
		taxes:     taxes,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// Detail is an open quote with its derived pricing.
type Detail struct {
	Quote   *models.Quote
	Pricing Pricing
}

func (s *service) Get(ctx context.Context, quoteID uuid.UUID) (*Detail, error) {
	quote, err := s.loadOpen(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return &Detail{Quote: quote, Pricing: Price(quote)}, nil
}

func (s *service) loadOpen(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindOpenByID(ctx, quoteID)
	if err != nil {
		return nil, lookupError(err, "quote")
	}
	return quote, nil
}

// resolveOrCreate returns the open quote named by quoteID. Without an id it
// reuses the customer's open quote or starts a new one.
func (s *service) resolveOrCreate(ctx context.Context, quoteID, customerID *uuid.UUID) (*models.Quote, error) {
	if quoteID != nil {
		return s.loadOpen(ctx, *quoteID)
	}
	if customerID != nil {
		existing, err := s.repo.FindOpenByCustomerID(ctx, *customerID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer quote")
		}
	}
	quote, err := s.repo.Create(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}
	return quote, nil
}

func (s *service) save(ctx context.Context, quote *models.Quote) error {
	if err := s.repo.Save(ctx, quote); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote")
	}
	return nil
}

func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}

// validateQuantity bounds a line quantity to what the integer column holds.
func validateQuantity(quantity int) error {
	switch {
	case quantity < 0:
		return pkgerrors.Invalid("quantity must not be negative",
			pkgerrors.Violation{Path: []string{"Quantity"}, Message: "Quantity must not be negative"})
	case quantity > math.MaxInt32:
		return pkgerrors.Invalid("quantity is too large",
			pkgerrors.Violation{Path: []string{"Quantity"}, Message: msgQuantityTooLarge})
	}
	return nil
}
