package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/internal/addresses"
	"github.com/angelmondragon/quotecart-backend/internal/customers"
	"github.com/angelmondragon/quotecart-backend/internal/payments"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/quotecart-backend/pkg/redis"
)

const msgPaymentFailed = "Error processing payment"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quoteValidator interface {
	Validate(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
}

type checkoutLocker interface {
	CheckoutLockKey(quoteID string) string
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*redis.Lock, error)
}

// Service converts quotes into orders.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
}

// CreateOrderInput names the quote to check out. Nonce may be empty for
// orders that total zero.
type CreateOrderInput struct {
	QuoteID uuid.UUID
	Nonce   payments.Nonce
}

// ServiceParams bundles the checkout collaborators.
type ServiceParams struct {
	Repo      Repository
	Quotes    quotes.QuoteRepository
	Validator quoteValidator
	Customers *customers.Repository
	Addresses *addresses.Repository
	Tx        txRunner
	Gateway   payments.Gateway
	Locks     checkoutLocker
	LockTTL   time.Duration
	Outbox    outbox.Emitter
	Metrics   *metrics.QuoteMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	quotes    quotes.QuoteRepository
	validator quoteValidator
	customers *customers.Repository
	addresses *addresses.Repository
	tx        txRunner
	gateway   payments.Gateway
	locks     checkoutLocker
	lockTTL   time.Duration
	outbox    outbox.Emitter
	metrics   *metrics.QuoteMetrics
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Quotes == nil:
		return nil, fmt.Errorf("quote repository required")
	case params.Validator == nil:
		return nil, fmt.Errorf("quote validator required")
	case params.Customers == nil:
		return nil, fmt.Errorf("customers repository required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("addresses repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case params.Locks == nil:
		return nil, fmt.Errorf("checkout locker required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &service{
		repo:      params.Repo,
		quotes:    params.Quotes,
		validator: params.Validator,
		customers: params.Customers,
		addresses: params.Addresses,
		tx:        params.Tx,
		gateway:   payments.WithFreeOrders(params.Gateway),
		locks:     params.Locks,
		lockTTL:   ttl,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	ctx = s.logg.WithQuoteID(ctx, input.QuoteID.String())

	lock, err := s.locks.AcquireLock(ctx, s.locks.CheckoutLockKey(input.QuoteID.String()), s.lockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout lock release failed")
		}
	}()

	quote, err := s.validator.Validate(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}

	pricing := quotes.Price(quote)
	if !pricing.Total.IsZero() && !input.Nonce.Present() {
		return nil, pkgerrors.Invalid("payment details are required",
			pkgerrors.Violation{Path: []string{"PaymentNonce"}, Message: "A payment method is required"})
	}

	customer, err := s.resolveCustomer(ctx, quote)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithCustomerID(ctx, customer.ID.String())

	status, method, err := s.lookups(ctx, pricing.Total.IsZero())
	if err != nil {
		return nil, err
	}

	order := Build(quote, customer, status, method)

	result, err := s.gateway.CreatePaymentTransaction(ctx, order, input.Nonce)
	if err != nil {
		s.logg.Error(ctx, "payment transaction failed", err)
		return nil, paymentFailed("")
	}
	if result == nil || !result.Success {
		message := ""
		if result != nil {
			message = result.Message
		}
		s.logg.Warn(s.logg.WithField(ctx, "gateway_message", message), "payment declined")
		return nil, paymentFailed(message)
	}
	if result.TransactionID != "" {
		txID := result.TransactionID
		order.PaymentTransactionID = &txID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		if err := s.claimAddresses(ctx, tx, quote, customer.ID); err != nil {
			return err
		}
		if err := s.quotes.WithTx(tx).CloseForCustomer(ctx, quote.ID, customer.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close quote")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventOrderCreated,
			AggregateID: order.ID,
			Actor:       &outbox.ActorRef{CustomerID: &customer.ID, Guest: customer.UserID == nil},
			Data: payloads.OrderCreatedEvent{
				OrderID:              order.ID,
				QuoteID:              quote.ID,
				CustomerID:           customer.ID,
				Email:                order.Email,
				PaymentMethod:        method.Name,
				PaymentTransactionID: order.PaymentTransactionID,
				Subtotal:             order.Subtotal,
				Discount:             order.Discount,
				Tax:                  order.Tax,
				Total:                order.Total,
				ItemCount:            pricing.ItemCount,
			},
		})
	})
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if err != nil {
		s.logg.Error(ctx, "order persistence failed after payment", err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	quote.IsOpen = false
	quote.CustomerID = &customer.ID

	s.metrics.IncOrderPlaced(method.Name)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_method": method.Name,
		"total":          order.Total.String(),
	}), "order placed")
	return order, nil
}

// resolveCustomer finds the quote's owner, creating a customer for unknown
// guest emails. The quote itself is not modified: the owner is recorded when
// the quote is closed, after payment succeeds.
func (s *service) resolveCustomer(ctx context.Context, quote *models.Quote) (*models.Customer, error) {
	if quote.BelongsToCustomer() {
		customer, err := s.customers.FindByID(ctx, *quote.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		return customer, nil
	}

	var customer *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		customer, err = s.findOrCreateGuest(ctx, s.customers.WithTx(tx), quote)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve customer")
	}
	return customer, nil
}

// claimAddresses hands unowned quote addresses to the ordering customer.
func (s *service) claimAddresses(ctx context.Context, tx *gorm.DB, quote *models.Quote, customerID uuid.UUID) error {
	repo := s.addresses.WithTx(tx)
	for _, address := range []*models.Address{quote.ShippingAddress, quote.BillingAddress} {
		if address == nil || address.CustomerID != nil {
			continue
		}
		owner := customerID
		address.CustomerID = &owner
		if err := repo.Update(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote address")
		}
	}
	return nil
}

func (s *service) findOrCreateGuest(ctx context.Context, repo *customers.Repository, quote *models.Quote) (*models.Customer, error) {
	email := ""
	if quote.Email != nil {
		email = strings.TrimSpace(*quote.Email)
	}
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer by email")
	}
	guest := &models.Customer{Email: email}
	if quote.BillingAddress != nil {
		guest.FirstName = quote.BillingAddress.FirstName
		guest.LastName = quote.BillingAddress.LastName
	}
	created, err := repo.Create(ctx, guest)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return created, nil
}

func (s *service) lookups(ctx context.Context, free bool) (*models.OrderStatus, *models.PaymentMethod, error) {
	status, err := s.repo.FindStatusByName(ctx, enums.OrderStatusPending)
	if err != nil {
		return nil, nil, seedError(err, "order status "+enums.OrderStatusPending)
	}
	methodName := enums.PaymentMethodCreditCard
	if free {
		methodName = enums.PaymentMethodFreeOrder
	}
	method, err := s.repo.FindPaymentMethodByName(ctx, methodName)
	if err != nil {
		return nil, nil, seedError(err, "payment method "+methodName)
	}
	return status, method, nil
}

func seedError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeInternal, what+" is not configured")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}

func paymentFailed(detail string) error {
	message := msgPaymentFailed
	if detail != "" {
		message = detail
	}
	return pkgerrors.Invalid(msgPaymentFailed, pkgerrors.Violation{Path: []string{"Payment"}, Message: message})
}
