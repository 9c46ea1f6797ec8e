package quotes

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/internal/catalog"
	"github.com/angelmondragon/quotecart-backend/internal/tax"
	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
)

type stubQuoteRepo struct {
	quotes       map[uuid.UUID]*models.Quote
	created      int
	saved        []models.Quote
	updatedItems []models.QuoteItem
	taxes        map[uuid.UUID]decimal.Decimal
	closed       []uuid.UUID
	saveErr      error
}

func newStubQuoteRepo(quotes ...*models.Quote) *stubQuoteRepo {
	repo := &stubQuoteRepo{
		quotes: map[uuid.UUID]*models.Quote{},
		taxes:  map[uuid.UUID]decimal.Decimal{},
	}
	for _, q := range quotes {
		repo.quotes[q.ID] = q
	}
	return repo
}

func (r *stubQuoteRepo) WithTx(*gorm.DB) QuoteRepository { return r }

func (r *stubQuoteRepo) FindOpenByID(_ context.Context, id uuid.UUID) (*models.Quote, error) {
	if q, ok := r.quotes[id]; ok && q.IsOpen {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubQuoteRepo) FindOpenByCustomerID(_ context.Context, customerID uuid.UUID) (*models.Quote, error) {
	for _, q := range r.quotes {
		if q.IsOpen && q.CustomerID != nil && *q.CustomerID == customerID {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubQuoteRepo) Create(_ context.Context, customerID *uuid.UUID) (*models.Quote, error) {
	r.created++
	q := &models.Quote{ID: uuid.New(), CustomerID: customerID, IsOpen: true}
	r.quotes[q.ID] = q
	return q, nil
}

func (r *stubQuoteRepo) Save(_ context.Context, quote *models.Quote) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	snapshot := *quote
	snapshot.Items = append([]models.QuoteItem(nil), quote.Items...)
	r.saved = append(r.saved, snapshot)
	r.quotes[quote.ID] = quote
	return nil
}

func (r *stubQuoteRepo) UpdateItem(_ context.Context, item *models.QuoteItem) error {
	r.updatedItems = append(r.updatedItems, *item)
	return nil
}

func (r *stubQuoteRepo) UpdateTax(_ context.Context, quoteID uuid.UUID, amount decimal.Decimal) error {
	r.taxes[quoteID] = amount
	return nil
}

func (r *stubQuoteRepo) Close(_ context.Context, quoteID uuid.UUID) error {
	r.closed = append(r.closed, quoteID)
	if q, ok := r.quotes[quoteID]; ok {
		q.IsOpen = false
	}
	return nil
}

func (r *stubQuoteRepo) CloseForCustomer(ctx context.Context, quoteID, customerID uuid.UUID) error {
	if q, ok := r.quotes[quoteID]; ok {
		q.CustomerID = &customerID
	}
	return r.Close(ctx, quoteID)
}

type stubTx struct {
	calls int
}

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	coupons  map[string]*models.Coupon
}

func (c *stubCatalog) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *stubCatalog) FindCouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := c.coupons[catalog.NormalizeCouponCode(code)]; ok {
		return coupon, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubAddresses struct {
	addresses map[uuid.UUID]*models.Address
	countries map[uuid.UUID]*models.Country
	states    map[uuid.UUID]*models.State
}

func (a *stubAddresses) FindByID(_ context.Context, id uuid.UUID) (*models.Address, error) {
	if addr, ok := a.addresses[id]; ok {
		return addr, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (a *stubAddresses) FindCountryByID(_ context.Context, id uuid.UUID) (*models.Country, error) {
	if c, ok := a.countries[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (a *stubAddresses) FindStateByID(_ context.Context, id uuid.UUID) (*models.State, error) {
	if s, ok := a.states[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTax struct {
	amount   decimal.Decimal
	err      error
	calls    int
	requests []tax.Request
}

func (s *stubTax) Calculate(_ context.Context, req tax.Request) (decimal.Decimal, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.amount, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	repo      *stubQuoteRepo
	tx        *stubTx
	catalog   *stubCatalog
	addresses *stubAddresses
	tax       *stubTax
	outbox    *stubEmitter
	svc       Service
}

func newFixture(t *testing.T, quotes ...*models.Quote) *fixture {
	t.Helper()
	f := &fixture{
		repo: newStubQuoteRepo(quotes...),
		tx:   &stubTx{},
		catalog: &stubCatalog{
			products: map[uuid.UUID]*models.Product{},
			coupons:  map[string]*models.Coupon{},
		},
		addresses: &stubAddresses{
			addresses: map[uuid.UUID]*models.Address{},
			countries: map[uuid.UUID]*models.Country{},
			states:    map[uuid.UUID]*models.State{},
		},
		tax:    &stubTax{amount: decimal.NewFromInt(5)},
		outbox: &stubEmitter{},
	}
	svc, err := NewService(ServiceParams{
		Repo:      f.repo,
		Tx:        f.tx,
		Catalog:   f.catalog,
		Addresses: f.addresses,
		Tax:       f.tax,
		Outbox:    f.outbox,
		Logger:    logger.New(logger.Options{ServiceName: "quotes-test", Output: io.Discard}),
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) addProduct(price string) *models.Product {
	p := product(price)
	f.catalog.products[p.ID] = p
	return p
}

func (f *fixture) addCountry(code string) *models.Country {
	c := &models.Country{ID: uuid.New(), Name: code, Code: code}
	f.addresses.countries[c.ID] = c
	return c
}

func openQuote(items ...models.QuoteItem) *models.Quote {
	q := &models.Quote{ID: uuid.New(), IsOpen: true}
	for _, item := range items {
		item.QuoteID = q.ID
		q.Items = append(q.Items, item)
	}
	return q
}

func line(p *models.Product, qty int) models.QuoteItem {
	return models.QuoteItem{ID: uuid.New(), ProductID: p.ID, Product: p, Quantity: qty}
}

func shippingTo(country *models.Country) *models.Address {
	return &models.Address{ID: uuid.New(), Line1: "1 Main", City: "Austin", PostalCode: "78701", CountryID: country.ID, Country: country}
}

var errBoom = errors.New("boom")
