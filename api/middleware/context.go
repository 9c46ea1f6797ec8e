package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxCustomerID contextKey = "customer_id"
	ctxQuoteID    contextKey = "quote_id"
)

// CustomerIDFromContext returns the authenticated customer, if any.
func CustomerIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCustomerID).(uuid.UUID); ok && v != uuid.Nil {
		return &v
	}
	return nil
}

// WithCustomerID injects the authenticated customer into the context.
func WithCustomerID(ctx context.Context, customerID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerID, customerID)
}

// QuoteIDFromContext returns the quote resolved for this request, if any.
func QuoteIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxQuoteID).(uuid.UUID); ok && v != uuid.Nil {
		return &v
	}
	return nil
}

// WithQuoteID injects the resolved quote into the context.
func WithQuoteID(ctx context.Context, quoteID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxQuoteID, quoteID)
}
