package quote

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/quotecart-backend/api/middleware"
	"github.com/angelmondragon/quotecart-backend/api/responses"
	"github.com/angelmondragon/quotecart-backend/api/validators"
	"github.com/angelmondragon/quotecart-backend/internal/orders"
	"github.com/angelmondragon/quotecart-backend/internal/quotes"
	"github.com/angelmondragon/quotecart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

// Fetch renders the caller's open quote, or an empty cart when there is none.
func Fetch(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID := middleware.QuoteIDFromContext(r.Context())
		if quoteID == nil {
			responses.WriteSuccess(w, newQuoteResponse(nil))
			return
		}
		writeQuote(r.Context(), w, svc, *quoteID, logg)
	}
}

// Update sets the email, addresses and coupon of the caller's quote,
// starting one if needed.
func Update(svc quotes.Service, cart config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		quote, err := svc.Update(ctx, quotes.UpdateInput{
			QuoteID:         middleware.QuoteIDFromContext(ctx),
			CustomerID:      middleware.CustomerIDFromContext(ctx),
			Email:           payload.Email,
			ShippingAddress: payload.ShippingAddress.toInput(),
			BillingAddress:  payload.BillingAddress.toInput(),
			CouponCode:      payload.CouponCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		keepCookie(w, r, cart, quote.ID)
		writeQuote(ctx, w, svc, quote.ID, logg)
	}
}

// AddItem adds a product to the caller's quote, starting one if needed.
func AddItem(svc quotes.Service, cart config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		result, err := svc.AddItem(ctx, quotes.AddItemInput{
			QuoteID:    middleware.QuoteIDFromContext(ctx),
			CustomerID: middleware.CustomerIDFromContext(ctx),
			ProductID:  payload.ProductID,
			Quantity:   *payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		keepCookie(w, r, cart, result.QuoteID)

		detail, err := svc.Get(ctx, result.QuoteID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		resp := addItemResponse{Quote: newQuoteResponse(detail.Quote)}
		if result.Item != nil {
			resp.Item = resp.Quote.item(result.Item.ID)
		}
		responses.WriteSuccess(w, resp)
	}
}

// UpdateItem sets a line's quantity; zero removes the line.
func UpdateItem(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, itemID, err := itemTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		item, err := svc.UpdateItem(ctx, quoteID, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Get(ctx, quoteID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		resp := updateItemResponse{Quote: newQuoteResponse(detail.Quote)}
		if item != nil {
			resp.Item = resp.Quote.item(item.ID)
		}
		responses.WriteSuccess(w, resp)
	}
}

// DeleteItem removes a line from the caller's quote.
func DeleteItem(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, itemID, err := itemTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), quoteID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeQuote(r.Context(), w, svc, quoteID, logg)
	}
}

// Checkout converts the caller's quote into an order.
func Checkout(svc orders.Service, cart config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := requireQuote(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if _, err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			QuoteID: quoteID,
			Nonce:   payload.nonce(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		middleware.ClearQuoteCookie(w, cart)
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

func writeQuote(ctx context.Context, w http.ResponseWriter, svc quotes.Service, quoteID uuid.UUID, logg *logger.Logger) {
	detail, err := svc.Get(ctx, quoteID)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccess(w, newQuoteResponse(detail.Quote))
}

// keepCookie points the cart cookie at quoteID when the request resolved a
// different quote or none at all.
func keepCookie(w http.ResponseWriter, r *http.Request, cart config.CartConfig, quoteID uuid.UUID) {
	current := middleware.QuoteIDFromContext(r.Context())
	if current != nil && *current == quoteID {
		return
	}
	middleware.WriteQuoteCookie(w, cart, quoteID)
}

func requireQuote(r *http.Request) (uuid.UUID, error) {
	quoteID := middleware.QuoteIDFromContext(r.Context())
	if quoteID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return *quoteID, nil
}

func itemTarget(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	quoteID, err := requireQuote(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Invalid("invalid item id",
			pkgerrors.Violation{Path: []string{"itemId"}, Message: "must be a valid id"})
	}
	return quoteID, itemID, nil
}
