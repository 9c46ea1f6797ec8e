package quotes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotecart-backend/pkg/db/models"
	"github.com/angelmondragon/quotecart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotecart-backend/pkg/errors"
	"github.com/angelmondragon/quotecart-backend/pkg/metrics"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox"
	"github.com/angelmondragon/quotecart-backend/pkg/outbox/payloads"
)

// Caller is the request principal as seen by the cart. CustomerID is the
// customer record linked to an authenticated user, if one exists.
type Caller struct {
	Authenticated bool
	CustomerID    *uuid.UUID
}

// ParseCookie reads a cart cookie value. Anything that is not a quote id is
// treated as no cookie.
func ParseCookie(value string) (uuid.UUID, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Resolve returns the single open quote the caller should work on, or nil.
// An authenticated caller's anonymous cart is adopted, or merged into the
// customer's existing cart and closed.
func (s *service) Resolve(ctx context.Context, caller Caller, cookie string) (*models.Quote, error) {
	cookieID, hasCookie := ParseCookie(cookie)

	if !caller.Authenticated {
		if !hasCookie {
			return nil, nil
		}
		return s.findOpenOrNil(ctx, s.repo.FindOpenByID, cookieID)
	}

	if caller.CustomerID == nil || *caller.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	customerID := *caller.CustomerID

	customerQuote, err := s.findOpenOrNil(ctx, s.repo.FindOpenByCustomerID, customerID)
	if err != nil {
		return nil, err
	}
	if !hasCookie {
		return customerQuote, nil
	}
	cookieQuote, err := s.findOpenOrNil(ctx, s.repo.FindOpenByID, cookieID)
	if err != nil {
		return nil, err
	}
	if cookieQuote == nil {
		return customerQuote, nil
	}
	if customerQuote != nil && customerQuote.ID == cookieQuote.ID {
		return customerQuote, nil
	}
	if cookieQuote.BelongsToCustomer() && *cookieQuote.CustomerID != customerID {
		return customerQuote, nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"customer_id":     customerID.String(),
		"cookie_quote_id": cookieQuote.ID.String(),
	})

	if customerQuote == nil {
		cookieQuote.CustomerID = &customerID
		if err := s.save(ctx, cookieQuote); err != nil {
			return nil, err
		}
		s.metrics.IncResolution(metrics.ResolutionAdopted)
		s.logg.Info(ctx, "anonymous quote adopted")
		return cookieQuote, nil
	}

	if err := s.merge(ctx, customerQuote, cookieQuote); err != nil {
		return nil, err
	}
	s.metrics.IncResolution(metrics.ResolutionMerged)
	s.logg.Info(s.logg.WithQuoteID(ctx, customerQuote.ID.String()), "anonymous quote merged")
	return customerQuote, nil
}

// merge folds source into target and closes source in one transaction.
func (s *service) merge(ctx context.Context, target, source *models.Quote) error {
	merged := mergeItems(target.Items, source.Items, target.ID)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidate := *target
		candidate.Items = merged
		if err := repo.Save(ctx, &candidate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save merged quote")
		}
		if err := repo.Close(ctx, source.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close merged quote")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.EventQuoteMerged,
			AggregateID: target.ID,
			Actor:       &outbox.ActorRef{CustomerID: target.CustomerID},
			Data: payloads.QuoteMergedEvent{
				TargetQuoteID: target.ID,
				SourceQuoteID: source.ID,
				CustomerID:    *target.CustomerID,
				MergedLines:   len(source.Items),
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge quotes")
	}
	target.Items = merged
	source.IsOpen = false
	return nil
}

func (s *service) findOpenOrNil(ctx context.Context, find func(context.Context, uuid.UUID) (*models.Quote, error), id uuid.UUID) (*models.Quote, error) {
	quote, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}
