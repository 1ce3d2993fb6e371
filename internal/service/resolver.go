package service

import (
	"context"
	"strings"
	"time"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Outcome classifies the result of resolving a submitted code
type Outcome string

const (
	// OutcomeAuthorized means the code authorizes a door action right now
	OutcomeAuthorized Outcome = "authorized"
	// OutcomeNotFound means no order carries this code
	OutcomeNotFound Outcome = "not_found"
	// OutcomeBlocked means the order has a recent undelivered action. Shown
	// to the user as an invalid code so kiosk state does not leak.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeAlreadyPickedUp means the pickup grace window has passed
	OutcomeAlreadyPickedUp Outcome = "already_picked_up"
	// OutcomeOpeningNotConfigured means the booking window was never set
	OutcomeOpeningNotConfigured Outcome = "opening_not_configured"
	// OutcomeNotInOpeningWindow means now is outside the booking window
	OutcomeNotInOpeningWindow Outcome = "not_in_opening_window"
)

// Denied reports whether the outcome names a specific denial the user may see
func (o Outcome) Denied() bool {
	switch o {
	case OutcomeAlreadyPickedUp, OutcomeOpeningNotConfigured, OutcomeNotInOpeningWindow:
		return true
	}
	return false
}

// Resolution is the verdict for a submitted code
type Resolution struct {
	Outcome Outcome
	OrderID uint
	Action  model.Action
	Doors   []string
}

// Resolver decides whether a submitted code authorizes a door action. It is
// a pure query over the local store: resolving never mutates state, so
// callers may resolve speculatively.
type Resolver struct {
	orders  repository.OrderRepository
	pending repository.PendingActionRepository
	grace   time.Duration
	now     func() time.Time
}

// NewResolver creates a new code resolver. The grace window covers both
// pickup re-entry after completion and the lockout for orders with a recent
// undelivered action.
func NewResolver(orders repository.OrderRepository, pending repository.PendingActionRepository, grace time.Duration) *Resolver {
	return &Resolver{
		orders:  orders,
		pending: pending,
		grace:   grace,
		now:     time.Now,
	}
}

// Resolve evaluates a submitted code against the local replica
func (r *Resolver) Resolve(ctx context.Context, code string) (Resolution, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Resolution{Outcome: OutcomeNotFound}, nil
	}

	order, err := r.orders.FindByCode(ctx, trimmed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Resolution{Outcome: OutcomeNotFound}, nil
		}
		return Resolution{}, err
	}

	blocked, err := r.pending.HasRecentUnresolved(ctx, order.ID, r.grace)
	if err != nil {
		return Resolution{}, err
	}
	if blocked {
		log.Debug().Uint("order_id", order.ID).Msg("Order blocked by recent undelivered action")
		return Resolution{Outcome: OutcomeBlocked, OrderID: order.ID}, nil
	}

	// Pickup takes precedence when a code matches both fields. Codes are
	// expected to be unique across orders; a collision here means the
	// authority issued a duplicate.
	var resolution Resolution
	switch {
	case equalCode(order.PickupCode, trimmed):
		resolution = r.resolvePickup(order)
	case order.OpeningCode != nil && equalCode(*order.OpeningCode, trimmed):
		resolution = r.resolveOpening(order)
	default:
		return Resolution{Outcome: OutcomeNotFound}, nil
	}

	if resolution.Outcome == OutcomeAuthorized {
		doors, err := r.orders.DoorsForOrder(ctx, order.ID)
		if err != nil {
			return Resolution{}, err
		}
		resolution.Doors = doors
	}
	return resolution, nil
}

// resolvePickup validates a pickup-code match. A nil completion timestamp
// means not yet picked up; within the grace window the code stays valid so a
// jammed door can be retried with the same code.
func (r *Resolver) resolvePickup(order *model.Order) Resolution {
	if order.PickupTime == nil || !r.now().After(order.PickupTime.Add(r.grace)) {
		return Resolution{Outcome: OutcomeAuthorized, OrderID: order.ID, Action: model.ActionPickup}
	}
	return Resolution{Outcome: OutcomeAlreadyPickedUp, OrderID: order.ID}
}

// resolveOpening validates an opening-code match against the booking window,
// inclusive at both ends.
func (r *Resolver) resolveOpening(order *model.Order) Resolution {
	if order.OpeningStart == nil || order.OpeningEnd == nil {
		return Resolution{Outcome: OutcomeOpeningNotConfigured, OrderID: order.ID}
	}
	now := r.now()
	if now.Before(*order.OpeningStart) || now.After(*order.OpeningEnd) {
		return Resolution{Outcome: OutcomeNotInOpeningWindow, OrderID: order.ID}
	}
	return Resolution{Outcome: OutcomeAuthorized, OrderID: order.ID, Action: model.ActionOpening}
}

func equalCode(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
