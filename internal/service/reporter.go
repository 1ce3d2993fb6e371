package service

import (
	"context"
	"time"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Reporter delivers completed door actions to the remote authority. Delivery
// is best effort: the doors have already opened by the time Report runs, so a
// failure is queued into the outbox instead of being surfaced to the user.
type Reporter struct {
	pending repository.PendingActionRepository
	remote  remote.Client
}

// NewReporter creates a new action reporter
func NewReporter(pending repository.PendingActionRepository, client remote.Client) *Reporter {
	return &Reporter{
		pending: pending,
		remote:  client,
	}
}

// Report notifies the authority of a completed action. On any failure the
// action is recorded as a pending action for the drainer to retry, and the
// remote error is returned so the caller can log it.
func (r *Reporter) Report(ctx context.Context, orderID uint, action model.Action, when time.Time) error {
	err := r.remote.ReportAction(ctx, orderID, action, when)
	if err == nil {
		log.Info().Uint("order_id", orderID).Str("action", string(action)).Msg("Action reported to authority")
		return nil
	}

	log.Warn().Err(err).Uint("order_id", orderID).Str("action", string(action)).
		Msg("Failed to report action, queueing for retry")

	if _, recordErr := r.pending.Record(ctx, orderID, action, when); recordErr != nil {
		// The action happened but is now recorded nowhere.
		log.Error().Err(recordErr).Uint("order_id", orderID).
			Msg("Failed to queue unreported action")
		return errors.Wrap(recordErr, "failed to queue unreported action")
	}
	return errors.Wrap(err, "action report failed")
}
