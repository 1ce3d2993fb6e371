package service

import (
	"context"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/rs/zerolog/log"
)

// Drainer retries queued pending actions against the remote authority. Items
// are processed independently: a failure leaves the entry unresolved for the
// next cycle and never aborts the rest of the batch.
type Drainer struct {
	pending repository.PendingActionRepository
	remote  remote.Client
}

// NewDrainer creates a new outbox drainer
func NewDrainer(pending repository.PendingActionRepository, client remote.Client) *Drainer {
	return &Drainer{
		pending: pending,
		remote:  client,
	}
}

// DrainOnce attempts delivery of every unresolved pending action, passing
// the original action timestamp. Returns the number of entries resolved.
func (d *Drainer) DrainOnce(ctx context.Context) int {
	actions, err := d.pending.ListUnresolved(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list unresolved actions")
		return 0
	}
	if len(actions) == 0 {
		return 0
	}

	resolved := 0
	for _, action := range actions {
		if err := d.remote.ReportAction(ctx, action.OrderID, action.Action, action.ActionTime); err != nil {
			log.Warn().Err(err).Uint("order_id", action.OrderID).Str("action", string(action.Action)).
				Msg("Retry of queued action failed, keeping it queued")
			continue
		}
		if err := d.pending.MarkResolved(ctx, action.ID); err != nil {
			log.Error().Err(err).Str("id", action.ID.String()).Msg("Failed to mark action resolved")
			continue
		}
		resolved++
	}

	log.Info().Int("queued", len(actions)).Int("resolved", resolved).Msg("Outbox drain complete")
	return resolved
}
