package service

import (
	"context"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/hardware"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/rs/zerolog/log"
)

// UnlockPoller carries out door openings requested through the website. It
// polls the authority for pending requests, opens each door, and confirms
// execution so the request is not replayed.
type UnlockPoller struct {
	remote remote.Client
	doors  hardware.DoorOpener
}

// NewUnlockPoller creates a new remote unlock poller
func NewUnlockPoller(client remote.Client, doors hardware.DoorOpener) *UnlockPoller {
	return &UnlockPoller{
		remote: client,
		doors:  doors,
	}
}

// PollOnce fetches and executes pending remote door requests. A request is
// only confirmed after its door actually opened; failures leave the request
// pending for the next poll.
func (p *UnlockPoller) PollOnce(ctx context.Context) {
	requests, err := p.remote.FetchDoorRequests(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Door request poll skipped")
		return
	}

	for _, req := range requests {
		door := string(req.Door)
		log.Info().Uint("request_id", uint(req.ID)).Str("door", door).Msg("Executing remote door request")
		if err := p.doors.OpenDoors([]string{door}); err != nil {
			log.Error().Err(err).Str("door", door).Msg("Failed to open remotely requested door")
			continue
		}
		if err := p.remote.MarkRequestExecuted(ctx, uint(req.ID)); err != nil {
			log.Warn().Err(err).Uint("request_id", uint(req.ID)).
				Msg("Door opened but request not confirmed, it may be replayed")
		}
	}
}
