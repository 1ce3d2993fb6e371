// Package kiosk runs the foreground code-entry loop. It owns the hardware
// collaborators and is the only place physical I/O happens; the resolver,
// syncer and reporter stay pure of device handles.
package kiosk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/cache"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/hardware"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
	"github.com/rs/zerolog/log"
)

// Kiosk wires the code-entry loop to the core services and the hardware
type Kiosk struct {
	resolver *service.Resolver
	syncer   *service.Syncer
	reporter Reporter
	doors    hardware.DoorOpener
	display  hardware.Display
	input    hardware.CodeInput
	throttle *cache.RedisCache

	openAllCode string
	allDoors    []string
	now         func() time.Time
}

// Reporter is the slice of the action reporter the loop needs
type Reporter interface {
	Report(ctx context.Context, orderID uint, action model.Action, when time.Time) error
}

// New creates the foreground kiosk loop
func New(
	resolver *service.Resolver,
	syncer *service.Syncer,
	reporter Reporter,
	doors hardware.DoorOpener,
	display hardware.Display,
	input hardware.CodeInput,
	throttle *cache.RedisCache,
	openAllCode string,
	allDoors []string,
) *Kiosk {
	return &Kiosk{
		resolver:    resolver,
		syncer:      syncer,
		reporter:    reporter,
		doors:       doors,
		display:     display,
		input:       input,
		throttle:    throttle,
		openAllCode: openAllCode,
		allDoors:    allDoors,
		now:         time.Now,
	}
}

// Run consumes submitted codes until the context is cancelled
func (k *Kiosk) Run(ctx context.Context) error {
	log.Info().Msg("Kiosk ready for code entry")
	for {
		code, err := k.input.ReadCode(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if code == "" {
			continue
		}
		k.HandleCode(ctx, code)
	}
}

// HandleCode processes one submitted code end to end: resolve, open doors,
// report. A code that misses the local cache triggers an on-demand sync and
// one more resolution attempt, covering orders created since the last cycle.
func (k *Kiosk) HandleCode(ctx context.Context, code string) {
	if k.openAllCode != "" && strings.TrimSpace(code) == k.openAllCode {
		k.display.Show("Opening ALL doors")
		if err := k.doors.OpenDoors(k.allDoors); err != nil {
			log.Error().Err(err).Msg("Failed to open all doors")
		}
		k.display.Clear()
		return
	}

	if throttled, err := k.throttle.Throttled(ctx); err != nil {
		log.Warn().Err(err).Msg("Throttle check failed, continuing without it")
	} else if throttled {
		log.Warn().Msg("Too many invalid codes, rejecting without lookup")
		k.display.Show("Too many tries!", "Wait a minute")
		return
	}

	k.display.Show("Checking...")
	resolution := k.resolve(ctx, code)

	switch resolution.Outcome {
	case service.OutcomeAuthorized:
		k.admit(ctx, resolution)
	case service.OutcomeAlreadyPickedUp:
		k.display.Show("Order already", "picked up!")
	case service.OutcomeNotInOpeningWindow:
		k.display.Show("Booking not", "active!")
	case service.OutcomeOpeningNotConfigured:
		k.display.Show("Opening not", "configured!")
	default:
		// NotFound and Blocked look identical to the user
		k.registerInvalid(ctx)
		k.display.Show("Invalid Code!")
	}
}

// resolve consults the local replica, falling back to a synchronous sync for
// codes the replica has not seen yet.
func (k *Kiosk) resolve(ctx context.Context, code string) service.Resolution {
	resolution, err := k.resolver.Resolve(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Code resolution failed")
		return service.Resolution{Outcome: service.OutcomeNotFound}
	}
	if resolution.Outcome != service.OutcomeNotFound {
		return resolution
	}

	k.display.Show("Checking online")
	if err := k.syncer.SyncNow(ctx); err != nil {
		log.Warn().Err(err).Msg("On-demand sync failed, keeping local verdict")
		return resolution
	}

	retried, err := k.resolver.Resolve(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Code resolution failed after sync")
		return resolution
	}
	return retried
}

// admit opens the doors for an authorized action and then reports it. The
// physical opening always goes ahead; a failed report is queued for retry
// and never shown to the user.
func (k *Kiosk) admit(ctx context.Context, res service.Resolution) {
	openedAt := k.now()

	k.display.Show("Accepted order:", fmt.Sprintf("%d", res.OrderID))
	log.Info().Uint("order_id", res.OrderID).Str("action", string(res.Action)).
		Strs("doors", res.Doors).Msg("Code accepted, opening doors")

	k.display.Show("Opening door " + strings.Join(res.Doors, ","))
	if err := k.doors.OpenDoors(res.Doors); err != nil {
		log.Error().Err(err).Uint("order_id", res.OrderID).Msg("Failed to open doors")
	}

	if err := k.reporter.Report(ctx, res.OrderID, res.Action, openedAt); err != nil {
		log.Warn().Err(err).Uint("order_id", res.OrderID).Msg("Action report deferred to outbox")
	}

	k.display.Show("Done!")
	k.display.Clear()
}

func (k *Kiosk) registerInvalid(ctx context.Context) {
	if exhausted, err := k.throttle.RegisterFailure(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to register invalid attempt")
	} else if exhausted {
		log.Warn().Msg("Invalid code budget exhausted, throttling engaged")
	}
}
