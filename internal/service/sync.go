package service

import (
	"context"
	"sync"
	"time"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Syncer pulls the authoritative order list and merges it into the local
// replica. A failed cycle is logged and skipped; the replica keeps serving
// code entry from whatever state it has.
type Syncer struct {
	orders repository.OrderRepository
	remote remote.Client

	mu       sync.Mutex
	lastSync time.Time
}

// NewSyncer creates a new order syncer
func NewSyncer(orders repository.OrderRepository, client remote.Client) *Syncer {
	return &Syncer{
		orders: orders,
		remote: client,
	}
}

// SyncNow fetches the full order list and applies it. Each order and its
// door mapping is applied as one transaction; an order that fails to apply
// does not abort the rest of the batch. Callable on demand by the code-entry
// loop when a code misses the local cache.
func (s *Syncer) SyncNow(ctx context.Context) error {
	payloads, err := s.remote.FetchOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "order sync failed")
	}

	applied := 0
	for _, payload := range payloads {
		order, doors := payload.ToModel()
		if order.ID == 0 {
			log.Warn().Msg("Skipping order payload without an order id")
			continue
		}
		if err := s.orders.SyncOrder(ctx, order, doors); err != nil {
			log.Error().Err(err).Uint("order_id", order.ID).Msg("Failed to apply synced order")
			continue
		}
		applied++
	}

	s.mu.Lock()
	s.lastSync = time.Now()
	s.mu.Unlock()

	log.Info().Int("fetched", len(payloads)).Int("applied", applied).Msg("Order sync complete")
	return nil
}

// RunOnce performs one sync cycle, downgrading failure to a log entry
func (s *Syncer) RunOnce(ctx context.Context) {
	if err := s.SyncNow(ctx); err != nil {
		log.Error().Err(err).Msg("Order sync cycle skipped")
	}
}

// LastSync returns when the last successful sync finished, zero if never
func (s *Syncer) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}
