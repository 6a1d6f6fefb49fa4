package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/repository"
)

// OutboxRelay moves committed outbox rows onto the event channel.
type OutboxRelay struct {
	repo repository.OutboxRepository
	pub  events.Publisher
	log  *zap.Logger
}

// NewOutboxRelay constructs a relay.
func NewOutboxRelay(repo repository.OutboxRepository, pub events.Publisher, log *zap.Logger) *OutboxRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxRelay{repo: repo, pub: pub, log: log}
}

// ProcessPending publishes up to limit unpublished rows, oldest first, and
// returns how many rows it settled. It stops at the first publish failure so a
// later event for the same resource never overtakes an earlier one.
func (r *OutboxRelay) ProcessPending(ctx context.Context, limit int) (int, error) {
	rows, err := r.repo.Unpublished(ctx, limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		ev, err := events.Decode(row.Payload)
		if err != nil {
			// Undecodable rows are marked published so they cannot stall the relay.
			r.log.Error("outbox row undecodable, skipping",
				zap.Int64("id", row.ID), zap.String("aggregate", row.AggregateID), zap.Error(err))
		} else if err := r.pub.Publish(ctx, ev); err != nil {
			return n, err
		}
		if err := r.repo.MarkPublished(ctx, row.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return n, err
		}
		n++
	}
	return n, nil
}

// Run polls every interval until ctx is done. Each tick drains full batches.
func (r *OutboxRelay) Run(ctx context.Context, interval time.Duration, batch int) {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		for {
			n, err := r.ProcessPending(ctx, batch)
			if err != nil {
				if ctx.Err() == nil {
					r.log.Warn("outbox relay", zap.Int("published", n), zap.Error(err))
				}
				break
			}
			if n < batch {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
