package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/metrics"
)

// ResourceLister lists resources that currently own artifacts.
type ResourceLister interface {
	ResourceIDs(ctx context.Context) ([]string, error)
}

// Catalog resolves a resource's owner; errs.ErrNotFound means it no longer exists.
type Catalog interface {
	ResourceOwner(ctx context.Context, resourceID string) (string, error)
}

// Sweeper removes artifacts whose resource is gone from the catalog. It covers
// events that were never published or ended up dead-lettered.
type Sweeper struct {
	lister  ResourceLister
	catalog Catalog
	cleaner Cleaner
	log     *zap.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(l ResourceLister, c Catalog, cl Cleaner, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{lister: l, catalog: c, cleaner: cl, log: log}
}

// SweepOnce checks every resource once and returns how many were cleaned.
// Lookup failures skip the resource; nothing is deleted on doubt.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	ids, err := s.lister.ResourceIDs(ctx)
	if err != nil {
		return 0, err
	}
	var (
		cleaned int
		errList error
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			return cleaned, multierr.Append(errList, ctx.Err())
		}
		_, err := s.catalog.ResourceOwner(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrNotFound) {
			errList = multierr.Append(errList, err)
			continue
		}
		if err := s.cleaner.DeleteAllForResource(ctx, id); err != nil {
			errList = multierr.Append(errList, err)
			continue
		}
		cleaned++
		metrics.SweeperRemovalsTotal.Inc()
		s.log.Info("orphaned artifacts removed", zap.String("resource", id))
	}
	return cleaned, errList
}

// Run sweeps every interval until ctx is done. A non-positive interval disables it.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if n, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("sweep", zap.Int("cleaned", n), zap.Error(err))
		}
	}
}
