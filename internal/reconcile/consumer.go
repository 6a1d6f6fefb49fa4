// Package reconcile keeps media state consistent with the catalog by reacting
// to lifecycle events and by sweeping for orphans.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/events"
)

// Cleaner removes every artifact of a resource. It must be idempotent.
type Cleaner interface {
	DeleteAllForResource(ctx context.Context, resourceID string) error
}

// Consumer handles catalog lifecycle events on the media side.
type Consumer struct {
	cleaner Cleaner
	log     *zap.Logger
}

// NewConsumer constructs a Consumer.
func NewConsumer(c Cleaner, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{cleaner: c, log: log}
}

// Handle reacts to one event. Only DELETED has an effect; every other kind,
// known or not, is acknowledged as a no-op. A cleanup error is returned so the
// channel redelivers the event.
func (c *Consumer) Handle(ctx context.Context, ev events.Event) error {
	if ev.Type != events.KindDeleted {
		c.log.Debug("event ignored", zap.String("type", string(ev.Type)), zap.String("resource", ev.ResourceID))
		return nil
	}
	if err := c.cleaner.DeleteAllForResource(ctx, ev.ResourceID); err != nil {
		return fmt.Errorf("cleanup %s: %w", ev.ResourceID, err)
	}
	c.log.Info("resource artifacts removed", zap.String("resource", ev.ResourceID))
	return nil
}
