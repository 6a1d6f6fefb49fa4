package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/repository"
)

// Delivery selects how catalog lifecycle events leave the service.
type Delivery string

const (
	// DeliveryOutbox records events in the mutation transaction; OutboxRelay publishes them.
	DeliveryOutbox Delivery = "outbox"
	// DeliveryDirect publishes after commit; a failed publish is logged, not returned.
	DeliveryDirect Delivery = "direct"
)

// ParseDelivery validates a delivery mode name.
func ParseDelivery(s string) (Delivery, error) {
	switch d := Delivery(strings.ToLower(strings.TrimSpace(s))); d {
	case DeliveryOutbox, DeliveryDirect:
		return d, nil
	default:
		return "", fmt.Errorf("unknown event delivery %q (want outbox or direct)", s)
	}
}

// CatalogService manages products and enforces that only the owner mutates them.
type CatalogService interface {
	Create(ctx context.Context, f model.ProductFields, ownerID, ownerName string) (model.Product, error)
	Update(ctx context.Context, id string, f model.ProductFields, callerID string) (model.Product, error)
	Delete(ctx context.Context, id, callerID string) error
	Get(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)
}

type CatalogServiceImpl struct {
	repo     repository.ProductRepository
	delivery Delivery
	pub      events.Publisher
	log      *zap.Logger
	now      func() time.Time

	publishTimeout time.Duration
}

// NewCatalogService constructs CatalogService. In outbox mode repo must record
// events itself and pub may be nil.
func NewCatalogService(repo repository.ProductRepository, delivery Delivery, pub events.Publisher, log *zap.Logger) (*CatalogServiceImpl, error) {
	if delivery == DeliveryDirect && pub == nil {
		return nil, fmt.Errorf("direct delivery needs a publisher")
	}
	if _, err := ParseDelivery(string(delivery)); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogServiceImpl{
		repo:           repo,
		delivery:       delivery,
		pub:            pub,
		log:            log,
		now:            time.Now,
		publishTimeout: 5 * time.Second,
	}, nil
}

// Create stores a new product owned by ownerID.
func (s *CatalogServiceImpl) Create(ctx context.Context, f model.ProductFields, ownerID, ownerName string) (model.Product, error) {
	if ownerID == "" {
		return model.Product{}, errs.Validation("empty owner")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Product{}, err
	}
	now := s.now().UTC()
	p, err := s.repo.Create(ctx, model.Product{
		ID:            id.String(),
		ProductFields: f,
		OwnerID:       ownerID,
		OwnerName:     ownerName,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return model.Product{}, err
	}
	s.publish(ctx, events.ForProduct(events.KindCreated, p, p.UpdatedAt))
	return p, nil
}

// Update replaces the mutable fields of id when callerID owns it.
func (s *CatalogServiceImpl) Update(ctx context.Context, id string, f model.ProductFields, callerID string) (model.Product, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if err := auth.RequireOwner(cur.OwnerID, callerID); err != nil {
		return model.Product{}, err
	}
	cur.ProductFields = f
	cur.UpdatedAt = s.now().UTC()
	p, err := s.repo.Update(ctx, cur)
	if err != nil {
		return model.Product{}, err
	}
	s.publish(ctx, events.ForProduct(events.KindUpdated, p, p.UpdatedAt))
	return p, nil
}

// Delete removes id when callerID owns it.
func (s *CatalogServiceImpl) Delete(ctx context.Context, id, callerID string) error {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(cur.OwnerID, callerID); err != nil {
		return err
	}
	snap, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, events.ForProduct(events.KindDeleted, snap, s.now()))
	return nil
}

func (s *CatalogServiceImpl) Get(ctx context.Context, id string) (model.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *CatalogServiceImpl) List(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

func (s *CatalogServiceImpl) ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *CatalogServiceImpl) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return s.repo.ListByCategory(ctx, category)
}

// Search matches keyword against product names, ignoring case. A blank keyword lists everything.
func (s *CatalogServiceImpl) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, keyword)
}

// publish sends ev in direct mode. The mutation is already committed, so the
// caller's cancellation must not abort the send.
func (s *CatalogServiceImpl) publish(ctx context.Context, ev events.Event) {
	if s.delivery != DeliveryDirect {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish lifecycle event",
			zap.String("type", string(ev.Type)),
			zap.String("resource", ev.ResourceID),
			zap.Error(err))
	}
}
