package repository

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/model"
)

// ProductRepository stores catalog entries. Implementations may record the
// lifecycle event of each mutation in the same transaction.
type ProductRepository interface {
	// Create inserts p.
	Create(ctx context.Context, p model.Product) (model.Product, error)
	// Update replaces the mutable fields of p.ID. Owner columns are never written.
	Update(ctx context.Context, p model.Product) (model.Product, error)
	// Delete removes id and returns the row as it was before deletion.
	Delete(ctx context.Context, id string) (model.Product, error)
	// Get loads a product by id.
	Get(ctx context.Context, id string) (model.Product, error)
	// List returns all products, newest first.
	List(ctx context.Context) ([]model.Product, error)
	// ListByOwner returns products owned by ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error)
	// ListByCategory returns products in category.
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	// Search matches names case-insensitively.
	Search(ctx context.Context, keyword string) ([]model.Product, error)
}

// OutboxRepository reads and settles outbox rows written alongside mutations.
type OutboxRepository interface {
	// Unpublished returns up to limit unpublished rows, oldest first.
	Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	// MarkPublished stamps a row as delivered to the channel.
	MarkPublished(ctx context.Context, id int64) error
}
