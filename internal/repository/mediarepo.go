package repository

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/model"
)

// MediaRepository stores artifact metadata records.
type MediaRepository interface {
	Create(ctx context.Context, a model.Artifact) error
	Get(ctx context.Context, id string) (model.Artifact, error)
	ListByResource(ctx context.Context, resourceID string) ([]model.Artifact, error)
	// Delete removes one record; a missing record yields errs.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// ResourceIDs lists distinct resources that still have artifacts.
	ResourceIDs(ctx context.Context) ([]string, error)
}
