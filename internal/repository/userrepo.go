// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/model"
)

// UserRepository provides access to identity accounts.
type UserRepository interface {
	// Create inserts a new user; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateName changes the display name and returns the updated user.
	UpdateName(ctx context.Context, id, name string) (*model.User, error)
	// SetAvatar stores a new avatar locator and returns the previous one.
	SetAvatar(ctx context.Context, id, avatar string) (prev string, err error)
}
