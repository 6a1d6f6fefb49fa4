package auth

import (
	"slices"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// RequireOwner fails with ErrNotOwner unless callerID owns the resource.
func RequireOwner(ownerID, callerID string) error {
	if ownerID == "" || ownerID != callerID {
		return errs.ErrNotOwner
	}
	return nil
}

// RequireRole fails with ErrForbidden unless c carries one of roles.
func RequireRole(c Claims, roles ...model.Role) error {
	if slices.Contains(roles, c.Role) {
		return nil
	}
	return errs.ErrForbidden
}
