// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

// Role is the marketplace role carried in identity claims.
type Role string

// Known roles.
const (
	RoleClient Role = "CLIENT"
	RoleSeller Role = "SELLER"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleClient:
		return RoleClient, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", errs.Validation("unknown role %q", s)
	}
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account stored by the identity service.
type User struct {
	ID        string // uuid
	Name      string
	Email     string // unique, used as token subject
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	Role      Role
	Avatar    string // locator of the current avatar, empty if none
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductFields are the mutable attributes of a product.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int64
}

// Validate checks field-level constraints at the API boundary.
func (f ProductFields) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return errs.Validation("name is required")
	case f.Price < 0:
		return errs.Validation("price must be >= 0")
	case f.Stock < 0:
		return errs.Validation("stock must be >= 0")
	}
	return nil
}

// Product is a catalog entry. OwnerID and OwnerName never change after creation.
type Product struct {
	ID string
	ProductFields
	OwnerID   string
	OwnerName string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Artifact is a stored media file plus its metadata record.
type Artifact struct {
	ID          string
	ResourceID  string // product id, referenced by value
	Filename    string // server generated
	ContentType string
	Size        int64
	UploadedBy  string
	URL         string
	CreatedAt   time.Time
}

// UploadInput is an upload request after transport decoding.
type UploadInput struct {
	Data        []byte
	ContentType string
	ResourceID  string
	UploaderID  string
}

// OutboxEvent is a lifecycle event persisted with the catalog mutation that produced it.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
