package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, name, email, pwd_hash, salt_auth, role, avatar, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PwdHash, &u.SaltAuth, &role, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, name, email, pwd_hash, salt_auth, role, avatar, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Name, u.Email, u.PwdHash, u.SaltAuth, string(u.Role), u.Avatar, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// UpdateName sets the display name.
func (r *UserRepo) UpdateName(ctx context.Context, id, name string) (*model.User, error) {
	const q = `
UPDATE users SET name=$2, updated_at=now()
WHERE id=$1
RETURNING ` + userCols
	return scanUser(r.db.Pool.QueryRow(ctx, q, id, name))
}

// SetAvatar swaps the avatar locator under a row lock and returns the old one.
func (r *UserRepo) SetAvatar(ctx context.Context, id, avatar string) (prev string, err error) {
	err = r.db.withTx(ctx, func(tx pgx.Tx) error {
		const sel = `SELECT avatar FROM users WHERE id=$1 FOR UPDATE`
		if err := tx.QueryRow(ctx, sel, id).Scan(&prev); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		const upd = `UPDATE users SET avatar=$2, updated_at=now() WHERE id=$1`
		_, err := tx.Exec(ctx, upd, id, avatar)
		return err
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}
