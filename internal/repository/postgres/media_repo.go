package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// MediaRepo implements MediaRepository using PostgreSQL.
type MediaRepo struct{ db *DB }

// NewMediaRepo constructs a media repository.
func NewMediaRepo(db *DB) *MediaRepo { return &MediaRepo{db: db} }

const mediaCols = `id, resource_id, filename, content_type, size, uploaded_by, url, created_at`

func scanArtifact(row scanner) (model.Artifact, error) {
	var a model.Artifact
	err := row.Scan(&a.ID, &a.ResourceID, &a.Filename, &a.ContentType, &a.Size, &a.UploadedBy, &a.URL, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Artifact{}, errs.ErrNotFound
	}
	return a, err
}

// Create inserts a metadata record.
func (r *MediaRepo) Create(ctx context.Context, a model.Artifact) error {
	const q = `
INSERT INTO media (` + mediaCols + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.ResourceID, a.Filename, a.ContentType, a.Size, a.UploadedBy, a.URL, a.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get loads one record.
func (r *MediaRepo) Get(ctx context.Context, id string) (model.Artifact, error) {
	const q = `SELECT ` + mediaCols + ` FROM media WHERE id=$1`
	return scanArtifact(r.db.Pool.QueryRow(ctx, q, id))
}

// ListByResource returns records of one resource in upload order.
func (r *MediaRepo) ListByResource(ctx context.Context, resourceID string) ([]model.Artifact, error) {
	const q = `SELECT ` + mediaCols + ` FROM media WHERE resource_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes one record.
func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM media WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ResourceIDs lists resources that own at least one record.
func (r *MediaRepo) ResourceIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT resource_id FROM media ORDER BY resource_id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
