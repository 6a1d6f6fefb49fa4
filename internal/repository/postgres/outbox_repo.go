package postgres

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// OutboxRepo implements OutboxRepository using PostgreSQL.
type OutboxRepo struct{ db *DB }

// NewOutboxRepo constructs an outbox repository.
func NewOutboxRepo(db *DB) *OutboxRepo { return &OutboxRepo{db: db} }

// Unpublished returns pending rows in insertion order.
func (r *OutboxRepo) Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	const q = `
SELECT id, aggregate_id, event_type, payload, created_at
FROM outbox
WHERE published_at IS NULL
ORDER BY id ASC
LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OutboxEvent
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkPublished stamps published_at on row id.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	const q = `UPDATE outbox SET published_at=now() WHERE id=$1 AND published_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
