package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// ProductRepo implements ProductRepository using PostgreSQL.
type ProductRepo struct {
	db     *DB
	outbox bool
	now    func() time.Time
}

// ProductOption configures a ProductRepo.
type ProductOption func(*ProductRepo)

// WithOutbox makes every mutation insert its lifecycle event into the outbox
// table inside the mutation's transaction.
func WithOutbox() ProductOption {
	return func(r *ProductRepo) { r.outbox = true }
}

// NewProductRepo constructs a product repository.
func NewProductRepo(db *DB, opts ...ProductOption) *ProductRepo {
	r := &ProductRepo{db: db, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

const productCols = `id, name, description, price, category, stock, owner_id, owner_name, created_at, updated_at`

func scanProduct(row scanner) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock,
		&p.OwnerID, &p.OwnerName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, errs.ErrNotFound
	}
	return p, err
}

// record writes ev to the outbox when enabled.
func (r *ProductRepo) record(ctx context.Context, tx pgx.Tx, ev events.Event) error {
	if !r.outbox {
		return nil
	}
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	const q = `INSERT INTO outbox (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`
	_, err = tx.Exec(ctx, q, ev.ResourceID, string(ev.Type), payload)
	return err
}

// Create inserts a product row.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO products (` + productCols + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		if _, err := tx.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock,
			p.OwnerID, p.OwnerName, p.CreatedAt, p.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		return r.record(ctx, tx, events.ForProduct(events.KindCreated, p, p.UpdatedAt))
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Update writes the mutable fields; owner columns are read back, never written.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE products
SET name=$2, description=$3, price=$4, category=$5, stock=$6, updated_at=$7
WHERE id=$1
RETURNING owner_id, owner_name, created_at`
		err := tx.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.UpdatedAt).
			Scan(&p.OwnerID, &p.OwnerName, &p.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		if err != nil {
			return err
		}
		return r.record(ctx, tx, events.ForProduct(events.KindUpdated, p, p.UpdatedAt))
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Delete hard-deletes id and returns the pre-deletion snapshot.
func (r *ProductRepo) Delete(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		const q = `DELETE FROM products WHERE id=$1 RETURNING ` + productCols
		var err error
		if p, err = scanProduct(tx.QueryRow(ctx, q, id)); err != nil {
			return err
		}
		return r.record(ctx, tx, events.ForProduct(events.KindDeleted, p, r.now()))
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Get loads a product by id.
func (r *ProductRepo) Get(ctx context.Context, id string) (model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id=$1`
	return scanProduct(r.db.Pool.QueryRow(ctx, q, id))
}

// List returns all products, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products ORDER BY created_at DESC`
	return r.query(ctx, q)
}

// ListByOwner returns products owned by ownerID.
func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE owner_id=$1 ORDER BY created_at DESC`
	return r.query(ctx, q, ownerID)
}

// ListByCategory returns products in category.
func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE category=$1 ORDER BY created_at DESC`
	return r.query(ctx, q, category)
}

// Search matches keyword anywhere in the name, ignoring case.
func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at DESC`
	return r.query(ctx, q, likeEscape(keyword))
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
