package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/repository"
)

type memMedia struct {
	mu   sync.Mutex
	rows map[string]model.Artifact
}

var _ repository.MediaRepository = (*memMedia)(nil)

func newMemMedia() *memMedia { return &memMedia{rows: map[string]model.Artifact{}} }

func (m *memMedia) Create(_ context.Context, a model.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.ID] = a
	return nil
}

func (m *memMedia) Get(_ context.Context, id string) (model.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return model.Artifact{}, errs.ErrNotFound
	}
	return a, nil
}

func (m *memMedia) ListByResource(_ context.Context, rid string) ([]model.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Artifact{}
	for _, a := range m.rows {
		if a.ResourceID == rid {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memMedia) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memMedia) ResourceIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, a := range m.rows {
		if !seen[a.ResourceID] {
			seen[a.ResourceID] = true
			out = append(out, a.ResourceID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memProducts struct {
	mu   sync.Mutex
	rows map[string]model.Product
}

var _ repository.ProductRepository = (*memProducts)(nil)

func newMemProducts() *memProducts { return &memProducts{rows: map[string]model.Product{}} }

func (m *memProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProducts) Update(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.ID]; !ok {
		return model.Product{}, errs.ErrNotFound
	}
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, id string) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	delete(m.rows, id)
	return p, nil
}

func (m *memProducts) Get(_ context.Context, id string) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) List(context.Context) ([]model.Product, error) { return nil, nil }
func (m *memProducts) ListByOwner(context.Context, string) ([]model.Product, error) {
	return nil, nil
}
func (m *memProducts) ListByCategory(context.Context, string) ([]model.Product, error) {
	return nil, nil
}
func (m *memProducts) Search(context.Context, string) ([]model.Product, error) { return nil, nil }

// ResourceOwner lets memProducts stand in for the catalog client.
func (m *memProducts) ResourceOwner(ctx context.Context, id string) (string, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}

type cleanerFunc func(ctx context.Context, rid string) error

func (f cleanerFunc) DeleteAllForResource(ctx context.Context, rid string) error { return f(ctx, rid) }
