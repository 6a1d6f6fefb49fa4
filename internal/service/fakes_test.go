package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/limiter"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/repository"
)

/************ users ************/

type fakeUsers struct {
	byEmail map[string]*model.User

	createErr error
	getErr    error
	avatarErr error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) byID(id string) *model.User {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u := f.byID(id); u != nil {
		c := *u
		return &c, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id, name string) (*model.User, error) {
	u := f.byID(id)
	if u == nil {
		return nil, errs.ErrNotFound
	}
	u.Name = name
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetAvatar(_ context.Context, id, avatar string) (string, error) {
	if f.avatarErr != nil {
		return "", f.avatarErr
	}
	u := f.byID(id)
	if u == nil {
		return "", errs.ErrNotFound
	}
	prev := u.Avatar
	u.Avatar = avatar
	return prev, nil
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	lastAccount  string
	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, account string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.lastAccount = account
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ products ************/

type fakeProducts struct {
	mu   sync.Mutex
	rows map[string]model.Product

	getErr    error
	updateErr error
	deleteErr error

	updates int
	deletes int
}

var _ repository.ProductRepository = (*fakeProducts)(nil)

func newFakeProducts(ps ...model.Product) *fakeProducts {
	f := &fakeProducts{rows: map[string]model.Product{}}
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; ok {
		return model.Product{}, errs.ErrAlreadyExists
	}
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, p model.Product) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return model.Product{}, f.updateErr
	}
	cur, ok := f.rows[p.ID]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	cur.ProductFields = p.ProductFields
	cur.UpdatedAt = p.UpdatedAt
	f.rows[p.ID] = cur
	return cur, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return model.Product{}, f.deleteErr
	}
	cur, ok := f.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	delete(f.rows, id)
	return cur, nil
}

func (f *fakeProducts) Get(_ context.Context, id string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.Product{}, f.getErr
	}
	p, ok := f.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) filter(keep func(model.Product) bool) []model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Product{}
	for _, p := range f.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeProducts) List(context.Context) ([]model.Product, error) {
	return f.filter(func(model.Product) bool { return true }), nil
}

func (f *fakeProducts) ListByOwner(_ context.Context, ownerID string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool { return p.OwnerID == ownerID }), nil
}

func (f *fakeProducts) ListByCategory(_ context.Context, category string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool { return p.Category == category }), nil
}

func (f *fakeProducts) Search(_ context.Context, keyword string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool { return containsFold(p.Name, keyword) }), nil
}

/************ media ************/

type fakeMedia struct {
	mu   sync.Mutex
	rows map[string]model.Artifact

	createErr error
	deleteErr map[string]error
	listErr   error
}

var _ repository.MediaRepository = (*fakeMedia)(nil)

func newFakeMedia() *fakeMedia {
	return &fakeMedia{rows: map[string]model.Artifact{}, deleteErr: map[string]error{}}
}

func (f *fakeMedia) Create(_ context.Context, a model.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[a.ID] = a
	return nil
}

func (f *fakeMedia) Get(_ context.Context, id string) (model.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return model.Artifact{}, errs.ErrNotFound
	}
	return a, nil
}

func (f *fakeMedia) ListByResource(_ context.Context, resourceID string) ([]model.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Artifact{}
	for _, a := range f.rows {
		if a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMedia) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMedia) ResourceIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, a := range f.rows {
		if !seen[a.ResourceID] {
			seen[a.ResourceID] = true
			out = append(out, a.ResourceID)
		}
	}
	sort.Strings(out)
	return out, nil
}

/************ outbox ************/

type fakeOutbox struct {
	rows      []model.OutboxEvent
	published map[int64]bool

	unpubErr error
	markErr  error
}

var _ repository.OutboxRepository = (*fakeOutbox)(nil)

func (f *fakeOutbox) add(ev events.Event) {
	b, _ := ev.Encode()
	f.rows = append(f.rows, model.OutboxEvent{
		ID: int64(len(f.rows) + 1), AggregateID: ev.ResourceID, EventType: string(ev.Type), Payload: b,
	})
}

func (f *fakeOutbox) Unpublished(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	if f.unpubErr != nil {
		return nil, f.unpubErr
	}
	var out []model.OutboxEvent
	for _, r := range f.rows {
		if !f.published[r.ID] && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	if f.published == nil {
		f.published = map[int64]bool{}
	}
	if f.published[id] {
		return errs.ErrNotFound
	}
	f.published[id] = true
	return nil
}

/************ blobs ************/

// flakyBlobs wraps a real store and fails removals of selected files.
type flakyBlobs struct {
	BlobStore
	failRemove map[string]error
}

func (f *flakyBlobs) Remove(dir, name string) error {
	if err := f.failRemove[name]; err != nil {
		return err
	}
	return f.BlobStore.Remove(dir, name)
}

/************ publisher ************/

type recPublisher struct {
	mu  sync.Mutex
	got []events.Event
	err error
}

func (p *recPublisher) Publish(ctx context.Context, ev events.Event) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, ev)
	return nil
}

func (p *recPublisher) events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.got...)
}

var errBoom = errors.New("boom")

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
