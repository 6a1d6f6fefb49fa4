package grpcserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

type fakeCatalog struct {
	mu   sync.Mutex
	rows map[string]model.Product
	seq  int
}

func newFakeCatalog() *fakeCatalog { return &fakeCatalog{rows: map[string]model.Product{}} }

func (f *fakeCatalog) Create(_ context.Context, fl model.ProductFields, ownerID, ownerName string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p := model.Product{ID: "p-" + string(rune('0'+f.seq)), ProductFields: fl, OwnerID: ownerID, OwnerName: ownerName, CreatedAt: time.Now()}
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakeCatalog) Update(_ context.Context, id string, fl model.ProductFields, callerID string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	if err := auth.RequireOwner(p.OwnerID, callerID); err != nil {
		return model.Product{}, err
	}
	p.ProductFields = fl
	f.rows[id] = p
	return p, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id, callerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	if err := auth.RequireOwner(p.OwnerID, callerID); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (model.Product, error) {
	if id == "panic" {
		panic("boom")
	}
	if id == "broken" {
		return model.Product{}, errBackend
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return model.Product{}, errs.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) filter(keep func(model.Product) bool) []model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, p := range f.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) List(context.Context) ([]model.Product, error) {
	return f.filter(func(model.Product) bool { return true }), nil
}

func (f *fakeCatalog) ListByOwner(_ context.Context, ownerID string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool { return p.OwnerID == ownerID }), nil
}

func (f *fakeCatalog) ListByCategory(_ context.Context, c string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool { return p.Category == c }), nil
}

func (f *fakeCatalog) Search(_ context.Context, kw string) ([]model.Product, error) {
	return f.filter(func(p model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(kw))
	}), nil
}

type fakeMedia struct {
	mu   sync.Mutex
	rows map[string]model.Artifact
	last model.UploadInput
}

func newFakeMedia() *fakeMedia { return &fakeMedia{rows: map[string]model.Artifact{}} }

func (f *fakeMedia) Upload(_ context.Context, in model.UploadInput) (model.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(in.Data) == 0 {
		return model.Artifact{}, errs.ErrEmptyFile
	}
	f.last = in
	a := model.Artifact{ID: "m-1", ResourceID: in.ResourceID, Filename: "f.png", ContentType: in.ContentType,
		Size: int64(len(in.Data)), UploadedBy: in.UploaderID, URL: "/media/file/" + in.ResourceID + "/f.png"}
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeMedia) Fetch(context.Context, string, string) ([]byte, string, error) {
	return nil, "", errs.ErrNotFound
}

func (f *fakeMedia) DeleteOne(_ context.Context, id, callerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	if err := auth.RequireOwner(a.UploadedBy, callerID); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMedia) DeleteAllForResource(context.Context, string) error { return nil }

func (f *fakeMedia) ListByResource(_ context.Context, rid string) ([]model.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Artifact
	for _, a := range f.rows {
		if a.ResourceID == rid {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAuth struct {
	lastIP   string
	lastRole model.Role
	user     model.User
	issuer   *auth.Issuer
}

func (f *fakeAuth) Register(_ context.Context, name, email, password string, role model.Role) (string, error) {
	if email == "taken@x.io" {
		return "", errs.ErrAlreadyExists
	}
	f.lastRole = role
	return "u-new", nil
}

func (f *fakeAuth) LoginWithIP(_ context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	f.lastIP = ip
	if email != f.user.Email || password != "pw" {
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}
	tok, exp, err := f.issuer.Issue(auth.Claims{Subject: f.user.Email, UserID: f.user.ID, Name: f.user.Name, Role: f.user.Role})
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: tok, ExpiresAt: exp}, f.user, nil
}

func (f *fakeAuth) Profile(_ context.Context, id string) (model.User, error) {
	if id != f.user.ID {
		return model.User{}, errs.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, id, name string) (model.User, error) {
	if id != f.user.ID {
		return model.User{}, errs.ErrNotFound
	}
	f.user.Name = name
	return f.user, nil
}

func (f *fakeAuth) UploadAvatar(_ context.Context, id string, data []byte, _ string) (string, error) {
	if len(data) == 0 {
		return "", errs.ErrEmptyFile
	}
	return "/avatars/file/" + id + "/a.png", nil
}

func (f *fakeAuth) FetchAvatar(context.Context, string, string) ([]byte, string, error) {
	return nil, "", errs.ErrNotFound
}
