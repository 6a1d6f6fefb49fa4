package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/FredericTischler/safe-zone/internal/api"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "mktctl")
}

func bearer(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get("authorization"); len(v) > 0 {
		return v[0]
	}
	return ""
}

type stubIdentity struct {
	api.IdentityServer
}

func (stubIdentity) Login(_ context.Context, in *api.LoginRequest) (*api.LoginResponse, error) {
	if in.Password != "pw" {
		return nil, status.Error(codes.Unauthenticated, "bad credentials")
	}
	return &api.LoginResponse{
		AccessToken: "tok-1",
		ExpiresAt:   timestamppb.New(time.Now().Add(time.Hour)),
		User:        api.User{ID: "u-1", Email: in.Email, Role: "SELLER"},
	}, nil
}

func (stubIdentity) GetUser(_ context.Context, in *api.GetUserRequest) (*api.GetUserResponse, error) {
	if in.ID != "u-1" {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &api.GetUserResponse{User: api.PublicUser{ID: "u-1", Name: "Alice", Role: "SELLER"}}, nil
}

type stubCatalog struct {
	api.CatalogServer
	mu   sync.Mutex
	auth []string
}

func (s *stubCatalog) CreateProduct(ctx context.Context, in *api.CreateProductRequest) (*api.ProductResponse, error) {
	s.mu.Lock()
	s.auth = append(s.auth, bearer(ctx))
	s.mu.Unlock()
	return &api.ProductResponse{Product: api.Product{ID: "p-1", ProductInput: in.Product, OwnerID: "u-1"}}, nil
}

func (s *stubCatalog) SearchProducts(_ context.Context, in *api.SearchProductsRequest) (*api.ProductsResponse, error) {
	return &api.ProductsResponse{Products: []api.Product{{ID: "p-1", ProductInput: api.ProductInput{Name: in.Keyword}}}}, nil
}

type stubMedia struct {
	api.MediaServer
	got *api.UploadMediaRequest
}

func (s *stubMedia) UploadMedia(_ context.Context, in *api.UploadMediaRequest) (*api.MediaResponse, error) {
	s.got = in
	return &api.MediaResponse{Media: api.Media{ID: "m-1", ResourceID: in.ResourceID, URL: "/media/file/p-1/x.png"}}, nil
}

type harness struct {
	catalog *stubCatalog
	media   *stubMedia
	dial    DialFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{catalog: &stubCatalog{}, media: &stubMedia{}}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterIdentityServer(srv, stubIdentity{})
	api.RegisterCatalogServer(srv, h.catalog)
	api.RegisterMediaServer(srv, h.media)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	h.dial = func(_ string, token string) (*grpc.ClientConn, error) {
		opts := []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			api.DialOption(),
		}
		if token != "" {
			opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: token}))
		}
		return grpc.NewClient("passthrough:///bufnet", opts...)
	}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	cmd := NewRootCommand(h.dial)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenStore(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasSuffix(tokenPath(), filepath.Join("mktctl", "token.json")) {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}

	if _, err := loadToken(); err == nil {
		t.Fatalf("expected error when token file missing")
	}
	if err := saveToken(tokenFile{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tf, err := loadToken()
	if err != nil || tf.AccessToken != "tok" {
		t.Fatalf("loadToken: tok=%q err=%v", tf.AccessToken, err)
	}
	fi, err := os.Stat(tokenPath())
	if err != nil || fi.Mode().Perm() != 0o600 {
		t.Fatalf("token file must be private: %v %v", fi, err)
	}

	if err := saveToken(tokenFile{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}

	if err := removeToken(); err != nil {
		t.Fatalf("removeToken: %v", err)
	}
	if err := removeToken(); err != nil {
		t.Fatalf("removeToken twice: %v", err)
	}
}

func TestLoginThenCreateProduct(t *testing.T) {
	withTmpConfig(t)
	h := newHarness(t)

	_, err := h.run("product", "create", "--name", "Lamp")
	require.ErrorContains(t, err, "login required")

	_, err = h.run("login", "--email", "a@x.io", "--password", "nope")
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	out, err := h.run("login", "--email", "a@x.io", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "SELLER")
	tf, err := loadToken()
	require.NoError(t, err)
	require.Equal(t, "u-1", tf.UserID)

	out, err = h.run("product", "create", "--name", "Lamp", "--price", "9.5", "--stock", "2")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Lamp"`)
	require.Contains(t, out, `"price": 9.5`)
	require.Equal(t, []string{"Bearer tok-1"}, h.catalog.auth)
}

func TestPublicCommandsNeedNoToken(t *testing.T) {
	withTmpConfig(t)
	h := newHarness(t)

	out, err := h.run("product", "search", "chair")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "chair"`)

	_, err = h.run("product", "search")
	require.Error(t, err)
}

func TestUserLookup(t *testing.T) {
	withTmpConfig(t)
	h := newHarness(t)

	out, err := h.run("user", "u-1")
	require.NoError(t, err)
	require.Contains(t, out, `"role": "SELLER"`)
	require.NotContains(t, out, "email")

	_, err = h.run("user", "u-2")
	require.Error(t, err)
}

func TestMediaUpload(t *testing.T) {
	withTmpConfig(t)
	h := newHarness(t)
	require.NoError(t, saveToken(tokenFile{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}))

	img := filepath.Join(t.TempDir(), "photo.PNG")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	_, err := h.run("media", "upload", img)
	require.ErrorContains(t, err, "--product")

	out, err := h.run("media", "upload", "--product", "p-1", img)
	require.NoError(t, err)
	require.Contains(t, out, "/media/file/p-1/x.png")
	require.Equal(t, "p-1", h.media.got.ResourceID)
	require.Equal(t, "image/png", h.media.got.ContentType)
	require.Equal(t, []byte("png"), h.media.got.Data)
}

func TestVersion(t *testing.T) {
	h := &harness{}
	out, err := h.run("version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "mktctl dev"))
}
