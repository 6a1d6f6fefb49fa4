package grpcserver

import (
	"context"
	"strings"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/convert"
	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/service"
)

// IdentityServer serves accounts, login and profiles.
type IdentityServer struct {
	auth service.AuthService
}

var _ api.IdentityServer = (*IdentityServer)(nil)

func NewIdentityServer(auth service.AuthService) *IdentityServer {
	return &IdentityServer{auth: auth}
}

// Register creates a new user account.
func (s *IdentityServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	id, err := s.auth.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	return &api.RegisterResponse{UserID: id}, nil
}

// Login authenticates a user and returns a signed access token.
func (s *IdentityServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tok, u, err := s.auth.LoginWithIP(ctx, req.Email, req.Password, remoteIP(ctx))
	if err != nil {
		return nil, err
	}
	return convert.ToLoginResponse(tok, u), nil
}

func (s *IdentityServer) Profile(ctx context.Context, _ *api.ProfileRequest) (*api.ProfileResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.auth.Profile(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return &api.ProfileResponse{User: convert.ToAPIUser(u)}, nil
}

func (s *IdentityServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.ProfileResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.auth.UpdateProfile(ctx, c.UserID, req.Name)
	if err != nil {
		return nil, err
	}
	return &api.ProfileResponse{User: convert.ToAPIUser(u)}, nil
}

// UploadAvatar replaces the caller's profile image.
func (s *IdentityServer) UploadAvatar(ctx context.Context, req *api.UploadAvatarRequest) (*api.UploadAvatarResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.auth.UploadAvatar(ctx, c.UserID, req.Data, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &api.UploadAvatarResponse{URL: url}, nil
}

// GetUser returns the public view of any account, e.g. to check that a seller exists.
func (s *IdentityServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.GetUserResponse, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, errs.Validation("user id is required")
	}
	u, err := s.auth.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &api.GetUserResponse{User: convert.ToPublicUser(u)}, nil
}
