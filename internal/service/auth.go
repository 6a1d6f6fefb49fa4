// Package service contains the application services of the identity, catalog and media processes.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/auth"
	pkgcrypto "github.com/FredericTischler/safe-zone/internal/crypto"
	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/limiter"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/repository"
	"github.com/FredericTischler/safe-zone/internal/upload"
)

// AvatarCollection is the locator collection of profile images.
const AvatarCollection = "avatars"

// AuthService defines account, login and profile operations.
type AuthService interface {
	// Register creates a new account and returns its id.
	Register(ctx context.Context, name, email, password string, role model.Role) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	Profile(ctx context.Context, userID string) (model.User, error)
	UpdateProfile(ctx context.Context, userID, name string) (model.User, error)
	// UploadAvatar stores a new profile image and returns its locator.
	UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error)
	FetchAvatar(ctx context.Context, userID, filename string) ([]byte, string, error)
}

type AuthServiceImpl struct {
	users   repository.UserRepository
	issuer  *auth.Issuer
	lim     limiter.Limiter
	avatars BlobStore
	policy  upload.Policy
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
// A zero avatar policy means the default avatar ceiling.
func NewAuthService(users repository.UserRepository, issuer *auth.Issuer, lim limiter.Limiter, avatars BlobStore, policy upload.Policy, log *zap.Logger) *AuthServiceImpl {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = upload.AvatarMaxBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, issuer: issuer, lim: lim, avatars: avatars, policy: policy, log: log, now: time.Now}
}

// Register creates a new user record with a per-user salt.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string, role model.Role) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.Validation("empty name")
	}
	email = limiter.Account(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errs.Validation("bad email %q", email)
	}
	if err := pkgcrypto.CheckPassword(password); err != nil {
		return "", err
	}
	role, err := model.ParseRole(string(role))
	if err != nil {
		return "", err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, salt, err := pkgcrypto.NewCredential(password)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	u := &model.User{
		ID:        uid.String(),
		Name:      name,
		Email:     email,
		PwdHash:   hash,
		SaltAuth:  salt,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	account := limiter.Account(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, account, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, account)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.User{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		blocked, _, ferr := s.lim.Failure(ctx, account, ipHash)
		if ferr != nil {
			s.log.Warn("limiter record failure", zap.Error(ferr))
		} else if blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// Unknown email and wrong password look the same.
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	if err := s.lim.Success(ctx, account, ipHash); err != nil {
		s.log.Warn("limiter reset", zap.Error(err))
	}

	tok, exp, err := s.issuer.Issue(auth.Claims{
		Subject: u.Email,
		UserID:  u.ID,
		Name:    u.Name,
		Role:    u.Role,
	})
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: tok, ExpiresAt: exp}, *u, nil
}

func (s *AuthServiceImpl) Profile(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// UpdateProfile changes the display name. Tokens issued earlier keep the old name until they expire.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errs.Validation("empty name")
	}
	u, err := s.users.UpdateName(ctx, userID, name)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// UploadAvatar validates in the same order as media uploads, stores the file
// under the user's directory and drops the previous avatar file.
func (s *AuthServiceImpl) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	ct, err := s.policy.Check(int64(len(data)), contentType)
	if err != nil {
		return "", err
	}
	fn, err := upload.NewFilename(ct)
	if err != nil {
		return "", err
	}
	if err := s.avatars.Put(userID, fn, data); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	loc := upload.Locator(AvatarCollection, userID, fn)
	prev, err := s.users.SetAvatar(ctx, userID, loc)
	if err != nil {
		if rerr := s.avatars.Remove(userID, fn); rerr != nil {
			s.log.Warn("remove avatar after failed update", zap.String("file", fn), zap.Error(rerr))
		}
		return "", err
	}
	if prev != "" && prev != loc {
		if err := s.avatars.Remove(userID, path.Base(prev)); err != nil {
			s.log.Warn("remove previous avatar", zap.String("user", userID), zap.Error(err))
		}
	}
	return loc, nil
}

// FetchAvatar returns an avatar file and its content type.
func (s *AuthServiceImpl) FetchAvatar(_ context.Context, userID, filename string) ([]byte, string, error) {
	b, err := s.avatars.Get(userID, filename)
	if err != nil {
		return nil, "", err
	}
	return b, upload.ContentTypeFor(filename), nil
}
