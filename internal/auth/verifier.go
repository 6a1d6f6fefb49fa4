// Package auth verifies and issues capability tokens and holds the ownership checks
// shared by every service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/model"
)

// MinKeyLen is the shortest accepted HS256 key.
const MinKeyLen = 32

// Claims is the identity reconstructed from a verified token.
type Claims struct {
	Subject   string // email
	UserID    string
	Name      string
	Role      model.Role
	ExpiresAt time.Time
}

// tokenClaims is the on-the-wire claim set.
type tokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Option tunes a Verifier or Issuer.
type Option func(*options)

type options struct {
	now    func() time.Time
	leeway time.Duration
}

// WithClock overrides the time source used for expiry checks and issuance.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLeeway tolerates small clock skew when checking exp/nbf.
func WithLeeway(d time.Duration) Option {
	return func(o *options) { o.leeway = d }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func checkKey(key []byte) error {
	if len(key) < MinKeyLen {
		return fmt.Errorf("auth: signing key must be at least %d bytes, got %d", MinKeyLen, len(key))
	}
	return nil
}

// Verifier checks HS256 tokens against a pre-shared key. Safe for concurrent use.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

// NewVerifier copies key and returns a verifier. Short keys are rejected.
func NewVerifier(key []byte, opts ...Option) (*Verifier, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Verifier{
		key: append([]byte(nil), key...),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(o.now),
			jwt.WithLeeway(o.leeway),
		),
	}, nil
}

// Verify checks signature, algorithm and expiry, then the optional subject.
// An empty expectedSubject skips the subject check.
func (v *Verifier) Verify(token, expectedSubject string) (Claims, error) {
	var tc tokenClaims
	parsed, err := v.parser.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, errs.ErrTokenExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", errs.ErrTokenInvalid, err)
	case !parsed.Valid:
		return Claims{}, errs.ErrTokenInvalid
	}

	if expectedSubject != "" && tc.Subject != expectedSubject {
		return Claims{}, errs.ErrSubjectMismatch
	}

	c := Claims{
		Subject: tc.Subject,
		UserID:  tc.UserID,
		Name:    tc.Name,
		Role:    model.Role(tc.Role),
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
