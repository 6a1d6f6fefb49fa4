package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs access tokens for the identity service.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer constructs an Issuer; key rules match NewVerifier.
func NewIssuer(key []byte, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Issuer{key: append([]byte(nil), key...), ttl: ttl, now: o.now}, nil
}

// Issue signs c with HS256. ExpiresAt in c is ignored and replaced by now+ttl.
func (i *Issuer) Issue(c Claims) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	tc := tokenClaims{
		UserID: c.UserID,
		Role:   string(c.Role),
		Name:   c.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(i.key)
	return signed, exp, err
}
