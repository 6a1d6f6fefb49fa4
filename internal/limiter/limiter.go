// Package limiter throttles repeated failed logins per (account, client address).
package limiter

import (
	"context"
	"crypto/sha256"
	"strings"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login may be attempted now and, if not, for how long it stays blocked.
	Allow(ctx context.Context, account string, ipHash []byte) (bool, time.Duration, error)
	// Success clears the counters after a successful login.
	Success(ctx context.Context, account string, ipHash []byte) error
	// Failure records a failed attempt and reports whether it triggered a block.
	Failure(ctx context.Context, account string, ipHash []byte) (bool, time.Duration, error)
}

// Policy bounds login failures: MaxFails inside Window blocks the pair for BlockFor.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// DefaultPolicy is used when a field of a Policy is left zero.
var DefaultPolicy = Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}

func (p Policy) withDefaults() Policy {
	if p.Window <= 0 {
		p.Window = DefaultPolicy.Window
	}
	if p.MaxFails <= 0 {
		p.MaxFails = DefaultPolicy.MaxFails
	}
	if p.BlockFor <= 0 {
		p.BlockFor = DefaultPolicy.BlockFor
	}
	return p
}

// HashIP returns a stable hash of the client address so raw IPs are never stored.
// The digest is raw bytes and is stored in a bytea column.
// The port part of host:port is ignored.
func HashIP(addr string) []byte {
	h := sha256.Sum256([]byte(hostOnly(addr)))
	return h[:]
}

func hostOnly(addr string) string {
	if strings.HasPrefix(addr, "[") {
		if i := strings.Index(addr, "]"); i > 0 {
			return addr[1:i]
		}
	}
	if strings.Count(addr, ":") == 1 {
		return addr[:strings.IndexByte(addr, ':')]
	}
	return addr
}

// Account normalizes a login key so "Alice@X.io" and "alice@x.io" share counters.
func Account(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
