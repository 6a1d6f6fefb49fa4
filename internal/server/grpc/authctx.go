package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/FredericTischler/safe-zone/internal/auth"
)

type ctxKey string

const claimsKey ctxKey = "mkt.claims"

// WithClaims stores verified token claims in context.
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromCtx fetches the caller's claims from context.
func ClaimsFromCtx(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func caller(ctx context.Context) (auth.Claims, error) {
	c, ok := ClaimsFromCtx(ctx)
	if !ok || c.UserID == "" {
		return auth.Claims{}, status.Error(codes.Unauthenticated, "no auth")
	}
	return c, nil
}
