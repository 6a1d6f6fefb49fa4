// Package grpcserver exposes the marketplace gRPC API handlers.
package grpcserver

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/auth"
)

// Options configures New.
type Options struct {
	Verifier *auth.Verifier
	// Public lists full method names callable without a token; nil means api.PublicMethods.
	Public       map[string]bool
	Reflection   bool
	MaxRecvBytes int
	// Extra is appended to the server options, e.g. TLS credentials.
	Extra []grpc.ServerOption
}

// New builds a gRPC server with the interceptor chain, the health service and
// optional reflection. The health server starts out SERVING.
func New(log *zap.Logger, o Options) (*grpc.Server, *health.Server) {
	public := o.Public
	if public == nil {
		public = api.PublicMethods
	}
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingUnary(log),
			MetricsUnary(),
			RecoverUnary(log),
			StatusUnary(log),
			AuthUnary(o.Verifier, public),
		),
	}
	if o.MaxRecvBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(o.MaxRecvBytes))
	}
	opts = append(opts, o.Extra...)

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	if o.Reflection {
		reflection.Register(srv)
	}
	return srv, hs
}

// RecvLimit sizes the receive limit for uploads of up to maxUpload bytes:
// the JSON codec base64-encodes file bytes.
func RecvLimit(maxUpload int64) int {
	return int(maxUpload/3*4) + 64<<10
}
