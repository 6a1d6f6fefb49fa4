// Package app runs a service process: its gRPC and HTTP listeners plus the
// background workers, until the context is cancelled.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"

	"github.com/FredericTischler/safe-zone/internal/metrics"
)

// Worker is a background loop that returns once ctx is done.
type Worker func(ctx context.Context)

// Runner owns the listeners of one process.
type Runner struct {
	Log             *zap.Logger
	GRPC            *grpc.Server
	Health          *health.Server
	GRPCAddr        string
	HTTP            http.Handler
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Workers         []Worker
}

// Run serves until ctx is cancelled or a listener fails, then stops the
// servers gracefully and waits for the workers.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lis, err := net.Listen("tcp", r.GRPCAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", r.HTTPAddr)
	if err != nil {
		_ = lis.Close()
		return err
	}
	httpSrv := &http.Server{Handler: r.HTTP, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 2)
	go func() {
		r.Log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		errCh <- r.GRPC.Serve(lis)
	}()
	go func() {
		r.Log.Info("http listening", zap.String("addr", httpLis.Addr().String()))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var wg sync.WaitGroup
	for _, w := range r.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w(ctx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.Log.Error("server error", zap.Error(runErr))
	}
	cancel()
	r.shutdown(httpSrv)
	wg.Wait()
	r.Log.Info("shutdown complete")
	return runErr
}

func (r *Runner) shutdown(httpSrv *http.Server) {
	timeout := r.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if r.Health != nil {
		r.Health.Shutdown()
	}

	done := make(chan struct{})
	go func() {
		r.GRPC.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		r.GRPC.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		r.Log.Warn("http shutdown", zap.Error(err))
	}
}

// ServerTLS returns the transport credentials option for cert and key, or
// nothing when both are empty.
func ServerTLS(cert, key string) ([]grpc.ServerOption, error) {
	if cert == "" && key == "" {
		return nil, nil
	}
	creds, err := credentials.NewServerTLSFromFile(cert, key)
	if err != nil {
		return nil, err
	}
	return []grpc.ServerOption{grpc.Creds(creds)}, nil
}

// NewRegistry returns a registry with the runtime collectors and every
// marketplace metric.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)
	return reg
}

// NewRedis connects to the event channel's Redis.
func NewRedis(addr string) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
}
