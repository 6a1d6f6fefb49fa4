// Command identity serves accounts, login and profile images.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/app"
	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/blobstore"
	"github.com/FredericTischler/safe-zone/internal/config"
	"github.com/FredericTischler/safe-zone/internal/limiter"
	"github.com/FredericTischler/safe-zone/internal/logging"
	"github.com/FredericTischler/safe-zone/internal/migrate"
	"github.com/FredericTischler/safe-zone/internal/repository/postgres"
	grpcserver "github.com/FredericTischler/safe-zone/internal/server/grpc"
	httpserver "github.com/FredericTischler/safe-zone/internal/server/http"
	"github.com/FredericTischler/safe-zone/internal/service"
	"github.com/FredericTischler/safe-zone/internal/upload"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.LoadIdentity()
	if err != nil {
		panic("config: " + err.Error())
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting identity",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key := []byte(cfg.JWTSecret)
	issuer, err := auth.NewIssuer(key, cfg.AccessTTL)
	if err != nil {
		logger.Fatal("jwt issuer", zap.Error(err))
	}
	verifier, err := auth.NewVerifier(key)
	if err != nil {
		logger.Fatal("jwt verifier", zap.Error(err))
	}
	avatars, err := blobstore.Open(cfg.AvatarDir)
	if err != nil {
		logger.Fatal("avatar dir", zap.Error(err))
	}
	tlsOpts, err := app.ServerTLS(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		logger.Fatal("failed to load TLS cert/key", zap.Error(err))
	}

	if err := migrate.Up(ctx, cfg.DatabaseURL, migrate.Identity); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	lim := limiter.NewPG(db.Pool, limiter.Policy{
		Window:   cfg.LoginWindow,
		MaxFails: cfg.LoginMaxFails,
		BlockFor: cfg.LoginBlockFor,
	})
	authSvc := service.NewAuthService(postgres.NewUserRepo(db), issuer, lim, avatars,
		upload.Policy{MaxBytes: cfg.AvatarMaxBytes}, logger)

	reg := app.NewRegistry()
	srv, hs := grpcserver.New(logger, grpcserver.Options{
		Verifier:     verifier,
		Reflection:   cfg.GRPCReflection,
		MaxRecvBytes: grpcserver.RecvLimit(cfg.AvatarMaxBytes),
		Extra:        tlsOpts,
	})
	api.RegisterIdentityServer(srv, grpcserver.NewIdentityServer(authSvc))

	r := &app.Runner{
		Log:             logger,
		GRPC:            srv,
		Health:          hs,
		GRPCAddr:        cfg.GRPCAddr,
		HTTP:            httpserver.NewRouter(logger, service.AvatarCollection, authSvc.FetchAvatar, reg),
		HTTPAddr:        cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	if err := r.Run(ctx); err != nil {
		logger.Fatal("identity stopped", zap.Error(err))
	}
}
