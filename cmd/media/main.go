// Command media stores product images and reconciles them with catalog lifecycle events.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/app"
	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/blobstore"
	"github.com/FredericTischler/safe-zone/internal/config"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/logging"
	"github.com/FredericTischler/safe-zone/internal/metrics"
	"github.com/FredericTischler/safe-zone/internal/migrate"
	"github.com/FredericTischler/safe-zone/internal/reconcile"
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
	cfg, err := config.LoadMedia()
	if err != nil {
		panic("config: " + err.Error())
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting media",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, err := auth.NewVerifier([]byte(cfg.JWTSecret))
	if err != nil {
		logger.Fatal("jwt verifier", zap.Error(err))
	}
	files, err := blobstore.Open(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload dir", zap.Error(err))
	}
	tlsOpts, err := app.ServerTLS(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		logger.Fatal("failed to load TLS cert/key", zap.Error(err))
	}

	if err := migrate.Up(ctx, cfg.DatabaseURL, migrate.Media); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	rdb, err := app.NewRedis(cfg.Redis.Addr)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	conn, err := grpc.NewClient(cfg.CatalogAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		api.DialOption(),
	)
	if err != nil {
		logger.Fatal("catalog client", zap.Error(err))
	}
	defer func() { _ = conn.Close() }()
	resources := api.CatalogResources{Client: api.NewCatalogClient(conn)}

	var opts []service.MediaOption
	if cfg.VerifyUploadOwner {
		opts = append(opts, service.WithResourceChecker(resources))
	}
	repo := postgres.NewMediaRepo(db)
	media := service.NewMediaService(repo, files, upload.Policy{MaxBytes: cfg.MaxUploadBytes}, logger, opts...)

	consumer := reconcile.NewConsumer(media, logger)
	sub := events.NewStreamSubscriber(rdb, events.SubscriberConfig{
		StreamConfig:  events.StreamConfig{Prefix: cfg.Stream, Partitions: cfg.Partitions},
		Group:         cfg.ConsumerGroup,
		Consumer:      cfg.ConsumerName,
		ClaimIdle:     cfg.ClaimIdle,
		MaxDeliveries: cfg.MaxDeliveries,
	}, logger, func(string, string, string) { metrics.DeadLetteredTotal.Inc() })
	sweeper := reconcile.NewSweeper(repo, resources, media, logger)

	reg := app.NewRegistry()
	srv, hs := grpcserver.New(logger, grpcserver.Options{
		Verifier:     verifier,
		Reflection:   cfg.GRPCReflection,
		MaxRecvBytes: grpcserver.RecvLimit(cfg.MaxUploadBytes),
		Extra:        tlsOpts,
	})
	api.RegisterMediaServer(srv, grpcserver.NewMediaServer(media))

	r := &app.Runner{
		Log:             logger,
		GRPC:            srv,
		Health:          hs,
		GRPCAddr:        cfg.GRPCAddr,
		HTTP:            httpserver.NewRouter(logger, service.MediaCollection, media.Fetch, reg),
		HTTPAddr:        cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Workers: []app.Worker{
			func(ctx context.Context) {
				if err := sub.Run(ctx, metrics.CountingHandler(consumer.Handle)); err != nil {
					logger.Error("event subscriber stopped", zap.Error(err))
				}
			},
			func(ctx context.Context) { sweeper.Run(ctx, cfg.SweepInterval) },
		},
	}
	if err := r.Run(ctx); err != nil {
		logger.Fatal("media stopped", zap.Error(err))
	}
}
