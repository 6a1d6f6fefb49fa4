// Command catalog serves products and emits their lifecycle events.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/app"
	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/config"
	"github.com/FredericTischler/safe-zone/internal/events"
	"github.com/FredericTischler/safe-zone/internal/logging"
	"github.com/FredericTischler/safe-zone/internal/metrics"
	"github.com/FredericTischler/safe-zone/internal/migrate"
	"github.com/FredericTischler/safe-zone/internal/repository/postgres"
	grpcserver "github.com/FredericTischler/safe-zone/internal/server/grpc"
	httpserver "github.com/FredericTischler/safe-zone/internal/server/http"
	"github.com/FredericTischler/safe-zone/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.LoadCatalog()
	if err != nil {
		panic("config: " + err.Error())
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	delivery, err := service.ParseDelivery(cfg.EventDelivery)
	if err != nil {
		logger.Fatal("EVENT_DELIVERY", zap.Error(err))
	}
	logger.Info("starting catalog",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("delivery", string(delivery)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, err := auth.NewVerifier([]byte(cfg.JWTSecret))
	if err != nil {
		logger.Fatal("jwt verifier", zap.Error(err))
	}
	tlsOpts, err := app.ServerTLS(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		logger.Fatal("failed to load TLS cert/key", zap.Error(err))
	}

	if err := migrate.Up(ctx, cfg.DatabaseURL, migrate.Catalog); err != nil {
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
	pub := metrics.CountingPublisher{Next: events.NewStreamPublisher(rdb, events.StreamConfig{
		Prefix:     cfg.Stream,
		Partitions: cfg.Partitions,
	})}

	var workers []app.Worker
	var repoOpts []postgres.ProductOption
	if delivery == service.DeliveryOutbox {
		repoOpts = append(repoOpts, postgres.WithOutbox())
		relay := service.NewOutboxRelay(postgres.NewOutboxRepo(db), pub, logger)
		workers = append(workers, func(ctx context.Context) {
			relay.Run(ctx, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
		})
	}
	catalog, err := service.NewCatalogService(postgres.NewProductRepo(db, repoOpts...), delivery, pub, logger)
	if err != nil {
		logger.Fatal("catalog service", zap.Error(err))
	}

	reg := app.NewRegistry()
	srv, hs := grpcserver.New(logger, grpcserver.Options{
		Verifier:   verifier,
		Reflection: cfg.GRPCReflection,
		Extra:      tlsOpts,
	})
	api.RegisterCatalogServer(srv, grpcserver.NewCatalogServer(catalog))

	r := &app.Runner{
		Log:             logger,
		GRPC:            srv,
		Health:          hs,
		GRPCAddr:        cfg.GRPCAddr,
		HTTP:            httpserver.NewRouter(logger, "", nil, reg),
		HTTPAddr:        cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Workers:         workers,
	}
	if err := r.Run(ctx); err != nil {
		logger.Fatal("catalog stopped", zap.Error(err))
	}
}
