package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hydrib/landregistry-backend/internal/archive"
	archiveClickhouse "github.com/hydrib/landregistry-backend/internal/archive/repository/clickhouse"
	"github.com/hydrib/landregistry-backend/internal/land/audit"
	"github.com/hydrib/landregistry-backend/internal/land/ledger"
	landleveldb "github.com/hydrib/landregistry-backend/internal/land/repository/leveldb"
	"github.com/hydrib/landregistry-backend/internal/land/service"
	"github.com/hydrib/landregistry-backend/internal/metrics"
	"github.com/hydrib/landregistry-backend/internal/transport"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// The embedded store takes an exclusive file lock, so this process is its
// only owner. The archive exporter runs as a goroutine in here, sharing the
// one open handle, rather than as a second binary that could never acquire
// the lock while the gateway is up.
var config struct {
	Addr          string `long:"addr" env:"REGISTRY_GATEWAY_ADDR" description:"addr" default:":8000"`
	DBPath        string `long:"db-path" env:"REGISTRY_GATEWAY_DB_PATH" description:"leveldb path" default:"./data/registry"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"REGISTRY_GATEWAY_CLICKHOUSE_DSN" description:"ClickHouse DSN; enables the ledger archive mirror"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	repo, err := landleveldb.NewRepository(config.DBPath, metrics.NewStoreRepository())
	if err != nil {
		logger.Fatal("Open store", zap.Error(err))
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Close store", zap.Error(closeErr))
		}
	}()

	chain := ledger.NewChain(repo, logger)
	if err := chain.VerifyIntegrity(ctx); err != nil {
		logger.Fatal("Ledger integrity check", zap.Error(err))
	}

	registry, err := service.NewRegistry(chain, repo, metrics.NewRegistry(), logger)
	if err != nil {
		logger.Fatal("Build registry service", zap.Error(err))
	}

	handler := transport.NewRegistryHandler(registry, repo, audit.NewReader(chain), logger)

	mux := http.NewServeMux()
	mux.Handle("/v1/", handler.Routes())
	mux.Handle("/metrics", promhttp.Handler())

	if config.ClickhouseDSN != "" {
		archiveRepo, err := archiveClickhouse.NewRepository(config.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			logger.Fatal("Init clickhouse repository", zap.Error(err))
		}
		exporter, err := archive.NewExporterService(repo, archiveRepo, metrics.NewArchiveExporter(), logger)
		if err != nil {
			logger.Fatal("Build archive exporter", zap.Error(err))
		}
		go func() {
			if runErr := exporter.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				logger.Error("Archive exporter stopped", zap.Error(runErr))
			}
		}()
		mux.Handle("/v1/archive/", transport.NewArchiveHandler(archiveRepo, logger).Routes())
	}

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
