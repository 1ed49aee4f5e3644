// Command rentscored is the Rentscore HTTP service.
// It serves the calculator API, organization rosters, metrics, and a
// health check.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/internal/api"
	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/internal/intake"
	"github.com/rentscore/rentscore/internal/roster"
	"github.com/rentscore/rentscore/pkg/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(serve(os.Args[1:]))
}

// serve runs the daemon and returns the process exit code. Deferred cleanup
// runs before main exits.
func serve(args []string) int {
	fs := flag.NewFlagSet("rentscored", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Error("rentscored exited", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := zap.L()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := dispatch.FromConfig(cfg.Engine, cfg.Scoring.BatchConcurrency,
		dispatch.WithMetrics(dispatch.NewMetrics(reg)),
		dispatch.WithLogger(logger),
	)
	registry := intake.NewRegistry(intake.Defaults{CollectionRate: cfg.Scoring.DefaultCollectionRate})

	rosters, closeRosters, err := roster.Open(ctx, cfg.Roster)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRosters(); err != nil {
			logger.Warn("closing roster backend", zap.Error(err))
		}
	}()

	handler := api.NewHandler(engine, registry,
		api.WithRosters(rosters),
		api.WithGatherer(reg),
		api.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler.Routes(cfg.Server.CORSOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting rentscored",
			zap.String("addr", srv.Addr),
			zap.String("roster_backend", cfg.Roster.Backend),
			zap.Bool("remote_engine", cfg.Engine.RemoteURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
