package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/mentora/internal/api"
	"github.com/Harshitk-cp/mentora/internal/config"
	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/metrics"
	"github.com/Harshitk-cp/mentora/internal/model"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/Harshitk-cp/mentora/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(config.LogLevel(), config.LogFormat())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, logger *zap.Logger) error {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	pool, err := store.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := store.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	apps, err := buildApps(ctx, pool, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, app := range apps {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port(app.Service)),
			Handler:           app.Router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("server starting", zap.String("service", app.Service), zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: %w", app.Service, err)
			}
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server", zap.String("service", app.Service))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

// buildApps wires every service named by SERVICES. A prediction service
// whose artifact bundle fails to load still starts and reports itself
// degraded on /health.
func buildApps(ctx context.Context, pool store.DB, logger *zap.Logger) ([]*api.App, error) {
	opts := api.Options{
		Logger:         logger,
		DB:             pool,
		CORSOrigins:    config.CORSAllowedOrigins(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}
	users := store.NewUserStore(pool)

	var defs []*service.Definition
	var apps []*api.App
	for _, name := range config.Services() {
		if name == api.AccountsService {
			apps = append(apps, api.NewAccountsApp(ctx, service.NewAccountService(users, logger), opts))
			continue
		}
		def, ok := service.Lookup(domain.ServiceName(name), service.VariantAPI)
		if !ok {
			return nil, fmt.Errorf("unknown service %q in SERVICES", name)
		}
		defs = append(defs, def)
	}

	bundles, _ := model.LoadAll(ctx, config.ArtifactsDir(), service.Bundles(defs), logger)

	predictions := store.NewGuarded(store.NewPredictionStore(pool), store.BreakerConfig{
		Failures: config.StoreBreakerFailures(),
		Timeout:  config.StoreBreakerTimeout(),
	}, logger)

	for _, def := range defs {
		var pipe *service.Pipeline
		if b, ok := bundles[def.Bundle]; ok {
			p, err := service.NewPipeline(def, b)
			if err != nil {
				logger.Error("artifact bundle does not fit service",
					zap.String("service", string(def.Service)),
					zap.String("bundle", def.Bundle),
					zap.Error(err),
				)
			} else {
				pipe = p
			}
		}
		metrics.SetModelLoaded(string(def.Service), pipe != nil)

		svc := service.NewPredictionService(def, pipe, predictions, users, logger)
		apps = append(apps, api.NewPredictionApp(ctx, svc, opts))
	}
	return apps, nil
}
