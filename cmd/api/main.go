// Package main is the entry point for the itinerary API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/voyantiq/itinerary/internal/config"
	"github.com/voyantiq/itinerary/internal/discovery"
	"github.com/voyantiq/itinerary/internal/drafting"
	"github.com/voyantiq/itinerary/internal/handler"
	"github.com/voyantiq/itinerary/internal/middleware"
	"github.com/voyantiq/itinerary/internal/normalize"
	"github.com/voyantiq/itinerary/internal/provider"
	"github.com/voyantiq/itinerary/internal/repo"
	"github.com/voyantiq/itinerary/internal/service"
	"github.com/voyantiq/itinerary/migrations"
	"github.com/voyantiq/itinerary/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Trip store -------------------------------------------------------
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open trip store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Services ---------------------------------------------------------
	trips := service.NewTripService(store)
	itinerary := service.NewItinerary(store, service.WithStrictTransitions(cfg.StrictStatusTransitions))
	export := service.NewExportService(store)

	disc, err := newDiscoverer(cfg, logger)
	if err != nil {
		slog.Error("failed to configure providers", "error", err)
		os.Exit(1)
	}

	drafter, err := drafting.New(ctx, drafting.Config{
		Provider: drafting.Provider(cfg.Draft.Provider),
		APIKey:   cfg.Draft.APIKey,
		Model:    cfg.Draft.Model,
		BaseURL:  cfg.Draft.BaseURL,
	})
	if err != nil {
		slog.Error("failed to configure drafting backend", "error", err)
		os.Exit(1)
	}
	if drafter != nil {
		defer drafter.Close()
	}
	// A nil drafting.Client converts to a nil Drafter, which disables drafting.
	planner := service.NewPlannerService(drafter, trips, itinerary)
	slog.Info("drafting", "enabled", planner.Enabled(), "provider", cfg.Draft.Provider)

	// --- Router -----------------------------------------------------------
	// RequestID → RealIP → SlogLogger → Recoverer → CORS → body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(trips, itinerary, disc, planner, export, handler.WithSpec(spec.OpenAPI))
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a full provider fan-out or a model call.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: max(30*time.Second, 2*cfg.ProviderTimeout),
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "store", cfg.StoreDriver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore returns the configured TripStore and a function releasing it.
// The postgres driver applies pending migrations before returning.
func openStore(ctx context.Context, cfg config.Config) (repo.TripStore, func(), error) {
	if cfg.StoreDriver != config.StorePostgres {
		slog.Info("using in-memory trip store")
		return repo.NewMemoryTripStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	// goose speaks database/sql; borrow a handle backed by the same pool.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	migrator, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	results, err := migrator.Up(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database ready", "migrations_applied", len(results))

	return repo.NewTripStore(pool), pool.Close, nil
}

// newDiscoverer builds the aggregator over the configured providers. It
// returns a nil Discoverer when none are configured, which disables /discover.
func newDiscoverer(cfg config.Config, logger *slog.Logger) (handler.Discoverer, error) {
	if len(cfg.Providers) == 0 {
		slog.Warn("no providers configured; discovery disabled")
		return nil, nil
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	clients := make([]provider.Client, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		c, err := provider.New(p.Source, provider.Options{
			BaseURL:    p.BaseURL,
			APIKey:     p.APIKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	agg, err := discovery.NewAggregator(clients, normalize.Default(),
		discovery.WithTimeout(cfg.ProviderTimeout),
		discovery.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	slog.Info("discovery enabled", "providers", agg.Sources())
	return agg, nil
}
