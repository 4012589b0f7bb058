// Package main is the entry point for the shiftplane controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shiftplane/internal/config"
	"shiftplane/internal/controller"
	"shiftplane/internal/logger"
	"shiftplane/internal/observability"
	"shiftplane/internal/scheduling"
	"shiftplane/internal/store"
	"shiftplane/internal/store/postgres"
	"shiftplane/internal/store/sqlite"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// dataStore is what both storage backends provide.
type dataStore interface {
	store.Transactor
	store.JobStore
	store.ShiftStore
	CountShifts(ctx context.Context) (total, unassigned int64, err error)
	Close() error
}

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting (postgres)")
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	if err := run(*configPath, *migrateFlag); err != nil {
		slog.Error("controller exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, migrate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg, migrate, log)
	if err != nil {
		return err
	}
	defer db.Close()

	shutdownTracer, err := observability.InitTracer(ctx, "shiftplane-controller", cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("failed to shutdown tracer", "error", err)
		}
	}()

	metricsHandler, shutdownMetrics, err := observability.InitMetrics("shiftplane-controller")
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("failed to shutdown metrics", "error", err)
		}
	}()
	registerShiftGauges(db, log)

	svc := scheduling.New(db, db, db,
		scheduling.WithLogger(log),
		scheduling.WithMinRestPeriod(cfg.MinRestPeriod),
		scheduling.WithShiftLength(cfg.MinShiftLength, cfg.MaxShiftLength),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, svc, db, controller.Options{
		Metrics:        metricsHandler,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		Logger:         log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("shiftplane controller starting", "addr", addr, "store", cfg.StoreDriver)
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("server exited properly")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool, log *slog.Logger) (dataStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return st, nil
	default:
		st, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		if migrate || cfg.AutoMigrate {
			log.Info("running database migrations")
			if err := postgres.Migrate(st.DB(), log); err != nil {
				st.Close()
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		return st, nil
	}
}

// registerShiftGauges exposes shift counts, queried only when scraped.
func registerShiftGauges(db dataStore, log *slog.Logger) {
	meter := otel.Meter("shiftplane-controller")

	total, err := meter.Int64ObservableGauge("shiftplane.shifts",
		metric.WithDescription("Current number of shifts"))
	if err != nil {
		log.Warn("failed to register shifts gauge", "error", err)
		return
	}
	unassigned, err := meter.Int64ObservableGauge("shiftplane.shifts.unassigned",
		metric.WithDescription("Current number of shifts without a talent"))
	if err != nil {
		log.Warn("failed to register unassigned shifts gauge", "error", err)
		return
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		t, u, err := db.CountShifts(ctx)
		if err != nil {
			log.Warn("failed to count shifts", "error", err)
			return nil // Don't fail the scrape on DB error
		}
		obs.ObserveInt64(total, t)
		obs.ObserveInt64(unassigned, u)
		return nil
	}, total, unassigned)
	if err != nil {
		log.Warn("failed to register shift gauges callback", "error", err)
	}
}
