package server

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

	"payrun/internal/domain/audit"
	"payrun/internal/domain/auth"
	"payrun/internal/domain/payroll"
	"payrun/internal/platform/config"
	"payrun/internal/platform/db"
	"payrun/internal/platform/jobs"
	"payrun/internal/platform/metrics"
	"payrun/internal/transport/http/api"
	payrollhandler "payrun/internal/transport/http/handlers/payroll"
	"payrun/internal/transport/http/middleware"
)

const (
	idempotencyTTL = 24 * time.Hour
	auditRetention = 5000
)

type App struct {
	Config  config.Config
	Store   payroll.RecordStore
	Service *payroll.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	stopJobs context.CancelFunc
	closers  []func()
}

// New wires the store selected by cfg, the payroll service, the job
// workers and the router. Close releases what it opened.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Metrics: metrics.New()}
	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	schedule := payroll.DefaultSchedule()
	if cfg.TaxScheduleFile != "" {
		schedule, err = config.LoadSchedule(cfg.TaxScheduleFile)
		if err != nil {
			app.Close()
			return nil, err
		}
		slog.Info("tax schedule loaded", "file", cfg.TaxScheduleFile, "bands", len(schedule.Bands))
	}

	app.Service = payroll.NewService(store, payroll.NewRegistry(), payroll.NewCalculator(schedule), cfg.BatchWorkers)

	jobsCtx, cancel := context.WithCancel(context.Background())
	app.Jobs = jobs.New(cfg.JobQueueSize, cfg.BatchWorkers)
	app.Jobs.Start(jobsCtx)
	app.stopJobs = cancel

	app.Router = app.routes()
	return app, nil
}

func (a *App) openStore(ctx context.Context) (payroll.RecordStore, error) {
	switch a.Config.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.Connect(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if a.Config.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return payroll.NewStore(pool), nil
	case config.StoreDriverSQLite:
		store, err := payroll.OpenSQLiteStore(ctx, a.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := store.Close(); err != nil {
				slog.Warn("sqlite close failed", "err", err)
			}
		})
		return store, nil
	default:
		return payroll.NewMemoryStore(), nil
	}
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	var perms middleware.PermissionStore
	if cfg.JWTSecret != "" {
		perms = auth.StaticPermissions{}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MutationRateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

		payrollHandler := payrollhandler.NewHandler(a.Service, a.Jobs, a.Metrics, middleware.NewIdempotencyStore(idempotencyTTL), audit.New(auditRetention), perms)
		payrollHandler.RegisterRoutes(r)
	})

	return router
}

// Close stops the job workers and releases the store.
func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
		a.Jobs.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("payroll server listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
