package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/audit"
	"github.com/finboard/finboard/internal/auth"
	authhttp "github.com/finboard/finboard/internal/auth/http"
	"github.com/finboard/finboard/internal/financial"
	financialhttp "github.com/finboard/finboard/internal/financial/http"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/platform/backend"
	"github.com/finboard/finboard/internal/platform/cache"
	"github.com/finboard/finboard/internal/session"
	"github.com/finboard/finboard/internal/shared"
	"github.com/finboard/finboard/internal/view"
	"github.com/finboard/finboard/jobs"
)

func main() {
	if app.TestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(view.WithLocale(cfg.UILocale))
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, backend.WithObserver(metrics))
	gateway := auth.NewGateway(backendClient)
	sessions := session.NewFactory(gateway, logger)

	financialService := financial.NewService(
		financial.NewClient(backendClient),
		financial.NewCache(redisClient, cfg.FinancialCacheTTL),
		logger,
	)

	var recorder audit.Recorder = audit.NopRecorder{}
	var jobHandler *jobs.Handler
	if cfg.AuditEnabled {
		queue := jobs.NewClient(cfg.Redis().AsynqOpt())
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Warn("queue close", slog.Any("error", err))
			}
		}()
		recorder = audit.NewQueueRecorder(queue, logger)

		inspector := asynq.NewInspector(cfg.Redis().AsynqOpt())
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	guard := app.NewGuard(logger, templates, csrfManager, metrics)

	authHandler := authhttp.NewHandler(authhttp.Config{
		Logger:    logger,
		Templates: templates,
		Sessions:  sessionManager,
		CSRF:      csrfManager,
		Audit:     recorder,
		Metrics:   metrics,
		Cache:     financialService,
		Guard:     guard,
	})
	financialHandler := financialhttp.NewHandler(logger, financialService, templates, csrfManager, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		Sessions:         sessions,
		CSRFManager:      csrfManager,
		Guard:            guard,
		AuthHandler:      authHandler,
		FinancialHandler: financialHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("backend", backendClient.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
