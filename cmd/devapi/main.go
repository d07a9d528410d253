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

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/devapi"
)

func main() {
	if app.TestMode() {
		slog.Default().Info("test mode detected, skipping devapi startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.NewLogger(&app.Config{LogFormat: os.Getenv("LOG_FORMAT"), LogLevel: os.Getenv("LOG_LEVEL")})

	cfg, err := devapi.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	srv, err := devapi.NewServer(*cfg, devapi.Options{Logger: logger})
	if err != nil {
		logger.Error("init devapi", slog.Any("error", err))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("devapi listening", slog.String("addr", cfg.Addr))
	for _, u := range devapi.DemoUsers {
		logger.Info("demo user", slog.String("username", u.Username), slog.String("role", u.Role.String()))
	}
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
