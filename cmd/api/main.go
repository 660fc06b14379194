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

	"github.com/joho/godotenv"

	"github.com/taskly/taskly-go/internal/config"
	"github.com/taskly/taskly-go/internal/handler"
	"github.com/taskly/taskly-go/internal/notify"
	"github.com/taskly/taskly-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.LogLevel))

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := openStores(startCtx, cfg)
	cancelStart()
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(newMailer(cfg), notify.Config{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
	})
	dispatcher.Start()

	router := handler.NewRouter(handler.Deps{
		Auth:          service.NewAuthService(stores.users, dispatcher, cfg.JWTSecret, cfg.JWTExpiry),
		Users:         service.NewUserService(stores.users, stores.tasks, dispatcher),
		Tasks:         service.NewTaskService(stores.tasks),
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		exitCode = 1
	}
	if err := dispatcher.Stop(ctx); err != nil {
		slog.Error("notification queue not drained", "error", err)
		exitCode = 1
	}
	if err := stores.close(ctx); err != nil {
		slog.Error("failed to close store", "error", err)
		exitCode = 1
	}

	slog.Info("server stopped")
	os.Exit(exitCode)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newMailer(cfg config.Config) notify.Mailer {
	if cfg.SendGridAPIKey == "" {
		slog.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return notify.LogMailer{}
	}
	return notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
}
