package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"eventRegistry/internal/config"
	"eventRegistry/internal/http-server/middleware/mwratelimit"
	"eventRegistry/internal/http-server/router"
	"eventRegistry/internal/lib/logger/handlers/slogpretty"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/mail/logmail"
	"eventRegistry/internal/mail/sendgrid"
	"eventRegistry/internal/services/auth"
	"eventRegistry/internal/services/ledger"
	"eventRegistry/internal/storage/postgres"
	"eventRegistry/internal/storage/sqlite"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type store interface {
	auth.UserStorage
	ledger.EventStorage
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting event registry", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := setupStorage(cfg.Storage, &cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	authService, err := auth.New(log, storage, setupMailer(log, cfg.Mail), []byte(cfg.Auth.JWTSecret),
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithResetTTL(cfg.Auth.ResetTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
		auth.WithStoreTimeout(cfg.Storage.Timeout),
	)
	if err != nil {
		log.Error("failed to init auth service", sl.Err(err))
		os.Exit(1)
	}

	ledgerService := ledger.New(log, storage, ledger.WithStoreTimeout(cfg.Storage.Timeout))

	limiter := mwratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)

	handler := router.New(log, authService, ledgerService, router.Options{
		CookieSecure: cfg.Auth.CookieSecure,
		ResetURLBase: cfg.Mail.ResetURLBase,
		TrustProxy:   cfg.HTTPServer.TrustProxy,
		Limiter:      limiter,
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := limiter.Cleanup(10 * time.Minute); n > 0 {
					log.Debug("rate limiter clients evicted", slog.Int("count", n))
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop
	close(done)

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage closed")
}

func setupStorage(cfg config.Storage, dbCfg *config.Database) (store, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.InitDB(dbCfg)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func setupMailer(log *slog.Logger, cfg config.Mail) auth.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY is not set, reset emails will be written to stdout")
		return logmail.New(log, os.Stdout)
	}

	return sendgrid.New(cfg.SendGridAPIKey, cfg.FromName, cfg.FromAddress, cfg.Timeout)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
