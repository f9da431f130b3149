// Package app wires configuration, infrastructure and the domain handlers
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/vannyakh/pkasla-pro-sub001/internal/audit"
	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/config"
	"github.com/vannyakh/pkasla-pro-sub001/internal/httpserver"
	"github.com/vannyakh/pkasla-pro-sub001/internal/platform"
	"github.com/vannyakh/pkasla-pro-sub001/internal/seed"
	"github.com/vannyakh/pkasla-pro-sub001/internal/telemetry"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/event"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/guest"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/mailer"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/notify"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/settings"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/telegram"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/user"
)

// Run is the main application entry point. It reads config, connects to
// infrastructure, and starts the requested mode (api or seed).
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting pkasla",
		"mode", cfg.Mode,
		"listen", cfg.ListenAddr(),
	)

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	metricsReg := telemetry.NewMetricsRegistry()

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, db, rdb, metricsReg)
	case "seed":
		return seed.Run(ctx, db, logger, cfg.AdminEmail, cfg.AdminPassword)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry) error {
	if cfg.JWTSecret == "" && !cfg.DevMode {
		return fmt.Errorf("PKASLA_JWT_SECRET must be set outside dev mode")
	}
	verifier := auth.NewTokenVerifier(cfg.JWTSecret, cfg.SessionMaxAge)

	// Audit log writer (async, buffered).
	auditWriter := audit.NewWriter(db, logger)
	auditWriter.Start(ctx)
	defer auditWriter.Close()

	srv := httpserver.NewServer(cfg, logger, db, rdb, metricsReg, verifier)

	// Stores and services.
	userStore := user.NewStore(db)
	settingsStore := settings.NewStore(db, rdb)
	settingsService := settings.NewService(settingsStore, logger, telemetry.SettingsUpdatesTotal)

	channel := telegram.NewChannel(logger)
	dispatcher := notify.NewDispatcher(
		settingsService,
		channel,
		userStore.TelegramLink,
		cfg.TelegramBotToken,
		logger,
		telemetry.NotificationsTotal,
	)

	eventService := event.NewService(event.NewStore(db), dispatcher, logger)
	guestService := guest.NewService(guest.NewStore(db), eventService, dispatcher, logger)

	// Login (unauthenticated).
	loginHandler := auth.NewLoginHandler(verifier, userStore, logger)
	srv.PublicRouter.Mount("/auth", loginHandler.Routes())

	// Domain handlers.
	settingsHandler := settings.NewHandler(settings.HandlerDeps{
		Logger:    logger,
		Audit:     auditWriter,
		Service:   settingsService,
		Env:       cfg.Environment,
		StartedAt: srv.StartedAt,
		Pool:      db,
		Redis:     rdb,
		Tester:    telegramTester{channel},
		Mail:      mailer.New(logger),
	})
	srv.APIRouter.Mount("/settings", settingsHandler.Routes())

	userHandler := user.NewHandler(logger, auditWriter, userStore)
	srv.APIRouter.Mount("/users", userHandler.Routes())

	guestHandler := guest.NewHandler(logger, auditWriter, guestService)
	eventHandler := event.NewHandler(logger, auditWriter, eventService)
	srv.APIRouter.Mount("/events", eventHandler.Routes(guestHandler.EventRoutes()))
	srv.APIRouter.Mount("/guests", guestHandler.Routes())

	auditHandler := audit.NewHandler(logger, db)
	srv.APIRouter.Mount("/audit-log", auditHandler.Routes())

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// telegramTester adapts the channel's TestResult to the settings handler.
type telegramTester struct {
	channel *telegram.Channel
}

func (t telegramTester) TestConnection(token, chatID string) (bool, string) {
	res := t.channel.TestConnection(token, chatID)
	return res.Success, res.Message
}
