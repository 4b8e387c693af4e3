package bootstrap

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

	cacheadapter "github.com/wayfarerhq/tours-api/internal/adapters/cache"
	httpadapter "github.com/wayfarerhq/tours-api/internal/adapters/http"
	"github.com/wayfarerhq/tours-api/internal/adapters/notify"
	"github.com/wayfarerhq/tours-api/internal/adapters/postgres"
	"github.com/wayfarerhq/tours-api/internal/adapters/security"
	"github.com/wayfarerhq/tours-api/internal/application"
	"github.com/wayfarerhq/tours-api/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	fatalCh    chan any
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping tours api", "http_port", cfg.HTTPPort, "environment", cfg.Environment)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init jwt issuer: %w", err)
	}

	var notifier ports.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		logger.Warn("no SMTP host configured, logging mail instead of sending")
		notifier = notify.NewLogNotifier(logger)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			FailedLoginThreshold: cfg.FailedLoginThreshold,
			LockoutDuration:      cfg.LockoutDuration,
		},
		Users:    postgres.NewUserStore(pool),
		Hasher:   security.NewBcryptHasher(cfg.BcryptCost),
		Tokens:   tokens,
		Resets:   security.NewResetTokenManager(),
		Lockouts: cacheadapter.NewRedisLockoutStore(redisClient),
		Notifier: notifier,
	})

	fatalCh := make(chan any, 1)
	fatal := func(reason any) {
		select {
		case fatalCh <- reason:
		default:
		}
	}

	transport := httpadapter.NewSessionTransport(cfg.CookieTTL, cfg.IsProduction(), time.Now)
	handler := httpadapter.NewHandler(svc, transport, fatal)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		fatalCh:    fatalCh,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

// Run serves HTTP until a signal arrives, the server fails, or a handler
// reports an unrecoverable panic, then drains and closes the backing stores.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
		runErr = err
	case reason := <-r.fatalCh:
		r.logger.Error("unrecoverable handler failure, shutting down", "reason", fmt.Sprint(reason))
		runErr = fmt.Errorf("unrecoverable failure: %v", reason)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return runErr
}
