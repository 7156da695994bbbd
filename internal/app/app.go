package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/auth"
	"github.com/orbtao/connectify/backend/internal/handlers"
	"github.com/orbtao/connectify/backend/internal/jobs"
	"github.com/orbtao/connectify/backend/internal/ratelimit"
	"github.com/orbtao/connectify/backend/internal/realtime"
	"github.com/orbtao/connectify/backend/internal/repositories"
	"github.com/orbtao/connectify/backend/internal/repositories/memory"
	"github.com/orbtao/connectify/backend/internal/router"
	"github.com/orbtao/connectify/backend/pkg/config"
	"github.com/orbtao/connectify/backend/pkg/firebase"
	"github.com/orbtao/connectify/backend/pkg/logger"
	"github.com/orbtao/connectify/backend/pkg/storage"
	"github.com/orbtao/connectify/backend/validators"
)

var Module = fx.Options(
	fx.Provide(
		config.Load,
		newLogger,
		fx.Annotate(
			func(l *logger.Impl) *logger.Impl { return l },
			fx.As(new(logger.Logger)),
		),
	),
	fx.WithLogger(func(l *logger.Impl) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: l.Logger.With("component", "fx")}
	}),
	fx.Provide(
		newStore,
		newUploader,
		newFirebase,
		newTokenManager,
		realtime.NewHub,
		func(h *realtime.Hub) actions.Relay { return h },
		actions.New,
		newLimiter,
		newEcho,
		newStorySweeper,
		newLimiterPruner,
	),
	fx.Invoke(run),
)

func newLogger(cfg *config.Config) *logger.Impl {
	return logger.New(logger.Opts{
		Env:       cfg.App.Env,
		SentryDSN: cfg.App.SentryDSN,
	})
}

// newStore opens the configured backend. The returned Pinger is nil for the
// in-memory store.
func newStore(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) (*repositories.Store, handlers.Pinger, error) {
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn("Using the in-memory store, data is lost on restart")
		return memory.NewStore(), nil, nil
	}

	db, err := config.InitDB(cfg, log.WithComponent("database"))
	if err != nil {
		return nil, nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.CloseDB(ctx)
			return nil
		},
	})

	if err := repositories.MigrateSessions(db.Postgres); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate sessions: %w", err)
	}
	store := repositories.NewMongoStore(db.Mongo, db.Database, db.Postgres)
	if err := store.EnsureIndexes(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	ping := func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) }
	return store, ping, nil
}

func newUploader(cfg *config.Config, log logger.Logger) (storage.Uploader, error) {
	if !cfg.StorageEnabled() {
		log.Warn("S3 storage not configured, media uploads are disabled")
		return storage.Disabled{}, nil
	}
	return storage.NewS3Uploader(context.Background(), cfg.S3Options())
}

func newFirebase(cfg *config.Config, log logger.Logger) (actions.FirebaseVerifier, error) {
	if cfg.Auth.FirebaseCredentialsPath == "" {
		log.Info("Firebase credentials not set, firebase login is disabled")
		return nil, nil
	}
	fb, err := firebase.InitFirebase(context.Background(), cfg.Auth.FirebaseCredentialsPath)
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func newTokenManager(cfg *config.Config) *auth.Manager {
	return auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func newLimiter(cfg *config.Config) *ratelimit.InMemoryLimiter {
	return ratelimit.NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst)
}

func newEcho(cfg *config.Config, log logger.Logger, a *actions.Actions, hub *realtime.Hub,
	limiter *ratelimit.InMemoryLimiter, ping handlers.Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Deps{
		Config:  cfg,
		Logger:  log,
		Actions: a,
		Hub:     hub,
		Limiter: limiter,
		Ping:    ping,
	})
	return e
}

func newStorySweeper(cfg *config.Config, a *actions.Actions, log logger.Logger) *jobs.StorySweeper {
	return jobs.NewStorySweeper(a, cfg.Jobs.StorySweepInterval, log)
}

func newLimiterPruner(cfg *config.Config, limiter *ratelimit.InMemoryLimiter, log logger.Logger) *jobs.LimiterPruner {
	return jobs.NewLimiterPruner(limiter, 10*cfg.RateLimit.Per, log)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, log logger.Logger, cfg *config.Config, e *echo.Echo,
	hub *realtime.Hub, sweeper *jobs.StorySweeper, pruner *jobs.LimiterPruner) {
	jobCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				addr := ":" + cfg.App.Port
				log.Info("Starting server", "addr", addr, "env", cfg.App.Env)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server failed", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			if cfg.Jobs.StorySweepEnabled {
				if err := sweeper.Start(jobCtx); err != nil {
					return err
				}
			}
			return pruner.Start()
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			err := e.Shutdown(ctx)
			hub.Close()
			return errors.Join(err, sweeper.Stop(), pruner.Stop())
		},
	})
}
