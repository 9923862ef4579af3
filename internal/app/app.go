package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/auth"
	"github.com/monster-anshu/api-social-media/internal/chat"
	"github.com/monster-anshu/api-social-media/internal/config"
	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/service/follows"
	"github.com/monster-anshu/api-social-media/internal/store"
	"github.com/monster-anshu/api-social-media/internal/store/postgres"
	"github.com/monster-anshu/api-social-media/internal/store/sqlite"
	transporthttp "github.com/monster-anshu/api-social-media/internal/transport/http"
)

// App wires together storage, services and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *presence.Hub
	store           store.Store
	log             *zerolog.Logger
}

// OpenStore opens the storage backend selected by cfg.DBDriver.
func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return st, nil
	case "postgres":
		st, err := postgres.New(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown db_driver %q", cfg.DBDriver)
	}
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("driver", cfg.DBDriver).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}

	authService := auth.NewService(st, jwtConfig)
	hub := presence.NewHub(st, logger, cfg.StoreTimeout)
	chatService := chat.NewService(st, hub, logger)
	followService := follows.New(st)

	server := transporthttp.NewServer(transporthttp.Deps{
		Store:   st,
		Auth:    authService,
		Follows: followService,
		Chat:    chatService,
		Hub:     hub,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
