package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	authservice "ballotbox/contexts/identity-access/auth-service"
	passwordadapter "ballotbox/contexts/identity-access/auth-service/adapters/password"
	authpostgres "ballotbox/contexts/identity-access/auth-service/adapters/postgres"
	tokenadapter "ballotbox/contexts/identity-access/auth-service/adapters/token"
	pollservice "ballotbox/contexts/polling/poll-service"
	pollpostgres "ballotbox/contexts/polling/poll-service/adapters/postgres"
	votingengine "ballotbox/contexts/polling/voting-engine"
	votepostgres "ballotbox/contexts/polling/voting-engine/adapters/postgres"
	voteworkers "ballotbox/contexts/polling/voting-engine/application/workers"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/db"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  voteworkers.OutboxRelay
	audit        voteworkers.AuditConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := migrateAll(pg); err != nil {
			return nil, err
		}
	}

	pollRepo := pollpostgres.NewRepository(pg.DB, logger)
	pollModule := pollservice.NewModule(pollservice.Dependencies{
		Polls:  pollRepo,
		Clock:  pollpostgres.SystemClock{},
		IDGen:  pollpostgres.UUIDGenerator{},
		Logger: logger,
	})

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	voteModule := votingengine.NewModule(votingengine.Dependencies{
		Ledger:  voteRepo,
		Catalog: voteRepo,
		Clock:   votepostgres.SystemClock{},
		IDGen:   votepostgres.UUIDGenerator{},
		Logger:  logger,
	})

	authRepo := authpostgres.NewRepository(pg.DB, logger)
	authModule := authservice.NewModule(authservice.Dependencies{
		Users: authRepo,
		Tokens: tokenadapter.JWTService{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		Revoked: authRepo,
		Hasher:  passwordadapter.BcryptHasher{},
		Clock:   votepostgres.SystemClock{},
		IDGen:   votepostgres.UUIDGenerator{},
		Logger:  logger,
	})

	server := httpserver.New(pollModule, voteModule, authModule, logger, httpserver.Options{
		Addr:               normalizeAddr(cfg.HTTPPort),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		EnableRateLimiter:  cfg.EnableRateLimiter,
		EnableAuditLog:     cfg.EnableAuditLog,
	})
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: voteworkers.OutboxRelay{
			Outbox:    voteRepo,
			Publisher: bus,
			Clock:     votepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		audit: voteworkers.AuditConsumer{
			Subscriber:    bus,
			ConsumerGroup: "ballotbox-vote-audit-cg",
			Logger:        logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func migrateAll(pg *db.Postgres) error {
	if err := pollpostgres.Migrate(pg.DB); err != nil {
		return err
	}
	if err := votepostgres.Migrate(pg.DB); err != nil {
		return err
	}
	return authpostgres.Migrate(pg.DB)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.audit.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
