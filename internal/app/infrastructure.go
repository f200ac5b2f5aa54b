package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/internal/config"
	"github.com/prperemyshlev/wellness-portal/migrations"
	"github.com/prperemyshlev/wellness-portal/pkg/database"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
	"github.com/prperemyshlev/wellness-portal/pkg/observability"
	"go.uber.org/zap"
)

const serviceName = "wellness-portal"

type Infrastructure interface {
	Store() docstore.Store
	// Redis returns nil when REDIS_ENABLED is false
	Redis() *database.Redis
	Logger() *zap.Logger
	Telemetry() *observability.Telemetry

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	store     docstore.Store
	postgres  *database.Postgres
	redis     *database.Redis
	logger    *zap.Logger
	telemetry *observability.Telemetry
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects the configured store backend and the optional Redis.
// The postgres backend migrates its schema before use.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	telemetry, err := observability.InitTelemetry(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.telemetry = telemetry

	if cfg.Redis.Enabled {
		redis, err := database.NewRedis(ctx, cfg.Redis.Options())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		i.redis = redis
	}

	store, err := i.openStore(ctx, cfg)
	if err != nil {
		_ = i.closeConnections()
		return nil, err
	}
	i.store = store

	logger.Info("Infrastructure ready",
		zap.String("store", cfg.Store.Backend),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	return i, nil
}

func (i *infrastructure) openStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return docstore.NewMemoryStore(), nil

	case config.StoreFile:
		store, err := docstore.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store file: %w", err)
		}
		return store, nil

	case config.StorePostgres:
		postgres, err := database.NewPostgres(ctx, cfg.Postgres.DSN(), cfg.Postgres.Pool())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		i.postgres = postgres

		version, err := database.Migrate(postgres.DB, migrations.FS)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
		i.logger.Info("Schema up to date", zap.Uint("version", version))

		return docstore.NewPostgresStore(postgres.DB), nil

	case config.StoreRedis:
		if i.redis == nil {
			return nil, errors.New("redis store backend requires REDIS_ENABLED=true")
		}
		return docstore.NewRedisStore(i.redis.Client, cfg.Store.MaxRetries), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func (i *infrastructure) Store() docstore.Store {
	return i.store
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) Telemetry() *observability.Telemetry {
	return i.telemetry
}

func (i *infrastructure) closeConnections() error {
	var errs []error
	if i.store != nil {
		errs = append(errs, i.store.Close())
	}
	if i.postgres != nil {
		errs = append(errs, i.postgres.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	return errors.Join(errs...)
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() { errs <- i.closeConnections() }()
	go func() { errs <- i.telemetry.Shutdown(ctx, i.logger) }()

	return errors.Join(<-errs, <-errs)
}
