package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bluujobs/internal/config"
	"bluujobs/internal/database"
	"bluujobs/internal/database/migration"
	dbpostgres "bluujobs/internal/database/postgres"
	"bluujobs/internal/database/seeder"
	"bluujobs/internal/database/sqlite"
	"bluujobs/internal/infrastructure/cache"
	"bluujobs/internal/pkg/jwt"
	"bluujobs/internal/repository"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
	adminuc "bluujobs/internal/usecase/admin"
	appuc "bluujobs/internal/usecase/application"
	"bluujobs/internal/usecase/auth"
	favuc "bluujobs/internal/usecase/favorite"
	"bluujobs/internal/usecase/integrity"
	jobuc "bluujobs/internal/usecase/job"
	msguc "bluujobs/internal/usecase/message"
	notifuc "bluujobs/internal/usecase/notification"
	reviewuc "bluujobs/internal/usecase/review"
	useruc "bluujobs/internal/usecase/user"
)

// Container wires the store, its backend and every usecase service.
type Container struct {
	Config config.Config
	Logger *log.Logger

	// DB is set for the SQL backends only.
	DB    database.DB
	KV    store.KV
	Store *store.Store
	Keys  store.Keys

	Repos    repository.Set
	Sessions *session.Holder
	// Cache is nil when REDIS_URL is unset.
	Cache *cache.Redis
	JWT   jwt.Service

	Auth          *auth.Service
	Users         *useruc.Service
	Jobs          *jobuc.Service
	Applications  *appuc.Service
	Notifications *notifuc.Service
	Favorites     *favuc.Service
	Messages      *msguc.Service
	Reviews       *reviewuc.Service
	Admin         *adminuc.Service
}

func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	kv, db, err := OpenKV(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return Assemble(ctx, cfg, kv, db, logger), nil
}

// Assemble wires the services over an already opened backend. db may be nil.
func Assemble(ctx context.Context, cfg config.Config, kv store.KV, db database.DB, logger *log.Logger) *Container {
	if logger == nil {
		logger = log.Default()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		KV:     kv,
		Store:  store.New(kv, store.WithMaxAttempts(cfg.Store.MaxRetries), store.WithLogger(logger)),
		Keys:   store.NewKeys(cfg.Store.KeyPrefix),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
	}
	c.Repos = repository.NewSet(c.Keys)
	c.Sessions = session.NewHolder(c.Keys, session.WithTTL(cfg.JWT.RefreshExpiresIn))

	var jobOpts []jobuc.Option
	if cfg.Redis.URL != "" {
		c.Cache = cache.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.CacheTTL, logger)
		jobOpts = append(jobOpts, jobuc.WithSearchCache(c.Cache, cfg.Redis.CacheTTL))
	}

	repos := integrity.Repos{
		Users:        c.Repos.Users,
		Jobs:         c.Repos.Jobs,
		Applications: c.Repos.Applications,
		Favorites:    c.Repos.Favorites,
		Reviews:      c.Repos.Reviews,
	}
	c.Auth = auth.NewService(c.Store, c.Repos.Users, c.Sessions, cfg.Auth.BcryptCost, logger)
	c.Users = useruc.NewService(c.Store, repos, c.Repos.Notifications, c.Sessions, logger)
	c.Jobs = jobuc.NewService(c.Store, c.Keys, repos, c.Repos.Notifications, logger, jobOpts...)
	c.Applications = appuc.NewService(c.Store, repos, c.Repos.Notifications, logger)
	c.Notifications = notifuc.NewService(c.Store, c.Repos.Notifications, c.Repos.Users, logger)
	c.Favorites = favuc.NewService(c.Store, c.Repos.Favorites, c.Repos.Jobs, logger)
	c.Messages = msguc.NewService(c.Store, c.Repos.Messages, c.Repos.Users, logger)
	c.Reviews = reviewuc.NewService(c.Store, repos, c.Sessions, logger)
	c.Admin = adminuc.NewService(c.Store, c.Keys, repos, c.Sessions, logger)

	return c
}

// OpenKV connects the backend named by cfg.Store.Backend. For PostgreSQL it
// also applies pending migrations.
func OpenKV(ctx context.Context, cfg config.Config, logger *log.Logger) (store.KV, database.DB, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		return store.NewMemoryKV(), nil, nil

	case config.BackendRedis:
		kv, err := store.NewRedisKV(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil

	case config.BackendPostgres:
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := dbpostgres.Connect(cctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.Default(logger).Run(ctx, db.SQLDB()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return store.NewSQLKV(db, store.PostgresDialect, logger), db, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLKV(db, store.SQLiteDialect, logger), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Seed writes the demo dataset into every collection key that is absent.
func (c *Container) Seed(ctx context.Context) (int, error) {
	seeders, err := seeder.Defaults(c.Keys, time.Now(), c.Config.Auth.BcryptCost)
	if err != nil {
		return 0, err
	}
	return seeder.Runner{Seeders: seeders, Logger: c.Logger}.Run(ctx, c.KV)
}

// Close releases the cache and the store backend.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}
