package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	SeedOnStart bool
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type StoreConfig struct {
	Backend    string
	KeyPrefix  string
	MaxRetries int
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// RedisConfig points at the Redis used as a store backend and, when set with
// any backend, as the search cache and sweep lock.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type SQLiteConfig struct {
	Path string
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type AuthConfig struct {
	BcryptCost int
}

type SchedulerConfig struct {
	JobExpirySweep string
	LockTTL        time.Duration
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		v := opt(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		v := opt(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	optBool := func(key string, def bool) bool {
		v := opt(key)
		if v == "" {
			return def
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return b
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		SeedOnStart: optBool("SEED_ON_START", true),
	}

	cfg.Store = StoreConfig{
		Backend:    strings.ToLower(optDefault("STORE_BACKEND", BackendMemory)),
		KeyPrefix:  optDefault("STORE_KEY_PREFIX", "bluujobs_"),
		MaxRetries: optInt("STORE_MAX_RETRIES", 5),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}

	cfg.Redis = RedisConfig{
		URL:      opt("REDIS_URL"),
		CacheTTL: optDuration("REDIS_TTL", 2*time.Minute),
	}
	cfg.SQLite = SQLiteConfig{Path: optDefault("SQLITE_PATH", "bluujobs.db")}

	cfg.JWT = JWTConfig{
		AccessSecret:     opt("JWT_ACCESS_SECRET"),
		RefreshSecret:    opt("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: optDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.Auth = AuthConfig{BcryptCost: optInt("BCRYPT_COST", 10)}
	cfg.Scheduler = SchedulerConfig{
		JobExpirySweep: optDefault("JOB_EXPIRY_SWEEP", "@every 15m"),
		LockTTL:        optDuration("JOB_EXPIRY_LOCK_TTL", time.Minute),
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if cfg.Redis.URL == "" {
			missing = append(missing, "REDIS_URL")
		}
	case BackendPostgres:
		for _, kv := range [][2]string{
			{"DB_HOST", cfg.Database.DBHost},
			{"DB_PORT", cfg.Database.DBPort},
			{"DB_NAME", cfg.Database.DBName},
			{"DB_USER", cfg.Database.DBUser},
		} {
			if kv[1] == "" {
				missing = append(missing, kv[0])
			}
		}
	default:
		invalid = append(invalid, "STORE_BACKEND")
	}

	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		if cfg.App.Environment == "production" {
			missing = append(missing, "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET")
		} else {
			cfg.JWT.AccessSecret = optDefault("JWT_ACCESS_SECRET", "dev-access-secret")
			cfg.JWT.RefreshSecret = optDefault("JWT_REFRESH_SECRET", "dev-refresh-secret")
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}
