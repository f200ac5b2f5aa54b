package config

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/pkg/database"
	"github.com/sethvargo/go-envconfig"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Password hashing algorithms
const (
	PasswordArgon2id = "argon2id"
	PasswordBCrypt   = "bcrypt"
)

type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Store     StoreConfig     `env:",prefix=STORE_"`
	Postgres  PostgresConfig  `env:",prefix=POSTGRES_"`
	Redis     RedisConfig     `env:",prefix=REDIS_"`
	JWT       JWTConfig       `env:",prefix=JWT_"`
	Password  PasswordConfig  `env:",prefix=PASSWORD_"`
	RateLimit RateLimitConfig `env:",prefix=RATE_LIMIT_"`
	Audit     AuditConfig     `env:",prefix=AUDIT_"`
	CORS      CORSConfig      `env:",prefix=CORS_"`
	Env       string          `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=3001"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type StoreConfig struct {
	Backend string `env:"BACKEND,default=file"`
	Path    string `env:"PATH,default=db.json"`
	// Redis optimistic transaction retries before giving up on a contended collection
	MaxRetries int `env:"MAX_RETRIES,default=10"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=wellness"`
	Password string `env:"PASSWORD,default=wellness_password"`
	DBName   string `env:"DB,default=wellness_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
	// pool sizing for the document store
	MaxOpenConns    int      `env:"MAX_OPEN_CONNS,default=20"`
	MaxIdleConns    int      `env:"MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime Duration `env:"CONN_MAX_LIFETIME,default=30m"`
}

type RedisConfig struct {
	Enabled     bool     `env:"ENABLED,default=false"`
	Host        string   `env:"HOST,default=localhost"`
	Port        string   `env:"PORT,default=6379"`
	Password    string   `env:"PASSWORD,default="`
	DB          int      `env:"DB,default=0"`
	PoolSize    int      `env:"POOL_SIZE,default=10"`
	DialTimeout Duration `env:"DIAL_TIMEOUT,default=5s"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=1h"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

type PasswordConfig struct {
	Algorithm  string `env:"ALGORITHM,default=argon2id"`
	BCryptCost int    `env:"BCRYPT_COST,default=12"`
	// argon2id parameters
	Memory      uint32 `env:"ARGON2_MEMORY,default=65536"`
	Iterations  uint32 `env:"ARGON2_ITERATIONS,default=1"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM,default=4"`
}

type RateLimitConfig struct {
	Requests int      `env:"REQUESTS,default=10"`
	Window   Duration `env:"WINDOW,default=1m"`
}

type AuditConfig struct {
	BufferSize int `env:"BUFFER_SIZE,default=256"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,PATCH,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Origin,Content-Type,Accept,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection string in URL form, as golang-migrate expects it
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Pool returns the connection pool sizing
func (p PostgresConfig) Pool() database.PoolOptions {
	return database.PoolOptions{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime.Duration,
	}
}

// Options returns the client options for the shared Redis connection
func (r RedisConfig) Options() database.RedisOptions {
	return database.RedisOptions{
		Addr:        r.Address(),
		Password:    r.Password,
		DB:          r.DB,
		PoolSize:    r.PoolSize,
		DialTimeout: r.DialTimeout.Duration,
	}
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks cross-field constraints envconfig cannot express
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile, StorePostgres:
	case StoreRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("STORE_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Password.Algorithm {
	case PasswordArgon2id, PasswordBCrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_ALGORITHM %q", c.Password.Algorithm)
	}

	// argon2 panics on zero passes or lanes
	if c.Password.Iterations < 1 || c.Password.Parallelism < 1 {
		return fmt.Errorf("PASSWORD_ARGON2_ITERATIONS and PASSWORD_ARGON2_PARALLELISM must be at least 1")
	}
	if c.Password.Memory < 8*uint32(c.Password.Parallelism) {
		return fmt.Errorf("PASSWORD_ARGON2_MEMORY must be at least 8 KiB per lane")
	}
	if c.Password.BCryptCost < 4 || c.Password.BCryptCost > 31 {
		return fmt.Errorf("PASSWORD_BCRYPT_COST must be between 4 and 31")
	}

	if c.JWT.AccessTokenExpiry.Duration <= 0 || c.JWT.RefreshTokenExpiry.Duration <= 0 {
		return fmt.Errorf("token expiries must be positive")
	}

	return nil
}
