package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBURL       string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"learnhub"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"learnhub"`
	DBName      string `env:"DB_NAME" envDefault:"learnhub"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"learnhub.db"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	JWTSecret    string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"168h"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	SeedCourses   bool   `env:"SEED_COURSES" envDefault:"true"`

	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5000"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"learnhub-api"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SendGridFrom   string `env:"SENDGRID_FROM" envDefault:"no-reply@learnhub.dev"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	WorkerPoll        time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"500ms"`
	WorkerHealthPort  int           `env:"WORKER_HEALTH_PORT" envDefault:"8081"`
	ReconcileCron     string        `env:"RECONCILE_CRON" envDefault:"@every 1h"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.buildDBURL()
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Env == "prod" && c.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in prod")
	}

	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}

	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	return nil
}

func (c Config) buildDBURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
