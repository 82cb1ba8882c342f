package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds the service settings read from the environment
type Config struct {
	HTTPAddr        string        `env:"AUCTION_HTTP_ADDR"        envDefault:":8080"`
	Store           string        `env:"AUCTION_STORE"            envDefault:"memory"`
	DatabaseDSN     string        `env:"AUCTION_DATABASE_DSN"`
	JWTSecret       string        `env:"AUCTION_JWT_SECRET,required,notEmpty"`
	JWTIssuer       string        `env:"AUCTION_JWT_ISSUER"`
	RedisAddr       string        `env:"AUCTION_REDIS_ADDR"`
	BidRateLimit    int           `env:"AUCTION_BID_RATE_LIMIT"   envDefault:"30"`
	BidRateWindow   time.Duration `env:"AUCTION_BID_RATE_WINDOW"  envDefault:"1m"`
	LogLevel        string        `env:"AUCTION_LOG_LEVEL"        envDefault:"info"`
	ServiceName     string        `env:"AUCTION_SERVICE_NAME"     envDefault:"auction-service"`
	ShutdownTimeout time.Duration `env:"AUCTION_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SeedDemo        bool          `env:"AUCTION_SEED_DEMO"        envDefault:"false"`

	TraceExporter string `env:"AUCTION_TRACE_EXPORTER" envDefault:"none"`
	OTLPEndpoint  string `env:"AUCTION_OTLP_ENDPOINT"  envDefault:"localhost:4317"`
	OTLPInsecure  bool   `env:"AUCTION_OTLP_INSECURE"  envDefault:"true"`
}

// ParseEnv parses environment variables into target
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates the configuration
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express
func (c Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("AUCTION_DATABASE_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUCTION_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store))
	}

	if c.RedisAddr != "" {
		if c.BidRateLimit <= 0 {
			errs = append(errs, errors.New("AUCTION_BID_RATE_LIMIT must be positive"))
		}
		if c.BidRateWindow <= 0 {
			errs = append(errs, errors.New("AUCTION_BID_RATE_WINDOW must be positive"))
		}
	}
	switch c.TraceExporter {
	case "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("AUCTION_TRACE_EXPORTER must be none, stdout or otlp, got %q", c.TraceExporter))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("AUCTION_SHUTDOWN_TIMEOUT must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
