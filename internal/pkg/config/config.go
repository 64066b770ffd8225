package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	APIURL     string        `env:"API_URL, required"`
	APITimeout time.Duration `env:"API_TIMEOUT, default=10s"`

	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Cache   CacheConfig

	// TokenFile is where the CLI keeps its session. Empty means the
	// per-user default location.
	TokenFile string `env:"TOKEN_FILE"`

	Mongo MongoConfig
	Redis RedisConfig
}

type SessionConfig struct {
	Secret  string        `env:"SESSION_SECRET"`
	TTL     time.Duration `env:"SESSION_TTL,     default=24h"`
	Backend string        `env:"SESSION_BACKEND, default=memory"`
}

type CacheConfig struct {
	Backend string `env:"CACHE_BACKEND, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=orders_console"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l. Tests pass envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for process startup: missing configuration is fatal.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// RequireSessionSecret is checked by the server only; the CLI has no
// browser sessions to sign.
func (c *Config) RequireSessionSecret() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required to serve")
	}
	return nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL %q is not an absolute URL", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	switch c.Session.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("SESSION_BACKEND %q is not one of memory, redis, mongo", c.Session.Backend)
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND %q is not one of memory, redis", c.Cache.Backend)
	}
	return nil
}
