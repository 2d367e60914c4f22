package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=5000"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	JWTSecret    string `env:"JWT_SECRET"`
	AuthRequired bool   `env:"AUTH_REQUIRED, default=false"`

	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Agent    AgentConfig
}

type DatabaseConfig struct {
	URL string `env:"DATABASE_URL, required"`
	// ReadOnlyURL points at a role limited to SELECT. Falls back to URL.
	ReadOnlyURL  string        `env:"DATABASE_READONLY_URL"`
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT, default=5s"`
	Migrate      bool          `env:"DB_MIGRATE,       default=true"`
}

type RedisConfig struct {
	// Addr is optional; without it the schema cache stays in-process and
	// rate limiting is disabled.
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,         default=0"`
	SchemaCacheTTL time.Duration `env:"SCHEMA_CACHE_TTL, default=10m"`
}

type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER,    default=gemini"`
	APIKey      string        `env:"LLM_API_KEY"`
	BaseURL     string        `env:"LLM_BASE_URL"`
	Model       string        `env:"LLM_MODEL"`
	Timeout     time.Duration `env:"LLM_TIMEOUT,     default=30s"`
	Temperature float32       `env:"LLM_TEMPERATURE, default=0"`
}

type AgentConfig struct {
	MaxIterations int           `env:"AGENT_MAX_ITERATIONS, default=10"`
	TopK          int           `env:"AGENT_TOP_K,          default=5"`
	Tables        []string      `env:"AGENT_TABLES,         default=transactions"`
	RateLimit     int           `env:"AGENT_RATE_LIMIT,     default=20"`
	RateWindow    time.Duration `env:"AGENT_RATE_WINDOW,    default=1m"`
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom builds a validated Config from l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("config: LLM_PROVIDER must be openai or gemini, got %q", c.LLM.Provider)
	}
	if c.AuthRequired && c.JWTSecret == "" {
		return errors.New("config: AUTH_REQUIRED needs JWT_SECRET")
	}
	if c.Agent.MaxIterations < 1 {
		return errors.New("config: AGENT_MAX_ITERATIONS must be at least 1")
	}
	if c.Agent.TopK < 1 {
		return errors.New("config: AGENT_TOP_K must be at least 1")
	}
	if len(c.Agent.Tables) == 0 {
		return errors.New("config: AGENT_TABLES must name at least one table")
	}
	for i, t := range c.Agent.Tables {
		c.Agent.Tables[i] = strings.TrimSpace(t)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
