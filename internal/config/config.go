package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage
	ProductsPath string        `env:"PRODUCTS_PATH" envDefault:"data/products.json"`
	UsersPath    string        `env:"USERS_PATH" envDefault:"data/users.json"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`
	SeedProducts int           `env:"SEED_PRODUCTS" envDefault:"40"`

	// Auth
	JWTSecret           string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
	LoginLimitPerMin    int           `env:"LOGIN_LIMIT_PER_MIN" envDefault:"5"`
	RegisterLimitPerMin int           `env:"REGISTER_LIMIT_PER_MIN" envDefault:"3"`

	// Remote products API for cart lookups; empty means in-process
	CatalogURL string `env:"CATALOG_URL"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsToken   string `env:"METRICS_TOKEN"`
}

func (c *Config) Addr() string { return ":" + c.Port }

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set win over .env entries.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ProductsPath == "" || c.UsersPath == "" {
		return fmt.Errorf("PRODUCTS_PATH and USERS_PATH are required")
	}
	if c.ProductsPath == c.UsersPath {
		return fmt.Errorf("products and users must use different files")
	}
	if c.SeedProducts < 0 {
		return fmt.Errorf("SEED_PRODUCTS must be >= 0")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}
