package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "PRODUCTS_PATH", "USERS_PATH", "STORE_TIMEOUT", "SEED_PRODUCTS",
	"JWT_SECRET", "TOKEN_TTL", "LOGIN_LIMIT_PER_MIN", "REGISTER_LIMIT_PER_MIN",
	"CATALOG_URL", "METRICS_ENABLED", "METRICS_TOKEN",
}

// clearEnv unsets every config key for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr=%s", cfg.Addr())
	}
	if cfg.ProductsPath != "data/products.json" || cfg.UsersPath != "data/users.json" {
		t.Fatalf("paths=%s %s", cfg.ProductsPath, cfg.UsersPath)
	}
	if cfg.SeedProducts != 40 {
		t.Fatalf("seed=%d", cfg.SeedProducts)
	}
	if cfg.StoreTimeout != 3*time.Second || cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("timeouts=%s %s", cfg.StoreTimeout, cfg.TokenTTL)
	}
	if !cfg.MetricsEnabled || cfg.CatalogURL != "" {
		t.Fatalf("metrics=%v catalog=%q", cfg.MetricsEnabled, cfg.CatalogURL)
	}
}

func TestLoad_EnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	dotenv := "PORT=9090\nSEED_PRODUCTS=5\nSTORE_TIMEOUT=250ms\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SEED_PRODUCTS", "0")
	t.Setenv("CATALOG_URL", "http://catalog:8082")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port=%s", cfg.Port)
	}
	if cfg.SeedProducts != 0 {
		t.Fatalf("seed=%d", cfg.SeedProducts)
	}
	if cfg.StoreTimeout != 250*time.Millisecond {
		t.Fatalf("timeout=%s", cfg.StoreTimeout)
	}
	if cfg.CatalogURL != "http://catalog:8082" {
		t.Fatalf("catalog=%s", cfg.CatalogURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	tests := map[string]map[string]string{
		"same files":    {"PRODUCTS_PATH": "x.json", "USERS_PATH": "x.json"},
		"negative seed": {"SEED_PRODUCTS": "-1"},
		"bad duration":  {"STORE_TIMEOUT": "soon"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("want error")
			}
		})
	}
}
