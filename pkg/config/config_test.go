package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WORKSHOP_APP_ENV", "dev")
	t.Setenv("WORKSHOP_CATALOG_DB_DSN", "postgres://localhost:5432/catalog")
	t.Setenv("WORKSHOP_DOCS_DB_DSN", "postgres://localhost:5432/docs")
	t.Setenv("WORKSHOP_JWT_SECRET", "test-secret")
	t.Setenv("WORKSHOP_JWT_ISSUER", "workshop")
}

func TestLoad(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CatalogDB.DSN != "postgres://localhost:5432/catalog" {
		t.Fatalf("unexpected catalog dsn %q", cfg.CatalogDB.DSN)
	}
	if cfg.DocsDB.DSN != "postgres://localhost:5432/docs" {
		t.Fatalf("unexpected docs dsn %q", cfg.DocsDB.DSN)
	}
	if !cfg.App.IsDev() || cfg.App.IsProd() {
		t.Fatal("expected dev environment")
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.App.Port)
	}
	if cfg.CatalogDB.MaxOpenConns != 20 {
		t.Fatalf("expected default pool size, got %d", cfg.CatalogDB.MaxOpenConns)
	}
}

func TestLoadMissingDocsDSN(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WORKSHOP_DOCS_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when docs store DSN is missing")
	}
}

func TestRefreshTokenTTL(t *testing.T) {
	cfg := JWTConfig{RefreshTokenTTLMinutes: 60}
	if cfg.RefreshTokenTTL() != time.Hour {
		t.Fatalf("unexpected ttl %s", cfg.RefreshTokenTTL())
	}
	cfg.RefreshTokenTTLMinutes = 0
	if cfg.RefreshTokenTTL() != 0 {
		t.Fatal("expected zero ttl")
	}
}
