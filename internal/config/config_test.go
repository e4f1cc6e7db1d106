package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"ADMIT_PORT", "ADMIT_METRICS_PORT", "ADMIT_ADMIN_TOKEN",
	"ADMIT_CATALOG_SOURCE", "ADMIT_CATALOG_PATH", "ADMIT_DATABASE_URL",
	"ADMIT_REDIS_ADDR", "ADMIT_REDIS_PASSWORD", "ADMIT_HERMES_URL",
	"ADMIT_NON_CONTRIBUTING_SUBJECTS", "ADMIT_ALMOST_ELIGIBLE_GAP",
	"ADMIT_MATCH_ON_INSTITUTION_SCALE", "ADMIT_LOG_LEVEL", "ADMIT_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Catalog.Source != "file" || cfg.Catalog.Path != "catalog.yaml" {
		t.Errorf("unexpected catalog config %+v", cfg.Catalog)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected hermes disabled by default, got %s", cfg.Hermes.URL)
	}
	if len(cfg.Policy.NonContributingSubjects) != 1 || cfg.Policy.NonContributingSubjects[0] != "Life Orientation" {
		t.Errorf("unexpected non-contributing subjects %v", cfg.Policy.NonContributingSubjects)
	}
	if cfg.Policy.AlmostEligibleGap != 5 {
		t.Errorf("expected almost-eligible gap 5, got %d", cfg.Policy.AlmostEligibleGap)
	}
	edges := cfg.Policy.RecommendationBandEdges
	if len(edges) != 3 || edges[0] != 20 || edges[1] != 30 || edges[2] != 35 {
		t.Errorf("unexpected band edges %v", edges)
	}
	if cfg.Policy.MatchOnInstitutionScale {
		t.Error("expected standard-score matching by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Errorf("expected CacheTTL 10m, got %v", cfg.CacheTTL())
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIT_PORT", "9000")
	t.Setenv("ADMIT_METRICS_PORT", "9001")
	t.Setenv("ADMIT_ADMIN_TOKEN", "secret-token")
	t.Setenv("ADMIT_CATALOG_SOURCE", "postgres")
	t.Setenv("ADMIT_DATABASE_URL", "postgres://localhost/admit_test")
	t.Setenv("ADMIT_REDIS_ADDR", "redis:6379")
	t.Setenv("ADMIT_HERMES_URL", "nats://nats:4222")
	t.Setenv("ADMIT_NON_CONTRIBUTING_SUBJECTS", "Life Orientation, Religion Studies ,")
	t.Setenv("ADMIT_ALMOST_ELIGIBLE_GAP", "3")
	t.Setenv("ADMIT_MATCH_ON_INSTITUTION_SCALE", "true")
	t.Setenv("ADMIT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MetricsPort != 9001 {
		t.Errorf("unexpected ports %d/%d", cfg.Server.Port, cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token, got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Catalog.Source != "postgres" || cfg.Database.URL != "postgres://localhost/admit_test" {
		t.Errorf("unexpected catalog/database config %+v %+v", cfg.Catalog, cfg.Database)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("expected redis addr, got '%s'", cfg.Redis.Addr)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	subjects := cfg.Policy.NonContributingSubjects
	if len(subjects) != 2 || subjects[1] != "Religion Studies" {
		t.Errorf("unexpected non-contributing subjects %v", subjects)
	}
	if cfg.Policy.AlmostEligibleGap != 3 {
		t.Errorf("expected gap 3, got %d", cfg.Policy.AlmostEligibleGap)
	}
	if !cfg.Policy.MatchOnInstitutionScale {
		t.Error("expected institution-scale matching")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "admit.yaml")
	data := `
server:
  port: 8800
catalog:
  source: file
  path: /etc/admit/catalog.yaml
policy:
  almost_eligible_gap: 4
  recommendation_band_edges: [18, 28, 36]
logging:
  format: text
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8800 {
		t.Errorf("expected port 8800, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port to survive, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Catalog.Path != "/etc/admit/catalog.yaml" {
		t.Errorf("unexpected catalog path %s", cfg.Catalog.Path)
	}
	if cfg.Policy.AlmostEligibleGap != 4 || cfg.Policy.RecommendationBandEdges[0] != 18 {
		t.Errorf("unexpected policy %+v", cfg.Policy)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("ADMIT_CATALOG_SOURCE", "postgres")
		if _, err := Load(""); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		t.Setenv("ADMIT_CATALOG_SOURCE", "s3")
		if _, err := Load(""); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}
