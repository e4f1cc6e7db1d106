package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Policy   PolicyConfig   `yaml:"policy"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type CatalogConfig struct {
	// Source is "file" or "postgres".
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSec   int    `yaml:"ttl_seconds"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type PolicyConfig struct {
	NonContributingSubjects []string `yaml:"non_contributing_subjects"`
	AlmostEligibleGap       int      `yaml:"almost_eligible_gap"`
	RecommendationBandEdges []int    `yaml:"recommendation_band_edges"`
	// MatchOnInstitutionScale compares custom-scoring institutions against
	// their own score instead of the standard score.
	MatchOnInstitutionScale bool `yaml:"match_on_institution_scale"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSec) * time.Second
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   "catalog.yaml",
		},
		Redis: RedisConfig{
			TTLSec: 600,
		},
		Policy: PolicyConfig{
			NonContributingSubjects: []string{"Life Orientation"},
			AlmostEligibleGap:       5,
			RecommendationBandEdges: []int{20, 30, 35},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path required for file source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url required for postgres catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Policy.AlmostEligibleGap < 0 {
		return fmt.Errorf("policy.almost_eligible_gap must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ADMIT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ADMIT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ADMIT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ADMIT_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("ADMIT_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("ADMIT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ADMIT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ADMIT_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ADMIT_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ADMIT_NON_CONTRIBUTING_SUBJECTS"); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.Policy.NonContributingSubjects = names
	}
	if v := os.Getenv("ADMIT_ALMOST_ELIGIBLE_GAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Policy.AlmostEligibleGap = n
		}
	}
	if v := os.Getenv("ADMIT_MATCH_ON_INSTITUTION_SCALE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Policy.MatchOnInstitutionScale = b
		}
	}
	if v := os.Getenv("ADMIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ADMIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
