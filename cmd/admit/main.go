package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Admit/internal/advisor"
	"github.com/MikeSquared-Agency/Admit/internal/api"
	"github.com/MikeSquared-Agency/Admit/internal/config"
	"github.com/MikeSquared-Agency/Admit/internal/hermes"
	"github.com/MikeSquared-Agency/Admit/internal/metrics"
	"github.com/MikeSquared-Agency/Admit/internal/store"
	"github.com/MikeSquared-Agency/Admit/internal/subject"
	"github.com/MikeSquared-Agency/Admit/internal/summary"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog source
	var source store.CatalogSource
	switch cfg.Catalog.Source {
	case "postgres":
		db, err := store.NewPostgresSource(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		source = db
		logger.Info("catalog source: postgres")
	default:
		source = store.NewFileSource(cfg.Catalog.Path)
		logger.Info("catalog source: file", "path", cfg.Catalog.Path)
	}

	// Redis cache (optional)
	if cfg.Redis.Addr != "" {
		rc, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("failed to connect to redis, running without catalog cache", "error", err)
		} else {
			defer rc.Close()
			source = store.NewCachedSource(source, rc, cfg.CacheTTL(), logger)
			logger.Info("catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CacheTTL())
		}
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	policy, err := policyFromConfig(cfg.Policy)
	if err != nil {
		logger.Error("invalid policy", "error", err)
		os.Exit(1)
	}

	adv := advisor.New(source, policy, hermesClient, metrics.NewPrometheus(prometheus.DefaultRegisterer), logger)
	if _, err := adv.Reload(ctx); err != nil {
		// Keep serving: catalog routes answer 503 until a reload succeeds.
		logger.Error("failed to load catalog, waiting for a reload", "error", err)
	}
	if hermesClient != nil {
		if err := adv.ListenForReloads(ctx); err != nil {
			logger.Warn("failed to subscribe to reload requests", "error", err)
		}
	}

	// API server
	router := api.NewRouter(adv, cfg.Server.AdminToken, cfg.Server.RateLimitPerMinute, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// SIGHUP reloads the catalog, SIGINT/SIGTERM shut down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		if _, err := adv.Reload(ctx); err != nil {
			logger.Error("catalog reload failed, keeping current catalog", "error", err)
		}
	}

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func policyFromConfig(cfg config.PolicyConfig) (advisor.Policy, error) {
	policy := advisor.DefaultPolicy()
	policy.Exclusions = subject.NewExclusions(cfg.NonContributingSubjects...)
	policy.AlmostEligibleGap = cfg.AlmostEligibleGap
	policy.MatchOnInstitutionScale = cfg.MatchOnInstitutionScale
	if len(cfg.RecommendationBandEdges) > 0 {
		bands, err := summary.BandsFromEdges(cfg.RecommendationBandEdges, summary.DefaultGuidance())
		if err != nil {
			return advisor.Policy{}, fmt.Errorf("recommendation bands: %w", err)
		}
		policy.Bands = bands
	}
	return policy, nil
}
