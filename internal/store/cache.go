package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

const DefaultCacheKey = "admit:catalog:dataset"

// CachedSource serves the dataset from Redis and falls through to the wrapped
// source on a miss or any Redis error, repopulating the key afterwards.
type CachedSource struct {
	next   CatalogSource
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedSource(next CatalogSource, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		client: client,
		key:    DefaultCacheKey,
		ttl:    ttl,
		logger: logger,
	}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *CachedSource) Load(ctx context.Context) (*catalog.Dataset, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		var ds catalog.Dataset
		jerr := json.Unmarshal(data, &ds)
		if jerr == nil {
			return &ds, nil
		}
		s.logger.Warn("discarding corrupt cached catalog", "key", s.key, "error", jerr)
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("catalog cache unavailable", "key", s.key, "error", err)
	}

	ds, err := s.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, ds)
	return ds, nil
}

// Invalidate drops the cached dataset so the next Load reads through.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *CachedSource) store(ctx context.Context, ds *catalog.Dataset) {
	payload, err := json.Marshal(ds)
	if err != nil {
		s.logger.Warn("encode catalog for cache", "error", err)
		return
	}
	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("populate catalog cache", "key", s.key, "error", err)
	}
}
