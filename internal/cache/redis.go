package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"StockRadar/internal/model"
)

// RedisStore implements Store on a Redis instance. Expiry is delegated to
// Redis TTLs; the stored envelope keeps fetch metadata alongside the
// payload.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int, log zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisStore{
		client: client,
		log:    log.With().Str("component", "cache").Logger(),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key model.ResourceKey) (*model.CacheEntry, bool, error) {
	data, err := s.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt envelope is treated as a miss and dropped.
		s.log.Warn().Str("key", key.String()).Err(err).Msg("dropping corrupt cache entry")
		s.client.Del(ctx, key.String())
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key model.ResourceKey, payload []byte, ttl time.Duration) error {
	entry := model.CacheEntry{
		Key:        key.String(),
		Payload:    payload,
		FetchedAt:  time.Now(),
		TTLSeconds: int(ttl.Seconds()),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
