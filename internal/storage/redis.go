package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"NanoVision/server/internal/config"
	"NanoVision/server/internal/interfaces"

	"github.com/go-redis/redis/v8"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

const (
	settingsKeyPrefix    = "settings:"
	generationLogKey     = "generations:recent"
	generationLogMaxSize = 200
	generationLogTTL     = 7 * 24 * time.Hour
)

// GetSetting implements interfaces.SettingsStore
func (s *RedisStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, settingsKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) PutSetting(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, settingsKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) DeleteSetting(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, settingsKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// RecordGeneration pushes a finished generation onto the capped recent list
func (s *RedisStore) RecordGeneration(ctx context.Context, entry interfaces.GenerationRecord) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal generation record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, generationLogKey, data)
	pipe.LTrim(ctx, generationLogKey, 0, generationLogMaxSize-1)
	pipe.Expire(ctx, generationLogKey, generationLogTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// RecentGenerations returns the newest records first
func (s *RedisStore) RecentGenerations(ctx context.Context, limit int64) ([]interfaces.GenerationRecord, error) {
	if limit <= 0 || limit > generationLogMaxSize {
		limit = 50
	}

	results, err := s.client.LRange(ctx, generationLogKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read generation log: %w", err)
	}

	records := make([]interfaces.GenerationRecord, 0, len(results))
	for _, result := range results {
		var rec interfaces.GenerationRecord
		if err := json.Unmarshal([]byte(result), &rec); err != nil {
			continue // Skip invalid entries
		}
		records = append(records, rec)
	}
	return records, nil
}
