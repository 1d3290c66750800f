package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/city_emergency_response/internal/datamanager"
)

const snapshotKey = "snapshot:latest"

// SnapshotCache дублирует снимок состояния в Redis для внешних читателей
type SnapshotCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewSnapshotCache(redisClient *redis.Client, ttl time.Duration) datamanager.SnapshotCache {
	return &SnapshotCache{redisClient: redisClient, ttl: ttl}
}

// SaveSnapshot сохраняет снимок в JSON с TTL
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, s *datamanager.Snapshot) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for cache: %w", err)
	}
	if err := c.redisClient.Set(ctx, snapshotKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in cache: %w", err)
	}
	return nil
}
