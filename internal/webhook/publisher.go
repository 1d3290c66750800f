package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/city_emergency_response/internal/models"
)

const (
	resultQueueKey = "task_result_events"

	EventTaskFinished = "task.finished"
	EventEpochDone    = "epoch.finished"
)

// TaskEvent - структура для данных вебхука о ходе учений
type TaskEvent struct {
	ID        uuid.UUID                 `json:"id"`
	Type      string                    `json:"type"`
	RunID     uuid.UUID                 `json:"run_id"`
	Epoch     int                       `json:"epoch"`
	Result    *models.TaskResult        `json:"result,omitempty"`
	Counts    map[models.TaskStatus]int `json:"counts,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}

// ResultPublisher - интерфейс для публикации вебхуков
type ResultPublisher interface {
	Publish(ctx context.Context, event TaskEvent) error
}

// RedisResultPublisher - реализация ResultPublisher, использующая Redis
type RedisResultPublisher struct {
	redisClient *redis.Client
}

func NewRedisResultPublisher(client *redis.Client) *RedisResultPublisher {
	return &RedisResultPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis (LPUSH в левую часть списка)
func (p *RedisResultPublisher) Publish(ctx context.Context, event TaskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}
	if err := p.redisClient.LPush(ctx, resultQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("webhook: publish event to Redis: %w", err)
	}
	return nil
}
