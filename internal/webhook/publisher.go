package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "firechain:webhook_events"

	EventIncidentReported = "incident.reported"
)

// IncidentEvent - уведомление о подтвержденном инциденте
type IncidentEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       string    `json:"type"`
	IncidentID int64     `json:"incident_id"`
	Reporter   string    `json:"reporter"`
	Location   string    `json:"location"`
	Severity   string    `json:"severity"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH слева, воркер забирает справа через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
