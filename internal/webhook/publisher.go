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
	webhookQueueKey = "dispatch_events"
)

// EventType - тип события диспетчеризации
type EventType string

const (
	EventAssignmentCreated  EventType = "assignment.created"
	EventAssignmentReleased EventType = "assignment.released"
	EventStatusChanged      EventType = "report.status_changed"
)

// WebhookEvent - событие, которое уходит во внешние системы после изменения назначения или статуса
type WebhookEvent struct {
	ID           uuid.UUID `json:"id"`
	Type         EventType `json:"type"`
	ReportID     int64     `json:"report_id"`
	AssignmentID int64     `json:"assignment_id,omitempty"`
	ResponderID  int64     `json:"responder_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	ETAMinutes   int       `json:"eta_minutes,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewEvent заполняет идентификатор и время события
func NewEvent(eventType EventType, reportID int64) WebhookEvent {
	return WebhookEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ReportID:  reportID,
		Timestamp: time.Now().UTC(),
	}
}

// WebhookPublisher - интерфейс для публикации событий
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
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

// Publish публикует событие в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH кладет событие в левую часть списка, воркер забирает справа
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}

// NopPublisher отбрасывает события, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, WebhookEvent) error { return nil }
