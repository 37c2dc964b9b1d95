package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	deadLetterQueueKey = "dispatch_events_dead"
	breakerOpenPause   = 5 * time.Second
)

// SyncMarker помечает назначение как доставленное во внешнюю систему
type SyncMarker interface {
	MarkSynced(ctx context.Context, id int64) error
}

// eventQueue - очередь событий, из которой читает воркер.
// Pop возвращает redis.Nil, если за timeout событий не появилось.
type eventQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Requeue(ctx context.Context, payload string) error
	DeadLetter(ctx context.Context, payload string) error
}

type redisEventQueue struct {
	client *redis.Client
}

func (q redisEventQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, webhookQueueKey).Result()
	if err != nil {
		return "", err
	}
	// result[0] - ключ, result[1] - значение
	return result[1], nil
}

// Requeue возвращает событие в правый конец списка: BRPOP выдаст его следующим
func (q redisEventQueue) Requeue(ctx context.Context, payload string) error {
	return q.client.RPush(ctx, webhookQueueKey, payload).Err()
}

func (q redisEventQueue) DeadLetter(ctx context.Context, payload string) error {
	return q.client.LPush(ctx, deadLetterQueueKey, payload).Err()
}

// deliveryResult - итог обработки одного события
type deliveryResult int

const (
	resultDelivered deliveryResult = iota
	resultFailed
	// resultDeferred: предохранитель разомкнут, событие возвращено в очередь
	resultDeferred
)

// WebhookWorker - структура для обработки и отправки вебхуков
type WebhookWorker struct {
	queue       eventQueue
	marker      SyncMarker
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, marker SyncMarker, logger *logrus.Logger, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		queue:       redisEventQueue{client: redisClient},
		marker:      marker,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		breaker: config.NewCircuitBreaker("Webhook", logger),
	}
}

// Start запускает цикл обработки очереди вебхуков и блокируется до отмены контекста
func (w *WebhookWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting webhook worker...")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping webhook worker.")
			return nil
		default:
		}

		// BRPOP с таймаутом, чтобы периодически проверять контекст
		payload, err := w.queue.Pop(ctx, time.Second)
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
			sleepCtx(ctx, w.cfg.WebhookTimeout)
			continue
		}

		var event WebhookEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal webhook event from Redis")
			w.deadLetter(ctx, payload, w.logger.WithField("reason", "malformed"))
			continue
		}

		if w.processWebhookEvent(ctx, event, payload) == resultDeferred {
			// Ждем, пока предохранитель перейдет в полуоткрытое состояние
			sleepCtx(ctx, breakerOpenPause)
		}
	}
}

func (w *WebhookWorker) processWebhookEvent(ctx context.Context, event WebhookEvent, rawPayload string) deliveryResult {
	log := w.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"report_id":  event.ReportID,
	})
	log.Debug("Processing webhook event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return resultFailed
	}

	maxRetries := w.cfg.WebhookMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	delay := w.cfg.WebhookBaseDelay

	for i := 0; i < maxRetries; i++ {
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.deliver(ctx, rawPayload)
		})
		if err == nil {
			log.Info("Webhook delivered successfully.")
			w.markSynced(ctx, event, log)
			return resultDelivered
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.WithError(err).Warn("Webhook circuit breaker is open. Returning event to the queue.")
			if err := w.queue.Requeue(ctx, rawPayload); err != nil {
				log.WithError(err).Error("Failed to requeue webhook event")
				w.deadLetter(ctx, rawPayload, log)
				return resultFailed
			}
			return resultDeferred
		}

		log.WithError(err).Warnf("Failed to send webhook. Retrying in %v. Retries left: %d", delay, maxRetries-1-i)
		if i < maxRetries-1 {
			sleepCtx(ctx, delay)
			delay *= 2 // Экспоненциальная задержка
		}
	}

	log.Errorf("Failed to deliver webhook for event after %d retries.", maxRetries)
	w.deadLetter(ctx, rawPayload, log)
	return resultFailed
}

// deadLetter откладывает недоставленное событие для ручного разбора
func (w *WebhookWorker) deadLetter(ctx context.Context, rawPayload string, log *logrus.Entry) {
	if err := w.queue.DeadLetter(ctx, rawPayload); err != nil {
		log.WithError(err).Error("Failed to move webhook event to dead letter queue")
	}
}

func (w *WebhookWorker) deliver(ctx context.Context, rawPayload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewBufferString(rawPayload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Добавляем HMAC подпись, если WEBHOOK_SECRET задан
	if w.cfg.WebhookSecret != "" {
		req.Header.Set("X-Webhook-Signature", generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint responded with status %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookWorker) markSynced(ctx context.Context, event WebhookEvent, log *logrus.Entry) {
	if event.Type != EventAssignmentCreated || event.AssignmentID == 0 || w.marker == nil {
		return
	}
	if err := w.marker.MarkSynced(ctx, event.AssignmentID); err != nil {
		log.WithError(err).Error("Failed to mark assignment as synced")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
