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
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/config"
)

const (
	popTimeout       = time.Second
	SignatureHeader  = "X-Webhook-Signature"
	EventIDHeader    = "X-Webhook-Event-Id"
	maxErrorBodySize = 512
)

// DeliveryObserver получает результат каждой доставки (метрики)
type DeliveryObserver interface {
	WebhookDelivery(result string)
}

// WebhookWorker - структура для обработки и отправки вебхуков
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	observer    DeliveryObserver

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWebhookWorker создает новый WebhookWorker; observer может быть nil
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config, observer DeliveryObserver) *WebhookWorker {
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		observer:    observer,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди вебхуков
func (w *WebhookWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Starting webhook worker...")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping webhook worker.")
				return
			default:
			}

			// BRPOP с таймаутом, чтобы регулярно проверять отмену контекста
			result, err := w.redisClient.BRPop(ctx, popTimeout, webhookQueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
				w.sleep(ctx, w.cfg.WebhookTimeout)
				continue
			}

			// result[0] - ключ, result[1] - значение
			payload := []byte(result[1])
			var event IncidentEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				w.logger.WithError(err).Error("Failed to unmarshal webhook event from Redis")
				continue
			}

			w.processWebhookEvent(ctx, event, payload)
		}
	}()
}

// Stop останавливает воркер и ждет завершения текущей доставки
func (w *WebhookWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *WebhookWorker) processWebhookEvent(ctx context.Context, event IncidentEvent, rawPayload []byte) {
	log := w.logger.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"incident_id": event.IncidentID,
	})
	log.Debug("Processing webhook event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		w.observe("skipped")
		return
	}

	maxRetries := max(w.cfg.WebhookMaxRetries, 1)
	baseDelay := w.cfg.WebhookBaseDelay

	for i := 0; i < maxRetries; i++ {
		err := w.deliver(ctx, event, rawPayload)
		if err == nil {
			log.Info("Webhook delivered successfully.")
			w.observe("delivered")
			return
		}
		if ctx.Err() != nil {
			w.observe("canceled")
			return
		}
		if i == maxRetries-1 {
			break
		}
		log.WithError(err).Warnf("Failed to send webhook for event. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
		if !w.sleep(ctx, baseDelay) {
			w.observe("canceled")
			return
		}
		baseDelay *= 2 // Экспоненциальная задержка
	}

	log.Errorf("Failed to deliver webhook for event after %d attempts.", maxRetries)
	w.observe("failed")
}

// deliver - одна попытка доставки
func (w *WebhookWorker) deliver(ctx context.Context, event IncidentEvent, rawPayload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(rawPayload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventIDHeader, event.EventID.String())

	// Добавляем HMAC подпись, если WEBHOOK_SECRET задан
	if w.cfg.WebhookSecret != "" {
		req.Header.Set(SignatureHeader, generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("webhook delivery failed with status code %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (w *WebhookWorker) observe(result string) {
	if w.observer != nil {
		w.observer.WebhookDelivery(result)
	}
}

// sleep возвращает false, если контекст отменен раньше
func (w *WebhookWorker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature проверяет подпись на стороне получателя
func VerifySignature(data []byte, signature, secret string) bool {
	expected := generateHMACSHA256(data, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
