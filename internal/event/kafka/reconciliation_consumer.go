package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/checkout"
	"github.com/shestoi/evstore/internal/repository"
)

// reconciliationNamespace задаёт namespace детерминированных ID сверок, созданных watcher-ом
var reconciliationNamespace = uuid.MustParse("6f3b1f0e-2f7c-4c1a-9a57-3d1c0b8e5a21")

// messageReader описывает часть kafka.Reader, которой пользуется consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReconciliationConsumer читает события checkout и гарантирует, что у каждого
// checkout.order.recording_failed есть запись сверки. Storefront пишет её сам,
// но если БД была недоступна в момент отказа, запись создаёт watcher.
type ReconciliationConsumer struct {
	logger      *zap.Logger
	reader      messageReader
	repo        repository.ReconciliationRepository
	maxAttempts int
	backoffBase time.Duration
}

// NewReconciliationConsumer создаёт consumer для топика событий checkout
func NewReconciliationConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID, topic string,
	repo repository.ReconciliationRepository,
) *ReconciliationConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newReconciliationConsumer(logger, reader, repo, 3, time.Second)
}

func newReconciliationConsumer(logger *zap.Logger, reader messageReader, repo repository.ReconciliationRepository, maxAttempts int, backoffBase time.Duration) *ReconciliationConsumer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	return &ReconciliationConsumer{
		logger:      logger,
		reader:      reader,
		repo:        repo,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Close закрывает Kafka reader
func (c *ReconciliationConsumer) Close() error {
	return c.reader.Close()
}

// Start обрабатывает сообщения, пока ctx не отменён.
// At-least-once: offset коммитится только после успешной обработки, Save идемпотентен.
// Если событие не удалось сохранить за maxAttempts попыток, Start возвращает ошибку,
// не читая дальше: коммит следующего сообщения сдвинул бы offset партиции за необработанное.
func (c *ReconciliationConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting reconciliation watcher",
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("reconciliation watcher stopped")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		if !c.processMessage(ctx, m) {
			if ctx.Err() != nil {
				c.logger.Info("reconciliation watcher stopped")
				return nil
			}
			// Offset не коммитим: после рестарта группа перечитает сообщение
			return fmt.Errorf("reconciliation event at partition %d offset %d not stored after %d attempts",
				m.Partition, m.Offset, c.maxAttempts)
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage возвращает true, если offset можно коммитить
func (c *ReconciliationConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	if eventType := headerValue(m, "event_type"); eventType != "" && eventType != string(checkout.EventOrderRecordingFailed) {
		return true
	}

	var payload eventPayload
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		c.logger.Error("failed to unmarshal checkout event",
			zap.Error(err),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// poison pill коммитим, чтобы не зациклиться
		return true
	}
	if payload.EventType != string(checkout.EventOrderRecordingFailed) {
		return true
	}

	logger := c.logger.With(
		zap.String("event_id", payload.EventID),
		zap.String("checkout_id", payload.CheckoutID),
		zap.String("transaction_id", payload.TransactionID),
	)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
			}
		}

		created, err := c.ensureReconciliation(ctx, payload)
		if err == nil {
			if created {
				logger.Warn("reconciliation record created from event")
			}
			return true
		}
		logger.Error("failed to ensure reconciliation record",
			zap.Error(err),
			zap.Int("attempt", attempt),
		)
	}
	return false
}

// ensureReconciliation создаёт запись, если её ещё нет. Возвращает true, если запись создана сейчас.
func (c *ReconciliationConsumer) ensureReconciliation(ctx context.Context, payload eventPayload) (bool, error) {
	id := payload.ReconciliationID
	if id == "" {
		id = reconciliationID(payload)
	}

	_, err := c.repo.GetByID(ctx, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("get reconciliation: %w", err)
	}

	createdAt, parseErr := time.Parse(time.RFC3339, payload.OccurredAt)
	if parseErr != nil {
		createdAt = time.Now().UTC()
	}
	rec := repository.Reconciliation{
		ID:             id,
		CheckoutID:     payload.CheckoutID,
		UserID:         payload.UserID,
		SessionID:      payload.SessionID,
		TransactionID:  payload.TransactionID,
		PaymentOrderID: payload.PaymentOrderID,
		Amount:         payload.Amount,
		Reason:         payload.Reason,
		Status:         repository.ReconciliationOpen,
		CreatedAt:      createdAt,
	}
	if err := c.repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("save reconciliation: %w", err)
	}
	return true, nil
}

// reconciliationID выводит ID из транзакции, чтобы повторная доставка не создавала дубликат
func reconciliationID(payload eventPayload) string {
	name := "txn:" + payload.TransactionID
	if payload.TransactionID == "" {
		name = "checkout:" + payload.CheckoutID + ":" + payload.SessionID
	}
	return uuid.NewSHA1(reconciliationNamespace, []byte(name)).String()
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
