package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/checkout"
)

const eventVersion = 1

// messageWriter описывает часть kafka.Writer, которой пользуется publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CheckoutEventPublisher реализует checkout.EventPublisher используя Kafka
type CheckoutEventPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewCheckoutEventPublisher создаёт новый Kafka publisher для событий checkout
func NewCheckoutEventPublisher(logger *zap.Logger, brokers []string, topic string) *CheckoutEventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}

	return newCheckoutEventPublisher(logger, writer, topic)
}

func newCheckoutEventPublisher(logger *zap.Logger, writer messageWriter, topic string) *CheckoutEventPublisher {
	return &CheckoutEventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close закрывает Kafka writer
func (p *CheckoutEventPublisher) Close() error {
	return p.writer.Close()
}

// eventPayload представляет JSON события в топике
type eventPayload struct {
	EventID          string  `json:"event_id"`
	EventType        string  `json:"event_type"`
	EventVersion     int     `json:"event_version"`
	OccurredAt       string  `json:"occurred_at"`
	CheckoutID       string  `json:"checkout_id"`
	UserID           string  `json:"user_id"`
	SessionID        string  `json:"session_id,omitempty"`
	TransactionID    string  `json:"transaction_id,omitempty"`
	PaymentOrderID   string  `json:"payment_order_id,omitempty"`
	OrderID          string  `json:"order_id,omitempty"`
	ReconciliationID string  `json:"reconciliation_id,omitempty"`
	Amount           float64 `json:"amount"`
	Reason           string  `json:"reason,omitempty"`
}

// Publish публикует событие checkout. Ключом сообщения служит user_id, поэтому события пользователя идут в одну партицию по порядку.
func (p *CheckoutEventPublisher) Publish(ctx context.Context, event checkout.Event) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	payload := eventPayload{
		EventID:          uuid.New().String(),
		EventType:        string(event.Type),
		EventVersion:     eventVersion,
		OccurredAt:       occurredAt.UTC().Format(time.RFC3339),
		CheckoutID:       event.CheckoutID,
		UserID:           event.UserID,
		SessionID:        event.SessionID,
		TransactionID:    event.TransactionID,
		PaymentOrderID:   event.PaymentOrderID,
		OrderID:          event.OrderID,
		ReconciliationID: event.ReconciliationID,
		Amount:           event.Amount,
		Reason:           event.Reason,
	}

	valueBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal checkout event",
			zap.Error(err),
			zap.String("event_type", payload.EventType),
		)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.UserID),
		Value: valueBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("failed to publish checkout event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_type", payload.EventType),
			zap.String("checkout_id", event.CheckoutID),
			zap.String("user_id", event.UserID),
		)
		return err
	}

	p.logger.Info("checkout event published",
		zap.String("topic", p.topic),
		zap.String("event_id", payload.EventID),
		zap.String("event_type", payload.EventType),
		zap.String("checkout_id", event.CheckoutID),
	)
	return nil
}
