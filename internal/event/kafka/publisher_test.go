package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/evstore/internal/checkout"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestCheckoutEventPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := newCheckoutEventPublisher(zap.NewNop(), writer, "storefront.checkout.events")

	err := pub.Publish(context.Background(), checkout.Event{
		Type:             checkout.EventOrderRecordingFailed,
		CheckoutID:       "chk-1",
		UserID:           "user-1",
		SessionID:        "sess-1",
		TransactionID:    "txn9",
		PaymentOrderID:   "ord1",
		ReconciliationID: "rec-1",
		Amount:           1000,
		Reason:           "backend returned 500",
		OccurredAt:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "user-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "checkout.order.recording_failed", string(msg.Headers[0].Value))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.NotEmpty(t, payload["event_id"])
	assert.Equal(t, "checkout.order.recording_failed", payload["event_type"])
	assert.Equal(t, float64(1), payload["event_version"])
	assert.Equal(t, "2026-03-14T12:00:00Z", payload["occurred_at"])
	assert.Equal(t, "txn9", payload["transaction_id"])
	assert.Equal(t, "rec-1", payload["reconciliation_id"])
	assert.Equal(t, float64(1000), payload["amount"])
	assert.NotContains(t, payload, "order_id", "empty fields are omitted")
}

func TestCheckoutEventPublisher_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	pub := newCheckoutEventPublisher(zap.NewNop(), writer, "t")

	err := pub.Publish(context.Background(), checkout.Event{Type: checkout.EventPaymentDenied, UserID: "u"})
	require.Error(t, err)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}
