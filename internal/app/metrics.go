package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shestoi/evstore/internal/checkout"
)

// meteredPublisher считает события checkout в OTLP counter и передаёт их дальше.
// Счётчик увеличивается и тогда, когда следующий publisher вернул ошибку.
type meteredPublisher struct {
	next    checkout.EventPublisher
	counter metric.Int64Counter
}

func newMeteredPublisher(next checkout.EventPublisher, meter metric.Meter) (*meteredPublisher, error) {
	counter, err := meter.Int64Counter("checkout_events_total", metric.WithDescription("Checkout events by type"))
	if err != nil {
		return nil, err
	}
	return &meteredPublisher{next: next, counter: counter}, nil
}

func (p *meteredPublisher) Publish(ctx context.Context, event checkout.Event) error {
	p.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(event.Type))))
	return p.next.Publish(ctx, event)
}
