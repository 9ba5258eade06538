package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shestoi/evstore/internal/checkout"
	checkoutMocks "github.com/shestoi/evstore/internal/checkout/mocks"
)

// collectEventCounts возвращает значения checkout_events_total по атрибуту type
func collectEventCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "checkout_events_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "unexpected data type %T", m.Data)
			for _, dp := range sum.DataPoints {
				v, ok := dp.Attributes.Value("type")
				require.True(t, ok)
				counts[v.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestMeteredPublisher_CountsEventsByType(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	next := checkoutMocks.NewEventPublisher(t)
	next.On("Publish", mock.Anything, mock.MatchedBy(func(e checkout.Event) bool {
		return e.Type == checkout.EventPaymentApproved
	})).Return(nil).Twice()
	next.On("Publish", mock.Anything, mock.MatchedBy(func(e checkout.Event) bool {
		return e.Type == checkout.EventOrderRecordingFailed
	})).Return(errors.New("kafka unavailable")).Once()

	p, err := newMeteredPublisher(next, provider.Meter("storefront"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, checkout.Event{Type: checkout.EventPaymentApproved}))
	require.NoError(t, p.Publish(ctx, checkout.Event{Type: checkout.EventPaymentApproved}))
	require.Error(t, p.Publish(ctx, checkout.Event{Type: checkout.EventOrderRecordingFailed}))

	assert.Equal(t, map[string]int64{
		string(checkout.EventPaymentApproved):      2,
		string(checkout.EventOrderRecordingFailed): 1,
	}, collectEventCounts(t, reader))
}
