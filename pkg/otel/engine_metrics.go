package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/erain9/limitbook/pkg/otel"

var (
	engineMetrics     *EngineMetrics
	engineMetricsOnce sync.Once
)

// EngineMetrics holds the instruments for matching engine activity.
type EngineMetrics struct {
	ordersTotal  metric.Int64Counter
	tradesTotal  metric.Int64Counter
	cancelsTotal metric.Int64Counter
}

// GetEngineMetrics returns the EngineMetrics singleton. Instrument creation
// failures leave the corresponding field nil and recording becomes a no-op.
func GetEngineMetrics() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter(instrumentationName)
		engineMetrics = &EngineMetrics{}

		if c, err := meter.Int64Counter(
			"engine.orders.total",
			metric.WithDescription("Total number of orders accepted"),
			metric.WithUnit("{order}"),
		); err == nil {
			engineMetrics.ordersTotal = c
		}

		if c, err := meter.Int64Counter(
			"engine.trades.total",
			metric.WithDescription("Total number of trades executed"),
			metric.WithUnit("{trade}"),
		); err == nil {
			engineMetrics.tradesTotal = c
		}

		if c, err := meter.Int64Counter(
			"engine.cancels.total",
			metric.WithDescription("Total number of orders cancelled"),
			metric.WithUnit("{order}"),
		); err == nil {
			engineMetrics.cancelsTotal = c
		}
	})
	return engineMetrics
}

// RecordSubmit counts an accepted order and the trades it produced.
func (m *EngineMetrics) RecordSubmit(ctx context.Context, side string, trades int64) {
	attrs := metric.WithAttributes(attribute.String("order.side", side))
	if m.ordersTotal != nil {
		m.ordersTotal.Add(ctx, 1, attrs)
	}
	if m.tradesTotal != nil && trades > 0 {
		m.tradesTotal.Add(ctx, trades, attrs)
	}
}

// RecordCancel counts a cancelled order.
func (m *EngineMetrics) RecordCancel(ctx context.Context, side string) {
	if m.cancelsTotal != nil {
		m.cancelsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("order.side", side)))
	}
}
