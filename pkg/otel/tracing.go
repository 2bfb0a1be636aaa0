package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// Span names
	SpanSubmitOrder  = "submit_order"
	SpanCancelOrder  = "cancel_order"
	SpanPublishTrade = "publish_trade"

	// Attribute keys
	AttributeOrderID           = "order.id"
	AttributeOrderSide         = "order.side"
	AttributeOrderQuantity     = "order.quantity"
	AttributeOrderPrice        = "order.price"
	AttributeExecutedQuantity  = "order.executed_quantity"
	AttributeRemainingQuantity = "order.remaining_quantity"
	AttributeTradeCount        = "trade.count"
)

// StartEngineSpan starts a span for a matching engine operation. With tracing
// disabled it returns a no-op span, so callers never need a nil check.
func StartEngineSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetTracer()
	if tracer == nil {
		return noop.NewTracerProvider().Tracer(ServiceName).Start(ctx, name)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
