package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	httpMetrics     *HTTPServerMetrics
	httpMetricsOnce sync.Once
)

// HTTPServerMetrics holds the metrics instruments for HTTP server monitoring
type HTTPServerMetrics struct {
	// Latency metrics
	serverLatency metric.Float64Histogram

	// Traffic metrics
	requestsTotal    metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter

	// Error metrics
	errorTotal metric.Int64Counter
}

// NewHTTPServerMetrics creates a new HTTPServerMetrics instance
func NewHTTPServerMetrics(meter metric.Meter) (*HTTPServerMetrics, error) {
	serverLatency, err := meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("Response latency (seconds) of HTTP server"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestsTotal, err := meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests started"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests.in_flight",
		metric.WithDescription("Number of HTTP requests currently in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorTotal, err := meter.Int64Counter(
		"http.server.errors.total",
		metric.WithDescription("Total number of HTTP error responses"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPServerMetrics{
		serverLatency:    serverLatency,
		requestsTotal:    requestsTotal,
		requestsInFlight: requestsInFlight,
		errorTotal:       errorTotal,
	}, nil
}

// GetHTTPServerMetrics returns a singleton instance of HTTPServerMetrics
func GetHTTPServerMetrics() (*HTTPServerMetrics, error) {
	var err error
	httpMetricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter(instrumentationName)
		httpMetrics, err = NewHTTPServerMetrics(meter)
	})
	if err != nil {
		return nil, err
	}
	return httpMetrics, nil
}

// RecordLatency records the latency of an HTTP request
func (m *HTTPServerMetrics) RecordLatency(ctx context.Context, route string, duration time.Duration, status int) {
	attrs := []attribute.KeyValue{
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPStatusCodeKey.Int(status),
	}
	m.serverLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncRequests increments the total requests counter
func (m *HTTPServerMetrics) IncRequests(ctx context.Context, route string) {
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(semconv.HTTPRouteKey.String(route)))
}

// AddInFlightRequests adds to the in-flight requests counter
func (m *HTTPServerMetrics) AddInFlightRequests(ctx context.Context, delta int64) {
	m.requestsInFlight.Add(ctx, delta)
}

// IncErrors increments the error counter
func (m *HTTPServerMetrics) IncErrors(ctx context.Context, route string, status int) {
	attrs := []attribute.KeyValue{
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPStatusCodeKey.Int(status),
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
