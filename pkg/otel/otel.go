package otel

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceName identifies the matching engine in exported telemetry.
const ServiceName = "limitbook"

var (
	engineTracer   trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

// Config holds the OpenTelemetry configuration
type Config struct {
	ServiceVersion   string
	Endpoint         string
	ConnectTimeout   time.Duration
	CollectorEnabled bool
}

// Init initializes OpenTelemetry with the given configuration. When the
// collector is disabled, spans and metrics stay no-ops and the returned
// cleanup is still safe to call.
func Init(cfg Config) (func(), error) {
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "0.1.0"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	var cleanup []func()

	res := initResource(cfg.ServiceVersion)

	if cfg.CollectorEnabled {
		tp, err := initTracerProvider(cfg, res)
		if err != nil {
			log.Printf("Warning: Failed to initialize tracer provider: %v", err)
		} else {
			tracerProvider = tp
			cleanup = append(cleanup, func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					log.Printf("Error shutting down tracer provider: %v", err)
				}
			})
		}

		mp, err := initMeterProvider(cfg, res)
		if err != nil {
			log.Printf("Warning: Failed to initialize meter provider: %v. Continuing without metrics.", err)
		} else {
			meterProvider = mp
			cleanup = append(cleanup, func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
				defer cancel()
				if err := mp.Shutdown(ctx); err != nil {
					log.Printf("Error shutting down meter provider: %v", err)
				}
			})
		}
	}

	if tracerProvider != nil {
		engineTracer = tracerProvider.Tracer(ServiceName)
	}

	return func() {
		for _, fn := range cleanup {
			fn()
		}
	}, nil
}

func initResource(serviceVersion string) *sdkresource.Resource {
	extraResources, err := sdkresource.New(
		context.Background(),
		sdkresource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
		sdkresource.WithOS(),
		sdkresource.WithProcess(),
		sdkresource.WithContainer(),
		sdkresource.WithHost(),
	)
	if err != nil {
		log.Printf("Failed to create resource: %v", err)
		return sdkresource.Default()
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		extraResources,
	)
	if err != nil {
		log.Printf("Failed to merge resources: %v", err)
		return sdkresource.Default()
	}

	return resource
}

func initTracerProvider(cfg Config, resource *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithGRPCConn(conn),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(1),
		)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMeterProvider(cfg Config, resource *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithGRPCConn(conn),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(5*time.Second))),
		sdkmetric.WithResource(resource),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// GetTracer returns the engine tracer, or nil when tracing is disabled.
func GetTracer() trace.Tracer {
	return engineTracer
}

// GetTextMapPropagator returns the configured propagator
func GetTextMapPropagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// GetMeterProvider returns the configured meter provider, which may be nil.
func GetMeterProvider() metric.MeterProvider {
	return meterProvider
}

// ResetForTesting resets the global variables for testing
func ResetForTesting() {
	engineTracer = nil
	tracerProvider = nil
}

// InitForTesting installs a test tracer
func InitForTesting(tracer trace.Tracer) error {
	engineTracer = tracer
	return nil
}
