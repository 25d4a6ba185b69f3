package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/inkwell/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/zfogg/inkwell"

// Config holds OpenTelemetry configuration
type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	Enabled      bool
	SamplingRate float64 // 1.0 = 100%, 0.1 = 10%
}

// ConfigFromSettings reads telemetry.* settings
func ConfigFromSettings() Config {
	return Config{
		ServiceName:  "inkwell-cli",
		Environment:  config.GetString("telemetry.environment"),
		OTLPEndpoint: config.GetString("telemetry.otlp_endpoint"),
		Enabled:      config.GetBool("telemetry.enabled"),
		SamplingRate: config.GetFloat("telemetry.sample_rate"),
	}
}

// InitTracer installs a global tracer provider exporting over OTLP HTTP.
// A disabled config returns a nil provider and leaves the no-op default.
func InitTracer(cfg Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// Shutdown flushes pending spans. Safe on a nil provider.
func Shutdown(tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return tp.Shutdown(ctx)
}

// StartMutationSpan opens a client span around one remote mutation
func StartMutationSpan(ctx context.Context, kind, entityID, mutationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "mutation."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("mutation.id", mutationID),
			attribute.String("mutation.kind", kind),
			attribute.String("entity.id", entityID),
		),
	)
}
