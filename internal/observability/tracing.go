package observability

import (
	"context"
	"fmt"
	"strings"

	"github.com/railzwaylabs/catalogadmin/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SetupTracing installs an OTLP tracer provider (HTTP or gRPC, per tracing.protocol)
// when an endpoint is configured.
// Without one the global no-op provider stays in place.
func SetupTracing(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	endpoint := strings.TrimSpace(cfg.Tracing.Endpoint)
	if endpoint == "" {
		return nil
	}

	exporter, err := newExporter(cfg.Tracing)
	if err != nil {
		return err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.DeploymentEnvironment(cfg.Environment),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	log.Info("tracing enabled", zap.String("endpoint", endpoint), zap.String("protocol", cfg.Tracing.Protocol))
	return nil
}

func newExporter(cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	ctx := context.Background()
	switch strings.ToLower(cfg.Protocol) {
	case "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case "", "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown tracing.protocol %q", cfg.Protocol)
	}
}
