// Package observability wires OpenTelemetry logs, traces and metrics.
//
// Exporters use OTLP over HTTP and read the standard variables:
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector URL
//   - OTEL_EXPORTER_OTLP_HEADERS: auth headers (e.g. Authorization=Basic <token>)
//   - OTEL_RESOURCE_ATTRIBUTES: extra resource attributes
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "taskboard"

const exportTimeout = 10 * time.Second

// Config holds observability configuration.
type Config struct {
	Enabled     bool
	ServiceName string
	Version     string
	Environment string
}

func (c Config) serviceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// Providers bundles the three telemetry providers so they can be flushed together.
type Providers struct {
	Logger *log.LoggerProvider
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Setup builds the providers, registers the tracer and meter globally and
// installs the logger as the slog default. When cfg.Enabled is false the
// providers export nothing and logs go to stdout as JSON. Providers created
// before a failure are shut down.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	if !cfg.Enabled {
		p := &Providers{
			Logger: log.NewLoggerProvider(),
			Tracer: sdktrace.NewTracerProvider(),
			Meter:  sdkmetric.NewMeterProvider(),
		}
		p.install(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		return p, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p := &Providers{}
	if p.Logger, err = newLoggerProvider(res); err != nil {
		return nil, err
	}
	if p.Tracer, err = newTracerProvider(res); err != nil {
		_ = p.Logger.Shutdown(ctx)
		return nil, err
	}
	if p.Meter, err = newMeterProvider(res); err != nil {
		_ = p.Tracer.Shutdown(ctx)
		_ = p.Logger.Shutdown(ctx)
		return nil, err
	}

	p.install(otelslog.NewLogger(cfg.serviceName(), otelslog.WithLoggerProvider(p.Logger)))
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

func (p *Providers) install(logger *slog.Logger) {
	slog.SetDefault(logger)
	otel.SetTracerProvider(p.Tracer)
	otel.SetMeterProvider(p.Meter)
}

// Shutdown flushes and stops every provider, meter first and logger last so
// shutdown errors of the others can still be logged.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Meter.Shutdown(ctx),
		p.Tracer.Shutdown(ctx),
		p.Logger.Shutdown(ctx),
	)
}

// newResource describes the service: SDK attributes, OTEL_RESOURCE_ATTRIBUTES
// and the identity from cfg, later sources winning. A partial resource is
// usable and not an error.
func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.serviceName())}
	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}
	return res, nil
}

// Exporters are created with context.Background() so that a cancelled
// startup context cannot leave them half-initialised during shutdown.

func newTracerProvider(res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)),
	), nil
}

func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := otlpmetrichttp.New(context.Background(), otlpmetrichttp.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second))),
	), nil
}

func newLoggerProvider(res *resource.Resource) (*log.LoggerProvider, error) {
	exp, err := otlploghttp.New(context.Background(), otlploghttp.WithTimeout(exportTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	return log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exp, log.WithExportTimeout(5*time.Second))),
		log.WithResource(res),
	), nil
}
