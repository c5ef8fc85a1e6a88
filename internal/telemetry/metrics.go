// Package telemetry exports forecast metrics over OTLP and reports daemon
// errors to Sentry. Both are optional and fall back to no-ops.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/theirongolddev/runway/internal/scenario"
)

const serviceName = "runway"

// Recorder receives forecast events.
type Recorder interface {
	RecordForecast(ctx context.Context, s *scenario.Snapshot, trigger string)
	RecordInvalidInput(ctx context.Context, trigger string)
	Close(ctx context.Context) error
}

// MetricsConfig configures the OTLP exporter.
type MetricsConfig struct {
	Endpoint string
	Insecure bool
	Version  string
}

// Exporter records forecast metrics to an OTLP collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	forecasts     metric.Int64Counter
	invalidInputs metric.Int64Counter
	runwayMonths  metric.Int64Histogram
	endingCash    metric.Float64Histogram
}

// NewRecorder returns an OTLP exporter when an endpoint is configured and a
// no-op recorder otherwise.
func NewRecorder(ctx context.Context, cfg MetricsConfig) (Recorder, error) {
	if cfg.Endpoint == "" {
		return NoopRecorder{}, nil
	}
	return NewExporter(ctx, cfg)
}

// NewExporter creates an OTLP gRPC metrics exporter.
func NewExporter(ctx context.Context, cfg MetricsConfig) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("metrics endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	forecasts, err := meter.Int64Counter("runway_forecasts_total",
		metric.WithDescription("Forecasts computed"),
		metric.WithUnit("{forecast}"))
	if err != nil {
		return nil, fmt.Errorf("creating forecasts counter: %w", err)
	}
	invalid, err := meter.Int64Counter("runway_invalid_inputs_total",
		metric.WithDescription("Forecast inputs rejected as invalid"),
		metric.WithUnit("{input}"))
	if err != nil {
		return nil, fmt.Errorf("creating invalid inputs counter: %w", err)
	}
	runway, err := meter.Int64Histogram("runway_months",
		metric.WithDescription("Projected runway per forecast"),
		metric.WithUnit("mo"))
	if err != nil {
		return nil, fmt.Errorf("creating runway histogram: %w", err)
	}
	ending, err := meter.Float64Histogram("runway_ending_cash",
		metric.WithDescription("Projected cash at the end of the horizon"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, fmt.Errorf("creating ending cash histogram: %w", err)
	}

	return &Exporter{
		provider:      provider,
		forecasts:     forecasts,
		invalidInputs: invalid,
		runwayMonths:  runway,
		endingCash:    ending,
	}, nil
}

// RecordForecast records one recomputed snapshot.
func (e *Exporter) RecordForecast(ctx context.Context, s *scenario.Snapshot, trigger string) {
	opt := metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("preset", s.Preset),
		attribute.Bool("beyond_horizon", s.Runway.BeyondHorizon),
	)
	e.forecasts.Add(ctx, 1, opt)
	e.runwayMonths.Record(ctx, int64(s.Runway.Months), opt)
	e.endingCash.Record(ctx, float64(s.Summary.EndingCash), opt)
}

// RecordInvalidInput counts one rejected input.
func (e *Exporter) RecordInvalidInput(ctx context.Context, trigger string) {
	e.invalidInputs.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

// Close flushes pending metrics and shuts the provider down.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordForecast(context.Context, *scenario.Snapshot, string) {}
func (NoopRecorder) RecordInvalidInput(context.Context, string)                 {}
func (NoopRecorder) Close(context.Context) error                                { return nil }
