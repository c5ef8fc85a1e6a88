package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/scenario"
)

func TestNewRecorderWithoutEndpointIsNoop(t *testing.T) {
	r, err := NewRecorder(context.Background(), MetricsConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(NoopRecorder); !ok {
		t.Fatalf("recorder = %T, want NoopRecorder", r)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestExporterRecordsForecasts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := newExporter(provider)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	snap, err := scenario.Compute(forecast.DefaultInput(), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	exp.RecordForecast(ctx, snap, "preset")
	exp.RecordForecast(ctx, snap, "preset")
	exp.RecordInvalidInput(ctx, "submit")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["runway_forecasts_total"] != 2 {
		t.Errorf("forecasts = %d, want 2", sums["runway_forecasts_total"])
	}
	if sums["runway_invalid_inputs_total"] != 1 {
		t.Errorf("invalid inputs = %d, want 1", sums["runway_invalid_inputs_total"])
	}
	if err := exp.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestDisabledReporter(t *testing.T) {
	r, err := InitSentry("", "test", "dev")
	if err != nil {
		t.Fatal(err)
	}
	if r.Enabled() {
		t.Fatal("reporter enabled without DSN")
	}
	r.CaptureError(errors.New("boom"), nil)
	r.Flush(time.Millisecond)

	var nilReporter *Reporter
	nilReporter.CaptureError(errors.New("boom"), nil)
}
