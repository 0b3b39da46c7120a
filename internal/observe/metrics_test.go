package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordTurn_CountsAndObserves(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "weather", "ok", 120*time.Millisecond)
	m.RecordTurn(ctx, "weather", "ok", 80*time.Millisecond)

	rm := collect(t, reader)

	counter := findMetric(rm, "voxaura.turns")
	if counter == nil {
		t.Fatal("voxaura.turns not found")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("unexpected counter data: %+v", counter.Data)
	}
	if got := sum.DataPoints[0].Value; got != 2 {
		t.Fatalf("turn count = %d, want 2", got)
	}

	hist := findMetric(rm, "voxaura.turn.duration")
	if hist == nil {
		t.Fatal("voxaura.turn.duration not found")
	}
	hd, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(hd.DataPoints) != 1 {
		t.Fatalf("unexpected histogram data: %+v", hist.Data)
	}
	if got := hd.DataPoints[0].Count; got != 2 {
		t.Fatalf("histogram count = %d, want 2", got)
	}
}

func TestRecordStage_ObservesByStage(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStage(ctx, "transcribe", 40*time.Millisecond)
	m.RecordStage(ctx, "synthesize", 90*time.Millisecond)

	rm := collect(t, reader)
	hist := findMetric(rm, "voxaura.stage.duration")
	if hist == nil {
		t.Fatal("voxaura.stage.duration not found")
	}
	hd, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected histogram data: %+v", hist.Data)
	}
	if len(hd.DataPoints) != 2 {
		t.Fatalf("data points = %d, want one per stage", len(hd.DataPoints))
	}
}
