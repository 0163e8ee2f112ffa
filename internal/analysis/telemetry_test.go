package analysis_test

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/internal/observe"
)

// collectInstruments runs one analysis against a manual reader and returns
// the recorded instruments by name.
func collectInstruments(t *testing.T, in analysis.Input) map[string]metricdata.Metrics {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(provider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	eng := analysis.New(metric.DefaultConfig(), analysis.WithMetrics(m))
	eng.Analyze(in)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	byName := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, inst := range scope.Metrics {
			byName[inst.Name] = inst
		}
	}
	return byName
}

func TestAnalyzeRecordsMetricDurations(t *testing.T) {
	t.Parallel()

	byName := collectInstruments(t, analysis.Input{
		Words:       talkWords(),
		DurationSec: 60,
	})

	inst, ok := byName["orato.metric.duration"]
	if !ok {
		t.Fatal("orato.metric.duration not recorded")
	}
	hist, ok := inst.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", inst.Data)
	}
	if got := len(hist.DataPoints); got != len(analysis.AllMetrics) {
		t.Fatalf("got %d duration series, want one per metric (%d)", got, len(analysis.AllMetrics))
	}
}

func TestAnalyzeRecordsAbstentions(t *testing.T) {
	t.Parallel()

	// An empty input abstains every metric.
	byName := collectInstruments(t, analysis.Input{})

	inst, ok := byName["orato.metric.abstentions"]
	if !ok {
		t.Fatal("orato.metric.abstentions not recorded")
	}
	sum, ok := inst.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", inst.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != int64(len(analysis.AllMetrics)) {
		t.Fatalf("got %d abstentions, want %d", total, len(analysis.AllMetrics))
	}
}
