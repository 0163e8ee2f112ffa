package onnx_test

import (
	"testing"

	"github.com/orato-ai/orato/internal/analysis/metric"
	scorermock "github.com/orato-ai/orato/pkg/provider/scorer/mock"
	"github.com/orato-ai/orato/pkg/provider/scorer/onnx"
	"github.com/orato-ai/orato/pkg/types"
)

// The default feature layout must stay aligned with the keys the pace
// metric actually supplies, or a configured model silently never scores.
func TestDefaultFeatureOrderMatchesPaceMetric(t *testing.T) {
	t.Parallel()

	words := make([]types.WordToken, 140)
	for i := range words {
		start := float64(i) * (60.0 / 140)
		words[i] = types.WordToken{Text: "word", Start: start, End: start + 0.2}
	}

	src := &scorermock.Scorer{Value: 0.9}
	res := metric.ComputePace(metric.PaceInput{
		Words:       words,
		DurationSec: 60,
		SpeechRatio: 0.8,
		Scorer:      src,
	}, metric.DefaultConfig())
	if res.Abstained {
		t.Fatalf("pace abstained: %v", res.Details)
	}
	if len(src.Calls) != 1 {
		t.Fatalf("scorer called %d times, want 1", len(src.Calls))
	}

	supplied := src.Calls[0]
	for _, name := range onnx.DefaultFeatureOrder {
		if _, ok := supplied[name]; !ok {
			t.Errorf("feature %q in default order but not supplied by the pace metric", name)
		}
	}
	if len(supplied) != len(onnx.DefaultFeatureOrder) {
		t.Errorf("pace supplies %d features, default order lists %d", len(supplied), len(onnx.DefaultFeatureOrder))
	}
}
