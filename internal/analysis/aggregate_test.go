package analysis_test

import (
	"math"
	"testing"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/pkg/types"
)

func TestAggregate_ConfidenceWeightedMean(t *testing.T) {
	t.Parallel()
	metrics := map[string]types.MetricResult{
		"pace":       {Score: types.ScoreOf(90), Label: "optimal", Confidence: 0.8},
		"fillers":    {Score: types.ScoreOf(60), Label: "moderate_filler_rate", Confidence: 0.5},
		"intonation": types.Abstained("no_pitch_data"),
	}
	got := analysis.Aggregate(metrics)

	// (90*0.8 + 60*0.5) / 1.3 = 78.46 -> 78; mean confidence (0.8+0.5)/2.
	if got.Score != 78 {
		t.Errorf("score = %d, want 78", got.Score)
	}
	if got.Label != types.OverallGood {
		t.Errorf("label = %q, want good", got.Label)
	}
	if math.Abs(got.Confidence-0.65) > 1e-9 {
		t.Errorf("confidence = %v, want 0.65", got.Confidence)
	}
}

func TestAggregate_AllAbstained(t *testing.T) {
	t.Parallel()
	metrics := map[string]types.MetricResult{
		"pace":    types.Abstained("no_words"),
		"fillers": types.Abstained("no_words_or_invalid_duration"),
	}
	got := analysis.Aggregate(metrics)
	if got.Score != 0 || got.Label != types.OverallUnknown || got.Confidence != 0 {
		t.Errorf("all abstained: got %+v, want {0 unknown 0}", got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()
	got := analysis.Aggregate(nil)
	if got.Label != types.OverallUnknown {
		t.Errorf("empty map: label = %q, want unknown", got.Label)
	}
}

func TestAggregate_LabelCutoffs(t *testing.T) {
	t.Parallel()
	cases := []struct {
		score int
		want  types.OverallLabel
	}{
		{85, types.OverallExcellent},
		{84, types.OverallGood},
		{70, types.OverallGood},
		{69, types.OverallNeedsImprovement},
		{50, types.OverallNeedsImprovement},
		{49, types.OverallPoor},
	}
	for _, c := range cases {
		metrics := map[string]types.MetricResult{
			"pace": {Score: types.ScoreOf(c.score), Label: "x", Confidence: 1},
		}
		if got := analysis.Aggregate(metrics); got.Label != c.want {
			t.Errorf("score %d: label = %q, want %q", c.score, got.Label, c.want)
		}
	}
}

func TestAggregate_SkipsZeroConfidence(t *testing.T) {
	t.Parallel()
	metrics := map[string]types.MetricResult{
		"pace":    {Score: types.ScoreOf(90), Confidence: 0.8},
		"fillers": {Score: types.ScoreOf(10), Confidence: 0},
	}
	got := analysis.Aggregate(metrics)
	if got.Score != 90 {
		t.Errorf("score = %d, want 90 (zero-confidence metric skipped)", got.Score)
	}
}
