package metric_test

import (
	"strings"
	"testing"

	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/internal/analysis/textseg"
)

func TestComputeStructure_VeryClear(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	transcript := "First, we look at the data. Next, we discuss the model. " +
		"Finally, we conclude with the results."
	res := metric.ComputeStructure(transcript, textseg.NewMatcher(), cfg)
	if res.Abstained {
		t.Fatalf("abstained: %v", res.Details["reason"])
	}
	if res.Label != metric.StructureVeryClear {
		t.Errorf("label = %q, want very_clear_structure", res.Label)
	}
	if *res.Score != 90 {
		t.Errorf("score = %d, want 90", *res.Score)
	}
	if res.Details["num_sentences"] != 3 {
		t.Errorf("num_sentences = %v, want 3", res.Details["num_sentences"])
	}
	if n, ok := res.Details["signpost_count"].(int); !ok || n < 3 {
		t.Errorf("signpost_count = %v, want >= 3", res.Details["signpost_count"])
	}
}

func TestComputeStructure_UnclearWithoutSignpostsAndLongSentences(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	// One run-on sentence of 40 neutral tokens, no signposts.
	transcript := strings.TrimSpace(strings.Repeat("data ", 40)) + "."
	res := metric.ComputeStructure(transcript, textseg.NewMatcher(), cfg)
	if res.Label != metric.StructureUnclear {
		t.Errorf("label = %q, want unclear_structure", res.Label)
	}
	if *res.Score != 45 {
		t.Errorf("score = %d, want 45", *res.Score)
	}
}

func TestComputeStructure_MixedWithoutSignposts(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	transcript := "We gathered readings. We compared groups. We wrote it up."
	res := metric.ComputeStructure(transcript, textseg.NewMatcher(), cfg)
	if res.Label != metric.StructureMixed {
		t.Errorf("label = %q, want mixed_structure", res.Label)
	}
}

func TestComputeStructure_Abstentions(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	res := metric.ComputeStructure("   ", textseg.NewMatcher(), cfg)
	if !res.Abstained || res.Details["reason"] != "empty_transcript" {
		t.Errorf("blank transcript: %+v", res)
	}
}
