package metric_test

import (
	"testing"

	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/pkg/types"
)

func word(text string, start float64) types.WordToken {
	return types.WordToken{Text: text, Start: start, End: start + 0.2, Confidence: 0.9}
}

func TestComputeFillers_CountsAndLabels(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	words := []types.WordToken{
		word("so", 0), word("um", 1), word("today", 2), word("uh", 3),
		word("we", 4), word("discuss", 5), word("um", 6), word("results", 7),
	}
	res := metric.ComputeFillers(words, 60, cfg)
	if res.Abstained {
		t.Fatalf("abstained: %v", res.Details["reason"])
	}
	// 3 fillers in 1 min = 3/min, at the low band boundary.
	if res.Label != metric.FillersLow {
		t.Errorf("label = %q, want low_filler_rate", res.Label)
	}
	if res.Details["total_fillers"] != 3 {
		t.Errorf("total_fillers = %v, want 3", res.Details["total_fillers"])
	}
	top, ok := res.Details["top_fillers"].([]metric.FillerCount)
	if !ok || len(top) == 0 {
		t.Fatalf("top_fillers = %v", res.Details["top_fillers"])
	}
	if top[0].Token != "um" || top[0].Count != 2 {
		t.Errorf("top filler = %+v, want {um 2}", top[0])
	}
}

func TestComputeFillers_NormalizesPunctuationAndYouKnow(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	words := []types.WordToken{
		word("Um,", 0), word("you know", 1), word("plan", 2),
	}
	res := metric.ComputeFillers(words, 30, cfg)
	if res.Abstained {
		t.Fatalf("abstained: %v", res.Details["reason"])
	}
	if res.Details["total_fillers"] != 2 {
		t.Errorf("total_fillers = %v, want 2 (punctuated um + mashed you-know)", res.Details["total_fillers"])
	}
}

func TestComputeFillers_HighRate(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	var words []types.WordToken
	for i := 0; i < 10; i++ {
		words = append(words, word("um", float64(i)))
		words = append(words, word("word", float64(i)+0.5))
	}
	// 10 fillers in 60 s = 10/min, above the high band.
	res := metric.ComputeFillers(words, 60, cfg)
	if res.Label != metric.FillersHigh {
		t.Errorf("label = %q, want high_filler_rate", res.Label)
	}
	if *res.Score != 45 {
		t.Errorf("score = %d, want 45", *res.Score)
	}
}

func TestComputeFillers_ZeroFillersScoresTop(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()
	words := []types.WordToken{word("clean", 0), word("speech", 1)}
	res := metric.ComputeFillers(words, 60, cfg)
	if res.Label != metric.FillersLow || *res.Score != 95 {
		t.Errorf("label=%q score=%d, want low_filler_rate 95", res.Label, *res.Score)
	}
}

func TestComputeFillers_Abstentions(t *testing.T) {
	t.Parallel()
	cfg := metric.DefaultConfig()

	res := metric.ComputeFillers(nil, 60, cfg)
	if !res.Abstained || res.Details["reason"] != "no_words_or_invalid_duration" {
		t.Errorf("no words: %+v", res)
	}

	res = metric.ComputeFillers([]types.WordToken{word("hi", 0)}, 0, cfg)
	if !res.Abstained {
		t.Error("zero duration must abstain")
	}

	// Tokens made only of punctuation normalize to nothing.
	res = metric.ComputeFillers([]types.WordToken{word("...", 0), word("!!", 1)}, 60, cfg)
	if !res.Abstained || res.Details["reason"] != "no_tokens" {
		t.Errorf("punctuation-only words: %+v", res)
	}
}

func TestIsFillerToken(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text string
		want bool
	}{
		{"um", true},
		{"Um,", true},
		{"'um", true},
		{"\"uh...\"", true},
		{"you know", true},
		{"basically", true},
		{"results", false},
		{"don't", false},
		{"", false},
	}
	for _, c := range cases {
		if got := metric.IsFillerToken(c.text); got != c.want {
			t.Errorf("IsFillerToken(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
