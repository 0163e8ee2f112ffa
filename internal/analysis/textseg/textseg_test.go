package textseg_test

import (
	"testing"

	"github.com/orato-ai/orato/internal/analysis/textseg"
)

func TestSplitSentences_Basic(t *testing.T) {
	t.Parallel()
	got := textseg.SplitSentences("Hello world. How are you? Great!")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Hello world." || got[0].Tokens != 2 {
		t.Errorf("first sentence = %+v, want {Hello world. 2}", got[0])
	}
}

func TestSplitSentences_AbbreviationsAndDecimals(t *testing.T) {
	t.Parallel()
	got := textseg.SplitSentences("Dr. Smith measured 3.14 meters. Then he left.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(got), got)
	}
}

func TestSplitSentences_NoTerminalPunctuation(t *testing.T) {
	t.Parallel()
	got := textseg.SplitSentences("just one long run on transcript without punctuation")
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(got))
	}
	if got[0].Tokens != 8 {
		t.Errorf("tokens = %d, want 8", got[0].Tokens)
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	t.Parallel()
	if got := textseg.SplitSentences("   "); got != nil {
		t.Errorf("blank input: got %+v, want nil", got)
	}
}

func TestMatcher_ExactSignposts(t *testing.T) {
	t.Parallel()
	m := textseg.NewMatcher()
	if !m.ContainsSignpost("first, let me introduce the topic") {
		t.Error("expected 'first' to be a signpost")
	}
	if m.ContainsSignpost("the weather was nice") {
		t.Error("plain text should not contain a signpost")
	}
}

func TestMatcher_CountsMultiple(t *testing.T) {
	t.Parallel()
	m := textseg.NewMatcher()
	n := m.CountSignposts("first we plan. then we build. in conclusion, we ship.")
	if n < 3 {
		t.Errorf("expected at least 3 signposts, got %d", n)
	}
}

func TestMatcher_FuzzyMatchesGarbledMarker(t *testing.T) {
	t.Parallel()
	m := textseg.NewMatcher()
	// ASR-garbled "in conclusion" should still register fuzzily.
	if !m.ContainsSignpost("in conclushun we see the effect") {
		t.Error("expected fuzzy match on garbled 'in conclusion'")
	}
}

func TestMatcher_FuzzyDisabled(t *testing.T) {
	t.Parallel()
	m := textseg.NewMatcher(textseg.WithFuzzyThreshold(1.0))
	if m.ContainsSignpost("in conclushun we see the effect") {
		t.Error("fuzzy matching should be disabled at threshold 1.0")
	}
}
