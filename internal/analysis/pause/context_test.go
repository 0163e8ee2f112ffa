package pause_test

import (
	"testing"

	"github.com/orato-ai/orato/internal/analysis/pause"
	"github.com/orato-ai/orato/internal/analysis/textseg"
	"github.com/orato-ai/orato/pkg/types"
)

func iv(start, end float64) types.Interval { return types.Interval{Start: start, End: end} }

func TestClassifyContext_SentenceEndIsHelpful(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "done.", Start: 0.0, End: 1.0},
		{Text: "Next", Start: 3.5, End: 4.0},
	}
	// 2.5 s would be awkward on duration alone; the terminal period wins.
	got := pause.ClassifyContext(iv(1.0, 3.5), words, nil)
	if got != types.PauseHelpful {
		t.Errorf("after sentence end: got %q, want helpful", got)
	}
}

func TestClassifyContext_SignpostIsHelpful(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "and", Start: 0.0, End: 1.0},
		{Text: "secondly", Start: 3.2, End: 4.0},
	}
	m := textseg.NewMatcher()
	got := pause.ClassifyContext(iv(1.0, 3.2), words, m)
	if got != types.PauseHelpful {
		t.Errorf("around signpost: got %q, want helpful", got)
	}
}

func TestClassifyContext_CommaWindow(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "however,", Start: 0.0, End: 1.0},
		{Text: "we", Start: 1.8, End: 2.0},
	}
	if got := pause.ClassifyContext(iv(1.0, 1.8), words, nil); got != types.PauseHelpful {
		t.Errorf("0.8 s after comma: got %q, want helpful", got)
	}
	// Past the 1.2 s comma window and the 1.5 s default window.
	far := []types.WordToken{
		{Text: "however,", Start: 0.0, End: 1.0},
		{Text: "we", Start: 3.0, End: 3.2},
	}
	if got := pause.ClassifyContext(iv(1.0, 3.0), far, nil); got != types.PauseAwkward {
		t.Errorf("2.0 s after comma: got %q, want awkward", got)
	}
}

func TestClassifyContext_DefaultDurationWindow(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "some", Start: 0.0, End: 1.0},
		{Text: "words", Start: 2.0, End: 2.5},
	}
	if got := pause.ClassifyContext(iv(1.0, 2.0), words, nil); got != types.PauseHelpful {
		t.Errorf("1.0 s plain pause: got %q, want helpful", got)
	}
	long := []types.WordToken{
		{Text: "some", Start: 0.0, End: 1.0},
		{Text: "words", Start: 4.0, End: 4.5},
	}
	if got := pause.ClassifyContext(iv(1.0, 4.0), long, nil); got != types.PauseAwkward {
		t.Errorf("3.0 s plain pause: got %q, want awkward", got)
	}
}

func TestClassifyContext_NoTokenContext(t *testing.T) {
	t.Parallel()
	if got := pause.ClassifyContext(iv(1.0, 2.0), nil, nil); got != types.PauseHelpful {
		t.Errorf("1.0 s without tokens: got %q, want helpful", got)
	}
	if got := pause.ClassifyContext(iv(1.0, 1.1), nil, nil); got != types.PauseAwkward {
		t.Errorf("0.1 s without tokens: got %q, want awkward", got)
	}
	if got := pause.ClassifyContext(iv(1.0, 3.0), nil, nil); got != types.PauseAwkward {
		t.Errorf("2.0 s without tokens: got %q, want awkward", got)
	}
}
