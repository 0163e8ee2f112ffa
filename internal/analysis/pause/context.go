package pause

import (
	"strings"

	"github.com/orato-ai/orato/pkg/types"
)

// SignpostMatcher reports whether text contains a discourse signpost phrase
// ("first", "in conclusion", ...). The concrete lexicon lives with the
// sentence-segmentation code; pause classification only needs the predicate.
type SignpostMatcher interface {
	ContainsSignpost(text string) bool
}

// ClassifyContext judges a pause as helpful or awkward using the word tokens
// around it.
//
// A pause is helpful when the preceding word ends a sentence, when the
// surrounding text carries a signpost phrase, when it follows a comma and
// lasts 0.3–1.2 s, or by default when it lasts 0.4–1.5 s. It is awkward when
// shorter than 0.2 s, longer than 2.0 s, or in [0.2,0.4) s without any of
// the contextual cues above.
//
// With no token context at all the decision falls back to duration alone:
// helpful iff the pause lasts 0.3–1.5 s. matcher may be nil, which disables
// the signpost cue.
func ClassifyContext(p types.Interval, words []types.WordToken, matcher SignpostMatcher) types.PauseContext {
	dur := p.Duration()

	prev, next, ok := surroundingWords(p, words)
	if !ok {
		if dur >= 0.3 && dur <= 1.5 {
			return types.PauseHelpful
		}
		return types.PauseAwkward
	}

	prevText := strings.TrimSpace(prev.Text)

	if endsSentence(prevText) {
		return types.PauseHelpful
	}
	if matcher != nil {
		combined := prevText + " " + strings.TrimSpace(next.Text)
		if matcher.ContainsSignpost(combined) {
			return types.PauseHelpful
		}
	}
	if strings.HasSuffix(prevText, ",") && dur >= 0.3 && dur <= 1.2 {
		return types.PauseHelpful
	}
	if dur >= 0.4 && dur <= 1.5 {
		return types.PauseHelpful
	}
	return types.PauseAwkward
}

// surroundingWords finds the nearest word ending at or before the pause and
// the nearest word starting at or after it. ok is false when neither side
// has a word.
func surroundingWords(p types.Interval, words []types.WordToken) (prev, next types.WordToken, ok bool) {
	hasPrev, hasNext := false, false
	for _, w := range words {
		if w.End <= p.Start+1e-9 {
			if !hasPrev || w.End > prev.End {
				prev, hasPrev = w, true
			}
		}
		if w.Start >= p.End-1e-9 {
			if !hasNext || w.Start < next.Start {
				next, hasNext = w, true
			}
		}
	}
	return prev, next, hasPrev || hasNext
}

func endsSentence(text string) bool {
	return strings.HasSuffix(text, ".") ||
		strings.HasSuffix(text, "!") ||
		strings.HasSuffix(text, "?")
}
