// Package textseg provides the light text processing the content-structure
// metric and the pause classifier need: rule-based sentence splitting over
// whitespace/punctuation-normalized transcript text, and detection of
// discourse signpost phrases ("first", "in conclusion", ...).
//
// Signpost detection runs in two stages, mirroring how transcript entity
// correction ranks candidates: exact substring containment first, then a
// Jaro-Winkler pass so that ASR-garbled markers ("basicly", "in conclushun")
// are still recognized when their similarity clears a fuzzy threshold.
package textseg

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// defaultFuzzyThreshold is the minimum Jaro-Winkler score for a token n-gram
// to count as a garbled signpost. High on purpose: a false signpost inflates
// the structure score, a missed garbled one only loses a small credit.
const defaultFuzzyThreshold = 0.92

// signpostPhrases is the discourse-marker lexicon, grouped by function.
var signpostPhrases = []string{
	// Ordering and sequencing
	"first", "firstly", "second", "secondly", "third", "thirdly",
	"fourth", "fifth", "next", "then", "after that", "following that",
	"lastly", "last", "finally",

	// Adding and continuing
	"additionally", "furthermore", "moreover", "in addition", "also",
	"another point", "another thing", "what's more", "besides",

	// Contrasting
	"however", "on the other hand", "in contrast", "conversely",
	"nevertheless", "nonetheless", "although", "but", "yet",
	"despite this", "even so", "alternatively",

	// Comparing
	"similarly", "likewise", "in the same way", "by the same token",

	// Exemplifying
	"for example", "for instance", "such as", "to illustrate",
	"as an example", "specifically", "namely",

	// Explaining
	"in other words", "that is", "to put it another way", "to clarify",

	// Cause and effect
	"therefore", "thus", "consequently", "as a result", "hence",
	"accordingly", "for this reason", "because of this",

	// Summarizing and concluding
	"in summary", "to summarize", "to sum up", "in conclusion",
	"to conclude", "in short", "overall", "all in all", "in brief",

	// Emphasizing
	"indeed", "in fact", "certainly", "obviously", "clearly", "importantly",
}

// Matcher detects signpost phrases in text. The zero value is not usable;
// construct with [NewMatcher]. A Matcher is read-only after construction and
// safe for concurrent use.
type Matcher struct {
	phrases        []string
	fuzzyThreshold float64
}

// MatcherOption configures a [Matcher].
type MatcherOption func(*Matcher)

// WithFuzzyThreshold sets the minimum Jaro-Winkler similarity for fuzzy
// signpost matches. Default: 0.92. A threshold >= 1 disables fuzzy matching.
func WithFuzzyThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) { m.fuzzyThreshold = threshold }
}

// NewMatcher returns a Matcher over the built-in signpost lexicon.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		phrases:        signpostPhrases,
		fuzzyThreshold: defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ContainsSignpost reports whether text contains at least one signpost
// phrase, exactly or fuzzily.
func (m *Matcher) ContainsSignpost(text string) bool {
	return m.CountSignposts(text) > 0
}

// CountSignposts counts signpost occurrences in text. Exact substring
// occurrences are counted per phrase; on top of that, each token n-gram that
// fuzzily matches a phrase not already found exactly counts once.
func (m *Matcher) CountSignposts(text string) int {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return 0
	}

	count := 0
	exact := make(map[string]bool, len(m.phrases))
	for _, phrase := range m.phrases {
		if n := strings.Count(lower, phrase); n > 0 {
			count += n
			exact[phrase] = true
		}
	}

	if m.fuzzyThreshold >= 1 {
		return count
	}

	tokens := strings.Fields(normalize(lower))
	for _, phrase := range m.phrases {
		if exact[phrase] {
			continue
		}
		width := len(strings.Fields(phrase))
		for i := 0; i+width <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+width], " ")
			if matchr.JaroWinkler(gram, phrase, true) >= m.fuzzyThreshold {
				count++
				break // one fuzzy credit per phrase
			}
		}
	}
	return count
}

// normalize lowercases text and strips punctuation so token n-grams line up
// with the lexicon phrases.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
