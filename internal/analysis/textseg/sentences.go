package textseg

import "strings"

// abbreviations that end with a period but do not terminate a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "approx": true, "no": true,
}

// Sentence is one split sentence with its content-token count (punctuation
// and whitespace excluded).
type Sentence struct {
	Text   string
	Tokens int
}

// SplitSentences splits transcript text on sentence-terminal punctuation
// (. ! ?), guarding against common abbreviations and decimal numbers.
// Transcripts without any terminal punctuation yield a single sentence.
func SplitSentences(text string) []Sentence {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []Sentence
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s == "" {
			return
		}
		if n := countTokens(s); n > 0 {
			sentences = append(sentences, Sentence{Text: s, Tokens: n})
		}
	}

	runes := []rune(trimmed)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && !terminatesSentence(runes, i) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

// terminatesSentence decides whether the period at runes[i] ends a sentence.
// Periods inside numbers (3.14) and after known abbreviations do not.
func terminatesSentence(runes []rune, i int) bool {
	if i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9' &&
		i > 0 && runes[i-1] >= '0' && runes[i-1] <= '9' {
		return false
	}

	// Walk back to the start of the word preceding the period.
	j := i - 1
	for j >= 0 && runes[j] != ' ' {
		j--
	}
	word := strings.ToLower(strings.TrimSuffix(string(runes[j+1:i]), "."))
	return !abbreviations[word]
}

// countTokens counts whitespace-separated tokens carrying at least one
// letter or digit.
func countTokens(s string) int {
	n := 0
	for _, f := range strings.Fields(s) {
		if strings.TrimSpace(normalize(f)) != "" {
			n++
		}
	}
	return n
}
