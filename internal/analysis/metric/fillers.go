package metric

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orato-ai/orato/internal/analysis/window"
	"github.com/orato-ai/orato/pkg/types"
)

// Filler labels.
const (
	FillersLow      = "low_filler_rate"
	FillersModerate = "moderate_filler_rate"
	FillersHigh     = "high_filler_rate"
)

// fillerTokens is the single-token filler lexicon matched after
// normalization. "youknow" covers ASR output that mashes "you know" into one
// token.
var fillerTokens = map[string]bool{
	"um": true, "uh": true, "erm": true, "er": true, "uhm": true,
	"like": true, "actually": true, "basically": true, "youknow": true,
}

// FillerCount pairs a normalized filler token with its occurrence count.
type FillerCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// ComputeFillers derives the filler-usage metric: total and per-minute
// filler rates, the most frequent filler tokens, and burst sub-intervals
// where the sliding-window rate spikes.
func ComputeFillers(words []types.WordToken, durationSec float64, cfg Config) types.MetricResult {
	if durationSec <= 0 || len(words) == 0 {
		return types.Abstained("no_words_or_invalid_duration")
	}

	counts := make(map[string]int)
	var fillerTimes []float64
	totalTokens := 0

	for _, w := range words {
		norm := normalizeFillerToken(w.Text)
		if norm == "" {
			continue
		}
		totalTokens++
		if fillerTokens[norm] {
			counts[norm]++
			fillerTimes = append(fillerTimes, w.Start)
		}
	}
	if totalTokens == 0 {
		return types.Abstained("no_tokens")
	}

	totalFillers := 0
	for _, c := range counts {
		totalFillers += c
	}
	durationMin := durationSec / 60
	ratePerMin := float64(totalFillers) / durationMin
	per100Words := float64(totalFillers) / float64(totalTokens) * 100

	spikes := window.SlidingSpikes(fillerTimes, cfg.Fillers.SpikeWindowSec, cfg.Fillers.SpikeThresholdPerMin)

	label, score := fillerLabel(totalFillers, ratePerMin, cfg.Fillers)

	feedback := []types.FeedbackItem{overallFillerFeedback(label, ratePerMin, durationSec)}
	for _, sp := range spikes {
		feedback = append(feedback, types.FeedbackItem{
			StartSec: sp.StartSec,
			EndSec:   sp.EndSec,
			Message: fmt.Sprintf(
				"High filler rate (~%.1f/min) detected in this segment. Practice pausing silently instead of saying 'um'.",
				sp.Rate),
			TipType: "fillers",
		})
	}

	return types.MetricResult{
		Score:      types.ScoreOf(score),
		Label:      label,
		Confidence: 0.75,
		Abstained:  false,
		Details: map[string]any{
			"filler_rate_per_min":   ratePerMin,
			"fillers_per_100_words": per100Words,
			"total_fillers":         totalFillers,
			"top_fillers":           topFillers(counts),
			"filler_spikes":         spikes,
		},
		Feedback: feedback,
	}
}

func fillerLabel(totalFillers int, ratePerMin float64, bands FillerBands) (string, int) {
	switch {
	case totalFillers == 0:
		return FillersLow, 95
	case ratePerMin <= bands.LowPerMin:
		return FillersLow, 85
	case ratePerMin <= bands.HighPerMin:
		return FillersModerate, 65
	default:
		return FillersHigh, 45
	}
}

func overallFillerFeedback(label string, ratePerMin, durationSec float64) types.FeedbackItem {
	var msg string
	switch label {
	case FillersHigh:
		msg = fmt.Sprintf(
			"High filler rate (~%.1f/min). Try replacing 'um'/'uh' with a silent breath or short pause.", ratePerMin)
	case FillersModerate:
		msg = fmt.Sprintf(
			"Moderate filler rate (~%.1f/min). Being more deliberate before speaking can reduce fillers.", ratePerMin)
	default:
		msg = fmt.Sprintf(
			"Low filler rate (~%.1f/min). Great job keeping your speech clean and focused.", ratePerMin)
	}
	return types.FeedbackItem{StartSec: 0, EndSec: durationSec, Message: msg, TipType: "fillers"}
}

// topFillers orders the counted fillers by descending count, ties broken
// alphabetically for deterministic output.
func topFillers(counts map[string]int) []FillerCount {
	out := make([]FillerCount, 0, len(counts))
	for tok, c := range counts {
		out = append(out, FillerCount{Token: tok, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	return out
}

// IsFillerToken reports whether a word token matches the filler lexicon
// after normalization. The transcript assembler uses it to flag tokens.
func IsFillerToken(text string) bool {
	return fillerTokens[normalizeFillerToken(text)]
}

// normalizeFillerToken lowercases, strips punctuation (apostrophes
// included), collapses whitespace, and folds "you know" into "youknow".
// Empty result means the token carried no letters or digits.
func normalizeFillerToken(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	norm := strings.Join(strings.Fields(b.String()), " ")
	if norm == "you know" {
		return "youknow"
	}
	return norm
}
