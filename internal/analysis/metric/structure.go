package metric

import (
	"strings"

	"github.com/orato-ai/orato/internal/analysis/textseg"
	"github.com/orato-ai/orato/pkg/types"
)

// Content-structure labels.
const (
	StructureUnclear     = "unclear_structure"
	StructureMixed       = "mixed_structure"
	StructureMostlyClear = "mostly_clear_structure"
	StructureVeryClear   = "very_clear_structure"
)

// maxSignpostExamples caps the example sentences returned in details.
const maxSignpostExamples = 5

// ComputeStructure derives the content-structure metric from the transcript
// text: sentence statistics (count, average length, long-sentence share) and
// signpost usage, combined into a four-way clarity label.
func ComputeStructure(transcript string, signposts *textseg.Matcher, cfg Config) types.MetricResult {
	if strings.TrimSpace(transcript) == "" {
		return types.Abstained("empty_transcript")
	}

	sentences := textseg.SplitSentences(transcript)
	if len(sentences) == 0 {
		return types.Abstained("no_sentences")
	}

	totalTokens, longCount := 0, 0
	var examples []string
	for _, s := range sentences {
		totalTokens += s.Tokens
		if s.Tokens > cfg.Structure.LongSentenceTokens {
			longCount++
		}
		if len(examples) < maxSignpostExamples && signposts.ContainsSignpost(s.Text) {
			examples = append(examples, s.Text)
		}
	}

	numSentences := len(sentences)
	avgLen := float64(totalTokens) / float64(numSentences)
	longRatio := float64(longCount) / float64(numSentences)
	signpostCount := signposts.CountSignposts(transcript)

	lowSignposts := signpostCount == 0
	manyLong := longRatio > cfg.Structure.LongSentenceRatio

	label, score := structureLabel(lowSignposts, manyLong)

	return types.MetricResult{
		Score:      types.ScoreOf(score),
		Label:      label,
		Confidence: 0.75,
		Abstained:  false,
		Details: map[string]any{
			"num_sentences":              numSentences,
			"avg_sentence_length_tokens": avgLen,
			"long_sentence_threshold":    cfg.Structure.LongSentenceTokens,
			"long_sentence_count":        longCount,
			"signpost_count":             signpostCount,
			"signpost_examples":          examples,
			"low_signposts":              lowSignposts,
			"many_long_sentences":        manyLong,
		},
		Feedback: []types.FeedbackItem{{
			// Structure is a whole-talk property; no sub-interval to anchor.
			StartSec: 0,
			EndSec:   0,
			Message:  structureFeedback(label),
			TipType:  "content_structure",
		}},
	}
}

func structureLabel(lowSignposts, manyLong bool) (string, int) {
	switch {
	case lowSignposts && manyLong:
		return StructureUnclear, 45
	case lowSignposts:
		return StructureMixed, 60
	case manyLong:
		return StructureMostlyClear, 75
	default:
		return StructureVeryClear, 90
	}
}

func structureFeedback(label string) string {
	switch label {
	case StructureUnclear:
		return "Your talk structure is hard to follow: you rarely use signposts and several " +
			"sentences are quite long. Try adding phrases like 'first', 'next', or " +
			"'in summary', and break long sentences into smaller units."
	case StructureMixed:
		return "Some parts of your structure are clear, but the flow could be improved. " +
			"Consider using more explicit signposts and shortening long sentences."
	case StructureMostlyClear:
		return "Your structure is mostly clear, with some room to improve. " +
			"A few long sentences could be simplified, and extra signposts may help transitions."
	default:
		return "Your structure is very clear. You use signposts effectively and keep sentences " +
			"at a readable length, which makes it easy for the audience to follow."
	}
}
