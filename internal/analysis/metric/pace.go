package metric

import (
	"fmt"
	"log/slog"

	"github.com/orato-ai/orato/internal/analysis/window"
	"github.com/orato-ai/orato/pkg/provider/scorer"
	"github.com/orato-ai/orato/pkg/types"
)

// Pace labels.
const (
	PaceTooSlow = "too_slow"
	PaceOptimal = "optimal"
	PaceTooFast = "too_fast"
)

// Rule scores per pace label. too_fast scores above too_slow because rushed
// delivery is generally easier to correct than dragging delivery.
const (
	paceScoreSlow    = 40
	paceScoreOptimal = 90
	paceScoreFast    = 50
)

// PaceInput carries the measurements the pace metric consumes.
type PaceInput struct {
	Words       []types.WordToken
	DurationSec float64

	// SpeechRatio is the VAD speech coverage, fed to the secondary scorer.
	SpeechRatio float64

	// Scorer is the optional supplementary score source. When present its
	// [0,1] output is blended 50/50 with the rule-based score.
	Scorer scorer.Source
}

// ComputePace derives the speaking-rate metric: overall words per minute
// banded into too_slow / optimal / too_fast, per-segment WPM statistics for
// the details block, and optionally a hybrid score blending in a
// supplementary model.
func ComputePace(in PaceInput, cfg Config) types.MetricResult {
	if len(in.Words) == 0 || in.DurationSec <= 0 {
		return types.Abstained("no_words")
	}

	words := types.SortWordsByStart(in.Words)
	wpm := float64(len(words)) / (in.DurationSec / 60)

	ruleLabel := labelFromWPM(wpm, cfg.Pace)
	ruleScore := paceRuleScore(ruleLabel)

	meanPause, pauseRatio := interOnsetStats(words, cfg.Pace.HesitationGapSec)

	segments := window.FixedSegments(wordIntervals(words), in.DurationSec, cfg.Pace.SegmentLengthSec)

	label := ruleLabel
	finalScore := ruleScore
	details := map[string]any{
		"overall_wpm":    wpm,
		"mean_pause_sec": meanPause,
		"pause_ratio":    pauseRatio,
		"speech_ratio":   in.SpeechRatio,
		"rule_score":     ruleScore,
		"segment_stats":  segments,
	}

	if in.Scorer != nil {
		features := map[string]float64{
			"overall_wpm":  wpm,
			"mean_pause":   meanPause,
			"pause_ratio":  pauseRatio,
			"speech_ratio": in.SpeechRatio,
		}
		if model, err := in.Scorer.Score(features); err != nil {
			// A broken supplementary model never fails the metric.
			slog.Warn("pace: secondary scorer unavailable", "model", in.Scorer.Name(), "error", err)
		} else {
			norm := 0.5*(float64(ruleScore)/100) + 0.5*model
			finalScore = int(norm * 100)
			label = labelFromNorm(norm)
			details["regressor_score"] = model
		}
	}

	feedback := paceFeedback(label, wpm, in.DurationSec)
	feedback = append(feedback, segmentFeedback(segments, cfg.Pace)...)

	return types.MetricResult{
		Score:      types.ScoreOf(finalScore),
		Label:      label,
		Confidence: 0.8,
		Abstained:  false,
		Details:    details,
		Feedback:   feedback,
	}
}

func labelFromWPM(wpm float64, bands PaceBands) string {
	switch {
	case wpm < bands.SlowWPM:
		return PaceTooSlow
	case wpm <= bands.FastWPM:
		return PaceOptimal
	default:
		return PaceTooFast
	}
}

// labelFromNorm maps the blended normalized score to a label by terciles.
func labelFromNorm(norm float64) string {
	switch {
	case norm < 0.33:
		return PaceTooSlow
	case norm < 0.66:
		return PaceOptimal
	default:
		return PaceTooFast
	}
}

func paceRuleScore(label string) int {
	switch label {
	case PaceTooSlow:
		return paceScoreSlow
	case PaceOptimal:
		return paceScoreOptimal
	default:
		return paceScoreFast
	}
}

// interOnsetStats measures hesitation from the gaps between consecutive word
// onsets (plus the final word's own span): the mean gap and the share of
// gaps exceeding hesitationGap.
func interOnsetStats(sorted []types.WordToken, hesitationGap float64) (mean float64, ratio float64) {
	if len(sorted) == 0 {
		return 0, 0
	}

	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Start-sorted[i-1].Start)
	}
	gaps = append(gaps, sorted[len(sorted)-1].End-sorted[len(sorted)-1].Start)

	sum, over := 0.0, 0
	for _, g := range gaps {
		sum += g
		if g > hesitationGap {
			over++
		}
	}
	return sum / float64(len(gaps)), float64(over) / float64(len(gaps))
}

func wordIntervals(words []types.WordToken) []types.Interval {
	ivs := make([]types.Interval, len(words))
	for i, w := range words {
		ivs[i] = types.Interval{Start: w.Start, End: w.End}
	}
	return ivs
}

func paceFeedback(label string, wpm, duration float64) []types.FeedbackItem {
	span := min(duration, 30)
	switch label {
	case PaceTooFast:
		return []types.FeedbackItem{{
			StartSec: 0,
			EndSec:   span,
			Message:  fmt.Sprintf("Your speaking pace is fast (~%.0f WPM). Add strategic pauses.", wpm),
			TipType:  "pace",
		}}
	case PaceTooSlow:
		return []types.FeedbackItem{{
			StartSec: 0,
			EndSec:   span,
			Message:  fmt.Sprintf("Your pace is slow (~%.0f WPM). Reduce hesitation pauses.", wpm),
			TipType:  "pace",
		}}
	default:
		return nil
	}
}

// minSegmentWords guards segment feedback against sparse windows: a window
// with a handful of words says nothing reliable about pace.
const minSegmentWords = 5

func segmentFeedback(segments []window.Segment, bands PaceBands) []types.FeedbackItem {
	var out []types.FeedbackItem
	for _, seg := range segments {
		if seg.Count < minSegmentWords {
			continue
		}
		switch {
		case seg.RatePerMinute > bands.FastWPM:
			out = append(out, types.FeedbackItem{
				StartSec: seg.StartSec,
				EndSec:   seg.EndSec,
				Message:  fmt.Sprintf("You speed up here (~%.0f WPM). Slow down for this section.", seg.RatePerMinute),
				TipType:  "pace",
			})
		case seg.RatePerMinute < bands.SlowWPM && seg.RatePerMinute > 0:
			out = append(out, types.FeedbackItem{
				StartSec: seg.StartSec,
				EndSec:   seg.EndSec,
				Message:  fmt.Sprintf("This section drags (~%.0f WPM). Tighten the delivery.", seg.RatePerMinute),
				TipType:  "pace",
			})
		}
	}
	return out
}
