package metric

import (
	"errors"
	"fmt"

	"github.com/orato-ai/orato/internal/analysis/pause"
	"github.com/orato-ai/orato/pkg/types"
)

// Pause-quality labels.
const (
	PausesTooMany = "too_many_pauses"
	PausesTooFew  = "too_few_pauses"
	PausesGood    = "good"
)

// PauseQualityInput carries the evidence the pause metric reconciles.
type PauseQualityInput struct {
	// WordGaps are pause candidates derived from inter-word gaps.
	WordGaps []types.PauseCandidate

	// Silences are pause candidates derived from voice-activity gaps.
	Silences []types.PauseCandidate

	DurationSec float64

	// Words provide the textual context for helpful/awkward classification.
	// May be empty; classification then falls back to duration-only rules.
	Words []types.WordToken

	// Signposts enables the signpost cue in context classification. May be
	// nil.
	Signposts pause.SignpostMatcher
}

// ComputePauseQuality reconciles both pause evidence sources into one
// timeline, judges the overall pause rate, and classifies every pause as
// helpful or awkward. Alongside the metric it returns the timeline events
// the frontend renders.
func ComputePauseQuality(in PauseQualityInput, cfg Config) (types.MetricResult, []types.TimelineEvent) {
	reconciled, err := pause.Reconcile(in.WordGaps, in.Silences, in.DurationSec, cfg.Pauses.BoundaryMarginSec)
	if err != nil {
		if errors.Is(err, pause.ErrInvalidDuration) {
			return types.Abstained("invalid_duration"), nil
		}
		return types.Abstained(fmt.Sprintf("reconcile_failed: %v", err)), nil
	}
	if len(reconciled) == 0 {
		return types.Abstained("no_pauses_detected"), nil
	}

	var (
		totalDur     float64
		longCount    int
		shortCount   int
		helpfulCount int
	)
	for i := range reconciled {
		d := reconciled[i].Duration()
		totalDur += d
		if d > 1.0 {
			longCount++
		}
		if d < 0.2 {
			shortCount++
		}

		reconciled[i].Context = pause.ClassifyContext(reconciled[i].Interval, in.Words, in.Signposts)
		if reconciled[i].Context == types.PauseHelpful {
			helpfulCount++
		}
	}

	total := len(reconciled)
	awkwardCount := total - helpfulCount
	pauseRate := float64(total) / in.DurationSec

	label, score := pauseLabel(pauseRate, cfg.Pauses)

	feedback := []types.FeedbackItem{pauseFeedback(label, pauseRate, in.DurationSec)}
	for _, p := range reconciled {
		if p.Context == types.PauseAwkward && p.Duration() > 2.0 {
			feedback = append(feedback, types.FeedbackItem{
				StartSec: p.Start,
				EndSec:   p.End,
				Message: fmt.Sprintf(
					"Long silent gap (%.1f s). If the pause is intentional, fill it with a look at the audience, not dead air.",
					p.Duration()),
				TipType: "pause_quality",
			})
		}
	}

	events := make([]types.TimelineEvent, total)
	for i, p := range reconciled {
		events[i] = types.EventFromPause(p)
	}

	return types.MetricResult{
		Score:      types.ScoreOf(score),
		Label:      label,
		Confidence: 0.75,
		Abstained:  false,
		Details: map[string]any{
			"total_pauses":           total,
			"average_pause_duration": totalDur / float64(total),
			"long_pauses":            longCount,
			"short_pauses":           shortCount,
			"pause_rate":             pauseRate,
			"helpful_count":          helpfulCount,
			"awkward_count":          awkwardCount,
			"helpful_ratio":          float64(helpfulCount) / float64(total),
			"awkward_ratio":          float64(awkwardCount) / float64(total),
		},
		Feedback: feedback,
	}, events
}

func pauseLabel(ratePerSec float64, bands PauseBands) (string, int) {
	switch {
	case ratePerSec > bands.TooManyPerSec:
		return PausesTooMany, 45
	case ratePerSec < bands.TooFewPerSec:
		return PausesTooFew, 55
	default:
		return PausesGood, 85
	}
}

func pauseFeedback(label string, ratePerSec, durationSec float64) types.FeedbackItem {
	var msg string
	switch label {
	case PausesTooMany:
		msg = fmt.Sprintf(
			"You pause very frequently (~%.2f/s). Try connecting ideas more fluidly.", ratePerSec)
	case PausesTooFew:
		msg = fmt.Sprintf(
			"You rarely pause (~%.2f/s). Add short pauses to emphasize key transitions.", ratePerSec)
	default:
		msg = "Your pacing and pauses are balanced and clear."
	}
	return types.FeedbackItem{StartSec: 0, EndSec: durationSec, Message: msg, TipType: "pause_quality"}
}
