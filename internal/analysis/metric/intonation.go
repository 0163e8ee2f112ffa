package metric

import (
	"fmt"

	"github.com/orato-ai/orato/internal/analysis/prosody"
	"github.com/orato-ai/orato/pkg/types"
)

// minIntonationDuration is the talk length below which intonation judgments
// are too unstable to score.
const minIntonationDuration = 3.0

// ComputeIntonation derives the intonation-dynamism metric from the prosodic
// feature summary: a multi-factor classification over pitch variation, pitch
// range, coefficient of variation, and energy variation.
//
// The pitch range is measured exactly from the raw pitch series when one is
// present; otherwise it is estimated from the standard deviation, and the
// feedback text qualifies the value with "~" so the reader can tell.
func ComputeIntonation(features types.FeatureSummary, cfg Config) types.MetricResult {
	if features.DurationSec <= minIntonationDuration {
		return types.Abstained("talk_too_short_for_intonation")
	}
	if features.PitchStdHz == nil {
		return types.Abstained("no_pitch_data")
	}

	pitchRange, haveRange := prosody.ResolvePitchRange(features.RawPitchHz, features.MeanPitchHz, features.PitchStdHz)
	cov, haveCoV := prosody.CoefficientOfVariation(features.MeanPitchHz, features.PitchStdHz)

	var rangePtr, covPtr *float64
	if haveRange {
		rangePtr = &pitchRange.Hz
	}
	if haveCoV {
		covPtr = &cov
	}

	label := prosody.ClassifyDynamism(features.PitchStdHz, rangePtr, covPtr, &features.EnergyStd, cfg.Intonation)
	score := intonationScore(label)
	varianceScore := prosody.VarianceScore(features.PitchStdHz, features.EnergyStd)

	// Heuristic: more observed variance means the judgment rests on more
	// signal. Having all four factors earns a small boost, capped at 0.95.
	confidence := 0.6 + 0.3*varianceScore
	if haveRange && haveCoV {
		confidence = min(0.95, confidence+0.05)
	}

	// pitch_range_hz and pitch_cov are always present, null when the
	// underlying stats could not be derived.
	details := map[string]any{
		"mean_pitch_hz":          floatOrNil(features.MeanPitchHz),
		"pitch_std_hz":           *features.PitchStdHz,
		"pitch_range_hz":         floatOrNil(rangePtr),
		"pitch_cov":              floatOrNil(covPtr),
		"energy_mean":            features.MeanEnergy,
		"energy_std":             features.EnergyStd,
		"prosody_variance_score": varianceScore,
	}
	if haveRange {
		details["pitch_range_exact"] = pitchRange.Exact
	}

	return types.MetricResult{
		Score:      types.ScoreOf(score),
		Label:      string(label),
		Confidence: confidence,
		Abstained:  false,
		Details:    details,
		Feedback: []types.FeedbackItem{
			intonationFeedback(label, *features.PitchStdHz, pitchRange, haveRange, features.DurationSec),
		},
	}
}

func intonationScore(label prosody.Label) int {
	switch label {
	case prosody.Monotone:
		return 45
	case prosody.SomewhatMonotone:
		return 65
	default:
		return 85
	}
}

func intonationFeedback(label prosody.Label, pitchStd float64, pr prosody.PitchRange, haveRange bool, duration float64) types.FeedbackItem {
	rangeStr := "unknown"
	if haveRange {
		qualifier := ""
		if !pr.Exact {
			qualifier = "~"
		}
		rangeStr = fmt.Sprintf("%s%.0f Hz", qualifier, pr.Hz)
	}

	var msg string
	switch label {
	case prosody.Monotone:
		msg = fmt.Sprintf(
			"Your pitch stays relatively flat (variation: %.1f Hz, range: %s). "+
				"Try varying your pitch by at least 100-150 Hz (about 1 octave) to sound more engaging. "+
				"Emphasize key words with pitch rises.",
			pitchStd, rangeStr)
	case prosody.SomewhatMonotone:
		msg = fmt.Sprintf(
			"You have some pitch variation (std: %.1f Hz, range: %s), but could be more dynamic. "+
				"Try increasing your pitch range to >100 Hz by using pitch rises for questions "+
				"and pitch falls for emphasis.",
			pitchStd, rangeStr)
	default:
		msg = fmt.Sprintf(
			"Excellent! Your pitch varies dynamically (std: %.1f Hz, range: %s), "+
				"which helps maintain listener attention. "+
				"Keep using vocal variety to emphasize structure and key points.",
			pitchStd, rangeStr)
	}

	return types.FeedbackItem{StartSec: 0, EndSec: duration, Message: msg, TipType: "intonation"}
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
