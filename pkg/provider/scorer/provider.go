// Package scorer defines the Source interface for supplementary score
// models.
//
// A Source maps a named feature vector to a continuous score in [0,1]. The
// pace metric optionally blends such a score 50/50 with its rule-based
// score; keeping the model behind this interface means the blend stays
// swappable — a trained regressor, a remote service, or nothing at all —
// without the metric code changing.
//
// Implementations must be safe for concurrent use: all metrics of one
// analysis run may query the same Source in parallel, and multiple analysis
// jobs may run at once.
package scorer

import "errors"

// ErrFeatureMissing is returned by Score when a feature the model requires
// is absent from the input vector.
var ErrFeatureMissing = errors.New("scorer: required feature missing")

// Source produces a supplementary score from named features.
type Source interface {
	// Score maps features to a value in [0,1]. Implementations must clamp
	// their output into that range. Feature keys are metric-defined (e.g.
	// "overall_wpm", "mean_pause", "pause_ratio", "speech_ratio").
	//
	// Returns an error when the model cannot produce a score; callers treat
	// that as "no supplementary score available", never as a hard failure.
	Score(features map[string]float64) (float64, error)

	// Name identifies the model for the model_metadata block of reports.
	Name() string
}
