// Package features defines the Extractor interface for prosodic feature
// summarization.
//
// An Extractor reduces a complete recording to the scalar aggregates the
// intonation metric consumes (pitch mean/std, energy mean/std) plus,
// optionally, the raw per-frame pitch series that allows exact pitch-range
// computation downstream.
//
// Implementations must be safe for concurrent use across calls.
package features

import (
	"context"

	"github.com/orato-ai/orato/pkg/types"
)

// Extractor summarizes the prosody of a complete recording.
type Extractor interface {
	// Extract computes the feature summary of samples (float32 mono PCM in
	// [-1,1] at sampleRate Hz). DurationSec and the energy fields are always
	// populated; the pitch fields are nil when pitch tracking found no
	// voiced frames. RawPitchHz, when non-nil, holds one F0 value per frame
	// with NaN marking unvoiced frames.
	Extract(ctx context.Context, samples []float32, sampleRate int) (types.FeatureSummary, error)

	// Name identifies the extractor for the model_metadata block of reports.
	Name() string
}
