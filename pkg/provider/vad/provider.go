// Package vad defines the Detector interface for batch Voice Activity
// Detection backends.
//
// A Detector scans a complete mono PCM recording and returns the intervals
// where speech was heard. The analysis engine derives silence gaps from
// those intervals as the second, acoustically-grounded evidence source for
// pause reconciliation (the first being ASR word gaps).
//
// Implementations must be safe for concurrent use; several analysis jobs may
// detect speech at the same time.
package vad

import (
	"context"
	"sort"

	"github.com/orato-ai/orato/pkg/types"
)

// Detector finds speech intervals in a complete recording.
type Detector interface {
	// SpeechIntervals returns the speech spans of samples (float32 PCM in
	// [-1,1] at sampleRate Hz), ordered by start time, in seconds.
	//
	// A recording without any detected speech yields an empty slice and no
	// error; errors are reserved for invalid input or backend failure.
	SpeechIntervals(ctx context.Context, samples []float32, sampleRate int) ([]types.Interval, error)

	// Name identifies the detector for the model_metadata block of reports.
	Name() string
}

// DefaultMinSilence is the smallest gap between speech intervals reported as
// silence by [SilenceGaps].
const DefaultMinSilence = 0.15

// SilenceGaps inverts speech intervals into silence intervals over
// [0, totalDuration]: the span before the first speech, the gaps between
// speech intervals, and the span after the last speech. Gaps shorter than
// minSilence are suppressed; minSilence <= 0 falls back to
// [DefaultMinSilence].
//
// A recording with no speech at all is one single silence covering the whole
// duration.
func SilenceGaps(speech []types.Interval, totalDuration, minSilence float64) []types.Interval {
	if minSilence <= 0 {
		minSilence = DefaultMinSilence
	}
	if totalDuration <= 0 {
		return nil
	}
	if len(speech) == 0 {
		return []types.Interval{{Start: 0, End: totalDuration}}
	}

	sorted := make([]types.Interval, len(speech))
	copy(sorted, speech)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var gaps []types.Interval
	if sorted[0].Start > minSilence {
		gaps = append(gaps, types.Interval{Start: 0, End: sorted[0].Start})
	}
	for i := 1; i < len(sorted); i++ {
		gap := types.Interval{Start: sorted[i-1].End, End: sorted[i].Start}
		if gap.Duration() >= minSilence {
			gaps = append(gaps, gap)
		}
	}
	if last := sorted[len(sorted)-1].End; totalDuration-last >= minSilence {
		gaps = append(gaps, types.Interval{Start: last, End: totalDuration})
	}
	return gaps
}

// SpeechRatio returns the fraction of totalDuration covered by speech,
// clamped into [0,1]. Zero when totalDuration is non-positive.
func SpeechRatio(speech []types.Interval, totalDuration float64) float64 {
	if totalDuration <= 0 {
		return 0
	}
	var covered float64
	for _, s := range speech {
		covered += max(0, s.Duration())
	}
	return min(1, covered/totalDuration)
}
