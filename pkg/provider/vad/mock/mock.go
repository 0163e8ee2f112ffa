// Package mock provides a scripted [vad.Detector] for tests.
package mock

import (
	"context"

	"github.com/orato-ai/orato/pkg/provider/vad"
	"github.com/orato-ai/orato/pkg/types"
)

var _ vad.Detector = (*Detector)(nil)

// Detector returns a fixed interval set (or error) regardless of input.
type Detector struct {
	Intervals []types.Interval
	Err       error
}

// SpeechIntervals implements [vad.Detector].
func (d *Detector) SpeechIntervals(ctx context.Context, samples []float32, sampleRate int) ([]types.Interval, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Intervals, nil
}

// Name implements [vad.Detector].
func (d *Detector) Name() string { return "mock" }
