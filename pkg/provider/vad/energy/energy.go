// Package energy implements [vad.Detector] with a frame-energy threshold
// detector: frame RMS against an adaptive floor, with hangover smoothing and
// minimum speech/silence durations so breaths and plosives do not fragment
// the segmentation.
//
// It is deliberately simple — a neural detector is more accurate — but it is
// dependency-free, deterministic, and good enough as the default acoustic
// evidence source for pause reconciliation.
package energy

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/orato-ai/orato/pkg/provider/vad"
	"github.com/orato-ai/orato/pkg/types"
)

var _ vad.Detector = (*Detector)(nil)

const (
	defaultFrameMs      = 30
	defaultMinSpeechMs  = 150
	defaultMinSilenceMs = 100

	// thresholdAboveFloor is how far (linear factor) above the estimated
	// noise floor a frame's RMS must rise to count as speech.
	thresholdAboveFloor = 3.0

	// floorPercentile of the frame RMS distribution estimates the noise
	// floor. The 10th percentile sits safely inside the quietest frames of
	// normal recordings.
	floorPercentile = 0.10
)

// Detector is an energy-threshold VAD. Safe for concurrent use — it holds no
// per-call state.
type Detector struct {
	frameMs      int
	minSpeechMs  int
	minSilenceMs int
}

// Option configures a [Detector].
type Option func(*Detector)

// WithFrameMs sets the analysis frame length in milliseconds. Default: 30.
func WithFrameMs(ms int) Option { return func(d *Detector) { d.frameMs = ms } }

// WithMinSpeechMs sets the minimum duration a speech run must last to be
// kept. Default: 150.
func WithMinSpeechMs(ms int) Option { return func(d *Detector) { d.minSpeechMs = ms } }

// WithMinSilenceMs sets the minimum silence duration that splits two speech
// runs. Default: 100.
func WithMinSilenceMs(ms int) Option { return func(d *Detector) { d.minSilenceMs = ms } }

// New returns a Detector with the supplied options applied.
func New(opts ...Option) *Detector {
	d := &Detector{
		frameMs:      defaultFrameMs,
		minSpeechMs:  defaultMinSpeechMs,
		minSilenceMs: defaultMinSilenceMs,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Name implements [vad.Detector].
func (d *Detector) Name() string { return "energy-threshold" }

// SpeechIntervals implements [vad.Detector].
func (d *Detector) SpeechIntervals(ctx context.Context, samples []float32, sampleRate int) ([]types.Interval, error) {
	if sampleRate <= 0 {
		return nil, errors.New("energy vad: sample rate must be positive")
	}
	if len(samples) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frameLen := sampleRate * d.frameMs / 1000
	if frameLen <= 0 {
		return nil, errors.New("energy vad: frame too short for sample rate")
	}

	rms := frameRMS(samples, frameLen)
	if len(rms) == 0 {
		return nil, nil
	}
	threshold := noiseFloor(rms) * thresholdAboveFloor

	frameSec := float64(d.frameMs) / 1000
	var (
		intervals []types.Interval
		inSpeech  bool
		start     float64
	)
	for i, v := range rms {
		t := float64(i) * frameSec
		if v >= threshold {
			if !inSpeech {
				inSpeech, start = true, t
			}
			continue
		}
		if inSpeech {
			intervals = append(intervals, types.Interval{Start: start, End: t})
			inSpeech = false
		}
	}
	if inSpeech {
		intervals = append(intervals, types.Interval{Start: start, End: float64(len(rms)) * frameSec})
	}

	intervals = d.bridgeShortSilences(intervals)
	return d.dropShortSpeech(intervals), nil
}

// bridgeShortSilences merges speech runs separated by less than the minimum
// silence (hangover smoothing).
func (d *Detector) bridgeShortSilences(intervals []types.Interval) []types.Interval {
	minSilence := float64(d.minSilenceMs) / 1000
	var out []types.Interval
	for _, iv := range intervals {
		if n := len(out); n > 0 && iv.Start-out[n-1].End < minSilence {
			out[n-1].End = iv.End
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (d *Detector) dropShortSpeech(intervals []types.Interval) []types.Interval {
	minSpeech := float64(d.minSpeechMs) / 1000
	var out []types.Interval
	for _, iv := range intervals {
		if iv.Duration() >= minSpeech {
			out = append(out, iv)
		}
	}
	return out
}

func frameRMS(samples []float32, frameLen int) []float64 {
	var rms []float64
	for off := 0; off+frameLen <= len(samples); off += frameLen {
		var sum float64
		for _, s := range samples[off : off+frameLen] {
			sum += float64(s) * float64(s)
		}
		rms = append(rms, math.Sqrt(sum/float64(frameLen)))
	}
	return rms
}

// noiseFloor estimates the background level as a low percentile of the frame
// RMS distribution, with a tiny absolute floor so digital silence does not
// produce a zero threshold.
func noiseFloor(rms []float64) float64 {
	sorted := make([]float64, len(rms))
	copy(sorted, rms)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * floorPercentile)
	return math.Max(sorted[idx], 1e-5)
}
