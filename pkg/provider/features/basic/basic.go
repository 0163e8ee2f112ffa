// Package basic implements [features.Extractor] with dependency-free DSP:
// frame-wise RMS energy plus autocorrelation pitch tracking constrained to
// the human speech F0 range (50–500 Hz). Unvoiced frames — where the best
// autocorrelation peak is weak — are reported as NaN in the raw series and
// excluded from the pitch statistics, matching how downstream range
// computation expects the series to look.
package basic

import (
	"context"
	"errors"
	"math"

	"github.com/orato-ai/orato/pkg/provider/features"
	"github.com/orato-ai/orato/pkg/types"
)

var _ features.Extractor = (*Extractor)(nil)

const (
	defaultFrameLen = 1024
	defaultHopLen   = 256

	minPitchHz = 50
	maxPitchHz = 500

	// voicingThreshold is the minimum normalized autocorrelation peak for a
	// frame to count as voiced. Below it the lag estimate is mostly noise.
	voicingThreshold = 0.30
)

// Extractor computes the basic prosodic feature summary. Safe for concurrent
// use — it holds no per-call state.
type Extractor struct {
	frameLen int
	hopLen   int
}

// Option configures an [Extractor].
type Option func(*Extractor)

// WithFrameLength sets the analysis frame length in samples. Default: 1024.
func WithFrameLength(n int) Option { return func(e *Extractor) { e.frameLen = n } }

// WithHopLength sets the hop between frames in samples. Default: 256.
func WithHopLength(n int) Option { return func(e *Extractor) { e.hopLen = n } }

// New returns an Extractor with the supplied options applied.
func New(opts ...Option) *Extractor {
	e := &Extractor{frameLen: defaultFrameLen, hopLen: defaultHopLen}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Name implements [features.Extractor].
func (e *Extractor) Name() string { return "basic-acf" }

// Extract implements [features.Extractor].
func (e *Extractor) Extract(ctx context.Context, samples []float32, sampleRate int) (types.FeatureSummary, error) {
	if sampleRate <= 0 {
		return types.FeatureSummary{}, errors.New("basic features: sample rate must be positive")
	}
	if err := ctx.Err(); err != nil {
		return types.FeatureSummary{}, err
	}

	summary := types.FeatureSummary{
		DurationSec: float64(len(samples)) / float64(sampleRate),
	}
	if len(samples) < e.frameLen {
		return summary, nil
	}

	var (
		energies []float64
		pitches  []float64 // NaN for unvoiced frames
	)
	frame := make([]float64, e.frameLen)
	for off := 0; off+e.frameLen <= len(samples); off += e.hopLen {
		for i := range frame {
			frame[i] = float64(samples[off+i])
		}
		energies = append(energies, rms(frame))
		pitches = append(pitches, pitchACF(frame, sampleRate))
	}

	summary.MeanEnergy, summary.EnergyStd = meanStd(energies)
	summary.RawEnergy = energies
	summary.RawPitchHz = pitches

	voiced := make([]float64, 0, len(pitches))
	for _, p := range pitches {
		if !math.IsNaN(p) {
			voiced = append(voiced, p)
		}
	}
	if len(voiced) > 0 {
		mean, std := meanStd(voiced)
		summary.MeanPitchHz = &mean
		summary.PitchStdHz = &std
	}
	return summary, nil
}

func rms(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// pitchACF estimates F0 by the highest normalized autocorrelation peak in
// the lag range corresponding to 50–500 Hz. Returns NaN when the frame is
// unvoiced.
func pitchACF(frame []float64, sampleRate int) float64 {
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return math.NaN()
	}

	minLag := sampleRate / maxPitchHz
	maxLag := sampleRate / minPitchHz
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return math.NaN()
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestLag, bestCorr = lag, corr
		}
	}
	if bestLag == 0 || bestCorr < voicingThreshold {
		return math.NaN()
	}
	return float64(sampleRate) / float64(bestLag)
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
