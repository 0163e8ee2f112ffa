// Package prosody classifies intonation dynamism from pitch and energy
// statistics. Four weakly-correlated factors are bucketed independently
// against fixed thresholds and combined by a weighted sum into exactly three
// labels, so no single noisy factor dominates the judgment.
package prosody

import (
	"math"
	"sort"
)

// Label is the three-way intonation judgment.
type Label string

const (
	Monotone         Label = "monotone"
	SomewhatMonotone Label = "somewhat_monotone"
	Dynamic          Label = "dynamic"
)

// Factor weights. They must sum to 1.0; pitch statistics dominate because
// energy variation is the least speaker-independent signal.
const (
	weightPitchStd   = 0.35
	weightPitchRange = 0.25
	weightPitchCoV   = 0.25
	weightEnergyStd  = 0.15
)

// minVoicedFrames is the number of voiced pitch frames required before an
// exact range is trusted over the statistical estimate.
const minVoicedFrames = 10

// Thresholds holds the per-factor bucket boundaries. Each factor maps to
// bucket 0 (flat), 1 (moderate), or 2 (dynamic).
type Thresholds struct {
	PitchStdLowHz    float64 `yaml:"pitch_std_low_hz"`
	PitchStdHighHz   float64 `yaml:"pitch_std_high_hz"`
	PitchRangeLowHz  float64 `yaml:"pitch_range_low_hz"`
	PitchRangeHighHz float64 `yaml:"pitch_range_high_hz"`
	CoVLow           float64 `yaml:"cov_low"`
	CoVHigh          float64 `yaml:"cov_high"`
	EnergyStdLow     float64 `yaml:"energy_std_low"`
	EnergyStdHigh    float64 `yaml:"energy_std_high"`
}

// DefaultThresholds returns the tuned bucket boundaries: pitch std 12/25 Hz,
// pitch range 50/100 Hz (half / full octave around typical speech), CoV
// 0.10/0.20, energy std 0.005/0.02.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PitchStdLowHz:    12,
		PitchStdHighHz:   25,
		PitchRangeLowHz:  50,
		PitchRangeHighHz: 100,
		CoVLow:           0.10,
		CoVHigh:          0.20,
		EnergyStdLow:     0.005,
		EnergyStdHigh:    0.02,
	}
}

// PitchRange is a pitch spread in Hz plus whether it was measured from the
// raw series or estimated from the standard deviation. Estimated ranges are
// qualified downstream (a "~" marker in feedback text).
type PitchRange struct {
	Hz    float64
	Exact bool
}

// ExactPitchRange computes the 5th–95th percentile spread of the voiced
// frames in the raw pitch series. The percentile clip makes the range robust
// to octave-jump outliers from the pitch tracker. Returns false when fewer
// than 10 voiced frames are available.
func ExactPitchRange(rawPitchHz []float64) (float64, bool) {
	voiced := make([]float64, 0, len(rawPitchHz))
	for _, f := range rawPitchHz {
		if !math.IsNaN(f) && f > 0 {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) < minVoicedFrames {
		return 0, false
	}
	sort.Float64s(voiced)
	return percentile(voiced, 95) - percentile(voiced, 5), true
}

// EstimatePitchRange approximates the pitch range as 4×std: assuming a
// roughly normal F0 distribution, ±2σ covers about 95% of frames.
func EstimatePitchRange(pitchStdHz float64) float64 {
	return 4 * pitchStdHz
}

// ResolvePitchRange prefers the exact range from the raw series and falls
// back to the 4×std estimate. ok is false when neither can be computed.
func ResolvePitchRange(rawPitchHz []float64, meanPitchHz, pitchStdHz *float64) (PitchRange, bool) {
	if hz, ok := ExactPitchRange(rawPitchHz); ok {
		return PitchRange{Hz: hz, Exact: true}, true
	}
	if meanPitchHz == nil || pitchStdHz == nil {
		return PitchRange{}, false
	}
	return PitchRange{Hz: EstimatePitchRange(*pitchStdHz)}, true
}

// CoefficientOfVariation returns pitchStd/meanPitch, a speaker-independent
// variation measure. ok is false when either input is missing or the mean is
// non-positive.
func CoefficientOfVariation(meanPitchHz, pitchStdHz *float64) (float64, bool) {
	if meanPitchHz == nil || pitchStdHz == nil || *meanPitchHz <= 0 {
		return 0, false
	}
	return *pitchStdHz / *meanPitchHz, true
}

// ClassifyDynamism combines the four factors into the final label.
// pitchRange, cov, and energyStd are optional: a missing factor contributes
// bucket 0, biasing toward monotone, which is the conservative direction for
// coaching feedback. A missing pitchStd yields Monotone directly.
func ClassifyDynamism(pitchStdHz *float64, pitchRange *float64, cov *float64, energyStd *float64, th Thresholds) Label {
	if pitchStdHz == nil {
		return Monotone
	}

	sum := weightPitchStd * float64(bucket(*pitchStdHz, th.PitchStdLowHz, th.PitchStdHighHz))
	if pitchRange != nil {
		sum += weightPitchRange * float64(bucket(*pitchRange, th.PitchRangeLowHz, th.PitchRangeHighHz))
	}
	if cov != nil {
		sum += weightPitchCoV * float64(bucket(*cov, th.CoVLow, th.CoVHigh))
	}
	if energyStd != nil {
		sum += weightEnergyStd * float64(bucket(*energyStd, th.EnergyStdLow, th.EnergyStdHigh))
	}

	switch {
	case sum < 0.7:
		return Monotone
	case sum < 1.4:
		return SomewhatMonotone
	default:
		return Dynamic
	}
}

// VarianceScore crudely normalizes pitch and energy variation into [0,1] by
// clipping each into its typical range and averaging. Used only to scale the
// intonation confidence heuristic, not the label.
func VarianceScore(pitchStdHz *float64, energyStd float64) float64 {
	return 0.5 * (clipNorm(pitchStdHz, 5, 50) + clipNorm(&energyStd, 0.001, 0.05))
}

func bucket(v, low, high float64) int {
	switch {
	case v < low:
		return 0
	case v < high:
		return 1
	default:
		return 2
	}
}

func clipNorm(v *float64, lo, hi float64) float64 {
	if v == nil {
		return 0
	}
	x := min(max(*v, lo), hi)
	return (x - lo) / (hi - lo)
}

// percentile interpolates the p-th percentile of sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
