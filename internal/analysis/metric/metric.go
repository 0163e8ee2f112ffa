// Package metric implements the five per-metric result builders: pace,
// fillers, intonation, pause quality, and content structure.
//
// Every metric is a pure function from read-only measurements plus a
// threshold configuration to a [types.MetricResult]. Metrics never fail
// hard: missing or invalid input produces an abstained result with a
// machine-readable reason, and the orchestration layer additionally converts
// panics at the per-metric boundary into abstentions.
//
// The label thresholds are part of the observable output contract. They are
// carried in [Config] as named values so they can be tuned from the YAML
// configuration without touching algorithm code, but their defaults must be
// reproduced exactly for output compatibility.
package metric

import (
	"github.com/orato-ai/orato/internal/analysis/prosody"
)

// Config groups the threshold bands of all metrics.
type Config struct {
	Pace       PaceBands          `yaml:"pace"`
	Fillers    FillerBands        `yaml:"fillers"`
	Pauses     PauseBands         `yaml:"pauses"`
	Intonation prosody.Thresholds `yaml:"intonation"`
	Structure  StructureBands     `yaml:"structure"`
}

// PaceBands holds the words-per-minute bands and segmentation width for the
// pace metric.
type PaceBands struct {
	// SlowWPM and FastWPM bound the optimal band: < SlowWPM is too_slow,
	// > FastWPM is too_fast.
	SlowWPM float64 `yaml:"slow_wpm"`
	FastWPM float64 `yaml:"fast_wpm"`

	// SegmentLengthSec is the fixed window width for per-segment WPM stats.
	SegmentLengthSec float64 `yaml:"segment_length_sec"`

	// HesitationGapSec is the inter-word gap counted as hesitation in the
	// pause_ratio detail.
	HesitationGapSec float64 `yaml:"hesitation_gap_sec"`
}

// FillerBands holds the filler-rate bands and spike-detection parameters.
type FillerBands struct {
	// LowPerMin and HighPerMin bound the moderate band: <= LowPerMin is
	// low_filler_rate, > HighPerMin is high_filler_rate.
	LowPerMin  float64 `yaml:"low_per_min"`
	HighPerMin float64 `yaml:"high_per_min"`

	// SpikeWindowSec and SpikeThresholdPerMin drive sliding-window burst
	// detection.
	SpikeWindowSec       float64 `yaml:"spike_window_sec"`
	SpikeThresholdPerMin float64 `yaml:"spike_threshold_per_min"`
}

// PauseBands holds pause derivation and rate bands.
type PauseBands struct {
	// MinWordGapSec is the smallest inter-word gap treated as a pause
	// candidate.
	MinWordGapSec float64 `yaml:"min_word_gap_sec"`

	// BoundaryMarginSec trims voice-activity silence near the recording
	// edges.
	BoundaryMarginSec float64 `yaml:"boundary_margin_sec"`

	// TooManyPerSec and TooFewPerSec bound the good band of pauses/second.
	TooManyPerSec float64 `yaml:"too_many_per_sec"`
	TooFewPerSec  float64 `yaml:"too_few_per_sec"`
}

// StructureBands holds the content-structure thresholds.
type StructureBands struct {
	// LongSentenceTokens is the content-token count above which a sentence
	// counts as long.
	LongSentenceTokens int `yaml:"long_sentence_tokens"`

	// LongSentenceRatio is the long-sentence share above which the talk is
	// considered heavy.
	LongSentenceRatio float64 `yaml:"long_sentence_ratio"`
}

// DefaultConfig returns the contract-defining default thresholds.
func DefaultConfig() Config {
	return Config{
		Pace: PaceBands{
			SlowWPM:          110,
			FastWPM:          170,
			SegmentLengthSec: 30,
			HesitationGapSec: 0.4,
		},
		Fillers: FillerBands{
			LowPerMin:            3,
			HighPerMin:           7,
			SpikeWindowSec:       30,
			SpikeThresholdPerMin: 10,
		},
		Pauses: PauseBands{
			MinWordGapSec:     0.25,
			BoundaryMarginSec: 0.3,
			TooManyPerSec:     0.30,
			TooFewPerSec:      0.05,
		},
		Intonation: prosody.DefaultThresholds(),
		Structure: StructureBands{
			LongSentenceTokens: 30,
			LongSentenceRatio:  0.4,
		},
	}
}
