// Package types defines the shared data model used across all Orato packages.
//
// These types form the lingua franca between collaborator providers, the
// analysis engine, the job manager, and the HTTP layer. All time values are
// expressed as float64 seconds from the start of the recording — that is the
// unit of the word timestamps produced by ASR and of every JSON field in the
// compatibility surface, so no conversion happens anywhere downstream.
//
// The JSON field names (score_0_100, start_sec, tip_type, ...) are part of
// the output contract consumed by the frontend and must not change.
package types

import "sort"

// WordToken is a single transcribed word with its time alignment.
// Tokens are produced by an ASR collaborator and are immutable; the engine
// re-sorts defensively but never rewrites a token.
type WordToken struct {
	// Text is the raw word text as produced by ASR, including any attached
	// punctuation.
	Text string `json:"text"`

	// Start and End are the word boundaries in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the per-word recognition probability in [0,1].
	// Zero means the provider did not report one.
	Confidence float64 `json:"probability"`
}

// SortWordsByStart returns a copy of words ordered by start time.
// The input slice is left untouched so callers can share it freely.
func SortWordsByStart(words []WordToken) []WordToken {
	sorted := make([]WordToken, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}

// Interval is a time span with Start <= End, in seconds.
// It is the base shape for pauses, speech segments, and analysis windows.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start in seconds.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Overlap returns the duration both intervals cover, or 0 when disjoint.
func (iv Interval) Overlap(other Interval) float64 {
	lo := max(iv.Start, other.Start)
	hi := min(iv.End, other.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// PauseSource identifies which evidence source produced a pause candidate.
type PauseSource string

const (
	// SourceWordGap marks a pause inferred from the gap between two
	// consecutive ASR word tokens.
	SourceWordGap PauseSource = "asr"

	// SourceVoiceActivity marks a pause inferred from a silence gap between
	// voice-activity speech intervals. The acoustic detector is considered
	// more accurate than ASR-derived gaps and wins on overlap.
	SourceVoiceActivity PauseSource = "vad"
)

// PauseClass buckets a pause by duration.
type PauseClass string

const (
	PauseVeryShort PauseClass = "very_short" // < 0.2 s
	PauseShort     PauseClass = "short"      // < 0.5 s
	PauseMedium    PauseClass = "medium"     // < 1.0 s
	PauseLong      PauseClass = "long"       // >= 1.0 s
)

// PauseContext is the qualitative judgment of whether a pause helps or hurts
// the delivery.
type PauseContext string

const (
	PauseHelpful PauseContext = "helpful"
	PauseAwkward PauseContext = "awkward"
)

// PauseCandidate is an unverified silence interval from one evidence source.
type PauseCandidate struct {
	Interval
	Source PauseSource `json:"source"`
}

// ReconciledPause is a deduplicated, source-prioritized, classified pause.
// Reconciled pauses never overlap each other by more than the reconciler's
// documented tolerance.
type ReconciledPause struct {
	Interval
	Source PauseSource `json:"source"`
	Class  PauseClass  `json:"quality"`

	// Context is empty until the contextual classifier has run.
	Context PauseContext `json:"context,omitempty"`
}

// FeatureSummary holds the scalar prosodic aggregates for one recording.
// It is produced once by the feature-extraction collaborator and read-only
// to every metric.
type FeatureSummary struct {
	// DurationSec is the total recording length.
	DurationSec float64 `json:"duration_sec"`

	// MeanPitchHz and PitchStdHz summarize the voiced F0 frames. Nil when
	// pitch extraction failed or found no voiced frames.
	MeanPitchHz *float64 `json:"mean_pitch_hz"`
	PitchStdHz  *float64 `json:"pitch_std_hz"`

	// MeanEnergy and EnergyStd summarize frame RMS energy.
	MeanEnergy float64 `json:"mean_energy"`
	EnergyStd  float64 `json:"energy_std"`

	// SpeechRatio is the fraction of the recording covered by detected
	// speech, in [0,1]. Zero when no VAD ran.
	SpeechRatio float64 `json:"speech_ratio"`

	// RawPitchHz is the optional per-frame F0 series. Unvoiced frames are
	// NaN. When present, metrics can compute exact (rather than estimated)
	// pitch ranges.
	RawPitchHz []float64 `json:"-"`

	// RawEnergy is the optional per-frame RMS series, used for the
	// noise-floor heuristic in the report's quality flags.
	RawEnergy []float64 `json:"-"`
}

// FeedbackItem is one time-anchored coaching note.
type FeedbackItem struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Message  string  `json:"message"`

	// TipType identifies the originating metric ("pace", "fillers", ...).
	TipType string `json:"tip_type"`
}

// MetricResult is the uniform per-metric output contract.
//
// Invariants: Score is nil if and only if Abstained is true, and an
// abstained result carries Confidence 0 and no feedback. Use [Abstained] to
// construct abstentions so the invariants hold by construction.
type MetricResult struct {
	// Score is the metric score in [0,100], nil when abstained.
	Score *int `json:"score_0_100"`

	// Label is the metric-specific categorical judgment, or "abstained".
	Label string `json:"label"`

	// Confidence is a declared heuristic in [0,1]. It is not a calibrated
	// posterior and must not be read as label certainty.
	Confidence float64 `json:"confidence"`

	Abstained bool `json:"abstained"`

	// Details carries metric-specific measurements for the frontend.
	Details map[string]any `json:"details"`

	// Feedback is ordered: whole-talk notes first, then sub-interval notes.
	Feedback []FeedbackItem `json:"feedback"`
}

// LabelAbstained is the label carried by every abstained MetricResult.
const LabelAbstained = "abstained"

// Abstained builds a MetricResult in the abstained state with the given
// machine-readable reason under details.reason.
func Abstained(reason string) MetricResult {
	return MetricResult{
		Score:      nil,
		Label:      LabelAbstained,
		Confidence: 0,
		Abstained:  true,
		Details:    map[string]any{"reason": reason},
		Feedback:   []FeedbackItem{},
	}
}

// ScoreOf is a convenience for building the *int score field.
func ScoreOf(v int) *int { return &v }

// TimelineEvent is a ReconciledPause projected for display.
type TimelineEvent struct {
	StartSec float64      `json:"start_sec"`
	EndSec   float64      `json:"end_sec"`
	Type     string       `json:"type"` // currently always "pause"
	Quality  PauseClass   `json:"quality"`
	Source   PauseSource  `json:"source"`
	Context  PauseContext `json:"context,omitempty"`
}

// EventFromPause projects p into its display form.
func EventFromPause(p ReconciledPause) TimelineEvent {
	return TimelineEvent{
		StartSec: p.Start,
		EndSec:   p.End,
		Type:     "pause",
		Quality:  p.Class,
		Source:   p.Source,
		Context:  p.Context,
	}
}

// OverallLabel is the categorical judgment of the aggregate score.
type OverallLabel string

const (
	OverallExcellent        OverallLabel = "excellent"         // >= 85
	OverallGood             OverallLabel = "good"              // >= 70
	OverallNeedsImprovement OverallLabel = "needs_improvement" // >= 50
	OverallPoor             OverallLabel = "poor"              // < 50
	OverallUnknown          OverallLabel = "unknown"           // nothing contributed
)

// OverallScore is the confidence-weighted aggregate over all metrics.
// It is derived data: recomputed whenever the metric set changes and never
// persisted independently of its inputs.
type OverallScore struct {
	Score      int          `json:"score_0_100"`
	Label      OverallLabel `json:"label"`
	Confidence float64      `json:"confidence"`
}
