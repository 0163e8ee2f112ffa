// Package pause turns two independent silence-evidence sources — gaps
// between ASR word tokens and silence between voice-activity speech
// intervals — into one consistent, non-overlapping pause timeline, and
// classifies each pause by duration and by conversational context.
package pause

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/orato-ai/orato/pkg/types"
)

// ErrInvalidDuration is returned by Reconcile when the recording duration is
// zero or negative. Callers convert it into a per-metric abstention with
// reason "invalid_duration" rather than failing the analysis.
var ErrInvalidDuration = errors.New("pause: total duration must be positive")

const (
	// DefaultBoundaryMargin is how close (in seconds) a voice-activity
	// silence must sit to the recording edges to be discarded as lead-in or
	// trail-out rather than a communicative pause.
	DefaultBoundaryMargin = 0.3

	// DefaultMinWordGap is the minimum gap between consecutive words that
	// counts as a pause candidate.
	DefaultMinWordGap = 0.25

	// overlapTolerance is the minimum overlap duration for two candidates to
	// be treated as the same pause.
	overlapTolerance = 0.1
)

// WordGaps derives pause candidates from the gaps between consecutive word
// tokens. Words are sorted by start time first; gaps shorter than minGap are
// ignored. minGap <= 0 falls back to [DefaultMinWordGap].
func WordGaps(words []types.WordToken, minGap float64) []types.PauseCandidate {
	if minGap <= 0 {
		minGap = DefaultMinWordGap
	}
	if len(words) < 2 {
		return nil
	}

	sorted := types.SortWordsByStart(words)
	var gaps []types.PauseCandidate
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Start - sorted[i-1].End
		if gap >= minGap {
			gaps = append(gaps, types.PauseCandidate{
				Interval: types.Interval{Start: sorted[i-1].End, End: sorted[i].Start},
				Source:   types.SourceWordGap,
			})
		}
	}
	return gaps
}

// Classify buckets a pause duration into its [types.PauseClass].
func Classify(duration float64) types.PauseClass {
	switch {
	case duration < 0.2:
		return types.PauseVeryShort
	case duration < 0.5:
		return types.PauseShort
	case duration < 1.0:
		return types.PauseMedium
	default:
		return types.PauseLong
	}
}

// Reconcile merges word-gap and voice-activity pause candidates into one
// de-duplicated, prioritized timeline sorted by start time.
//
// Voice-activity candidates within min(boundaryMargin, totalDuration/4) of
// the recording edges are dropped (lead-in/trail-out silence), as are
// candidates with non-positive duration. Word-gap candidates are internal by
// construction and trusted as-is.
//
// Overlap resolution walks the candidates in start order and tests each one
// against the already accepted set. An overlap counts when the shared span
// is at least 0.1 s. Voice-activity evidence wins over word-gap evidence;
// two candidates from the same source merge into their union. Only the
// first overlapping accepted interval is considered per candidate — a
// deliberate single-pass simplification, not full transitive closure, so a
// chain of same-source overlaps can leave one residual overlapping pair.
//
// Returns [ErrInvalidDuration] when totalDuration <= 0; the caller abstains.
func Reconcile(wordGaps, silences []types.PauseCandidate, totalDuration, boundaryMargin float64) ([]types.ReconciledPause, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDuration, totalDuration)
	}
	if boundaryMargin <= 0 {
		boundaryMargin = DefaultBoundaryMargin
	}

	candidates := make([]types.PauseCandidate, 0, len(wordGaps)+len(silences))
	candidates = append(candidates, wordGaps...)

	// Short clips shrink the margin so trimming cannot swallow everything.
	margin := min(boundaryMargin, totalDuration/4)
	for _, s := range silences {
		if s.Duration() <= 0 {
			continue
		}
		if s.Start <= margin || s.End >= totalDuration-margin {
			slog.Debug("pause: dropped boundary silence",
				"start", s.Start, "end", s.End, "margin", margin)
			continue
		}
		candidates = append(candidates, s)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Start < candidates[j].Start })

	var accepted []types.PauseCandidate
	for _, cand := range candidates {
		overlapped := false
		for i, acc := range accepted {
			if cand.Overlap(acc.Interval) < overlapTolerance {
				continue
			}
			overlapped = true

			switch {
			case cand.Source == types.SourceVoiceActivity && acc.Source == types.SourceWordGap:
				// Acoustic evidence replaces the ASR-derived gap.
				accepted[i] = cand
			case cand.Source == types.SourceWordGap && acc.Source == types.SourceVoiceActivity:
				// Lower-priority evidence is discarded.
			default:
				// Same source: merge into the union, source preserved.
				accepted[i] = types.PauseCandidate{
					Interval: types.Interval{
						Start: min(acc.Start, cand.Start),
						End:   max(acc.End, cand.End),
					},
					Source: acc.Source,
				}
			}
			break // first overlapping accepted interval only
		}
		if !overlapped {
			accepted = append(accepted, cand)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })

	out := make([]types.ReconciledPause, len(accepted))
	for i, a := range accepted {
		out[i] = types.ReconciledPause{
			Interval: a.Interval,
			Source:   a.Source,
			Class:    Classify(a.Duration()),
		}
	}
	return out, nil
}
