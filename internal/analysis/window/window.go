// Package window provides generic windowed rate computation over
// timestamped events: fixed consecutive segmentation (speech rate per talk
// segment) and sliding-window spike detection (bursts of a token class).
// Both functions are pure and deterministic.
package window

import "github.com/orato-ai/orato/pkg/types"

// Segment is one fixed window with the event rate observed inside it.
type Segment struct {
	StartSec      float64 `json:"start_sec"`
	EndSec        float64 `json:"end_sec"`
	RatePerMinute float64 `json:"wpm"`
	Count         int     `json:"count"`
}

// Spike is a sub-interval where the sliding-window rate met the threshold.
// Rate is the maximum rate observed across any merged window position.
type Spike struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Rate     float64 `json:"filler_rate"`
}

// FixedSegments partitions [0, totalDuration) into consecutive windows of at
// most segmentLength seconds (the last window may be shorter) and computes
// the per-minute rate of tokens starting inside each window.
//
// The rate denominator is the actual window duration, so a short trailing
// segment is never deflated by a full-length divisor. Returns nil for empty
// tokens or non-positive durations.
func FixedSegments(tokens []types.Interval, totalDuration, segmentLength float64) []Segment {
	if len(tokens) == 0 || totalDuration <= 0 || segmentLength <= 0 {
		return nil
	}

	var segments []Segment
	for start := 0.0; start < totalDuration; start += segmentLength {
		end := min(start+segmentLength, totalDuration)
		width := end - start

		count := 0
		for _, tok := range tokens {
			if tok.Start >= start && tok.Start < end {
				count++
			}
		}

		segments = append(segments, Segment{
			StartSec:      start,
			EndSec:        end,
			RatePerMinute: float64(count) / (width / 60),
			Count:         count,
		})
	}
	return segments
}

// SlidingSpikes steps a window of windowSec across [firstEvent, lastEvent]
// with a step of windowSec/4 (75% overlap between positions) and flags every
// position whose per-minute event rate reaches thresholdPerMinute.
//
// Window positions closer than one step to the previous spike extend it
// instead of opening a new one; the merged spike keeps the maximum rate seen
// across all positions it absorbed. Returns nil when events is empty or the
// event span is non-positive.
func SlidingSpikes(events []float64, windowSec, thresholdPerMinute float64) []Spike {
	if len(events) == 0 || windowSec <= 0 {
		return nil
	}

	first, last := events[0], events[0]
	for _, t := range events[1:] {
		first = min(first, t)
		last = max(last, t)
	}
	if last-first <= 0 {
		return nil
	}

	step := windowSec / 4
	windowMin := windowSec / 60

	var spikes []Spike
	for start := first; start+windowSec <= last; start += step {
		end := start + windowSec

		count := 0
		for _, t := range events {
			if t >= start && t < end {
				count++
			}
		}
		rate := float64(count) / windowMin
		if rate < thresholdPerMinute {
			continue
		}

		if n := len(spikes); n > 0 && start-spikes[n-1].EndSec < step {
			spikes[n-1].EndSec = end
			spikes[n-1].Rate = max(spikes[n-1].Rate, rate)
		} else {
			spikes = append(spikes, Spike{StartSec: start, EndSec: end, Rate: rate})
		}
	}
	return spikes
}
