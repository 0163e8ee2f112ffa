// Package asr defines the Transcriber interface for batch speech-to-text
// backends.
//
// Unlike a streaming STT session, a batch Transcriber consumes one complete
// recording and returns the full word-level transcript in a single call —
// the natural shape for after-the-fact analysis of a finished talk. The
// engine consumes only the word tokens; which model produced them is
// irrelevant downstream.
//
// Implementations must be safe for concurrent use across calls.
package asr

import (
	"context"

	"github.com/orato-ai/orato/pkg/types"
)

// MinWordConfidence is the floor below which recognized words are treated as
// noise and dropped by implementations. Words without a reported confidence
// pass through untouched.
const MinWordConfidence = 0.2

// Transcriber converts a complete recording into time-aligned word tokens.
type Transcriber interface {
	// Transcribe runs recognition over samples (float32 mono PCM in [-1,1]
	// at sampleRate Hz) and returns word tokens ordered by start time.
	//
	// Implementations filter out empty/whitespace tokens, tokens with
	// non-finite timestamps, and tokens below [MinWordConfidence]; the
	// downstream engine still tolerates occasional near-duplicates rather
	// than crashing on them.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]types.WordToken, error)

	// Name identifies the model for the model_metadata block of reports.
	Name() string
}
