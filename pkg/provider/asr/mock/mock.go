// Package mock provides a scripted [asr.Transcriber] for tests.
package mock

import (
	"context"

	"github.com/orato-ai/orato/pkg/provider/asr"
	"github.com/orato-ai/orato/pkg/types"
)

var _ asr.Transcriber = (*Transcriber)(nil)

// Transcriber returns a fixed word list (or error) regardless of input.
type Transcriber struct {
	Words []types.WordToken
	Err   error
}

// Transcribe implements [asr.Transcriber].
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]types.WordToken, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Words, nil
}

// Name implements [asr.Transcriber].
func (t *Transcriber) Name() string { return "mock" }
