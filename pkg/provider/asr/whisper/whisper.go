// Package whisper implements [asr.Transcriber] with the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/orato-ai/orato/pkg/provider/asr"
	"github.com/orato-ai/orato/pkg/types"
)

var _ asr.Transcriber = (*Transcriber)(nil)

const defaultLanguage = "en"

// Transcriber runs batch whisper.cpp inference. The model is loaded once and
// shared; each Transcribe call creates its own whisper context, so
// concurrent calls are safe.
type Transcriber struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a [Transcriber].
type Option func(*Transcriber)

// WithLanguage sets the BCP-47 language code for recognition (e.g. "en",
// "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// New loads the whisper.cpp model at modelPath. The caller must call Close
// when the transcriber is no longer needed.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	t := &Transcriber{model: model, language: defaultLanguage}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Close releases the whisper model.
func (t *Transcriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Name implements [asr.Transcriber].
func (t *Transcriber) Name() string { return "whisper.cpp" }

// Transcribe implements [asr.Transcriber]. Token-level timestamps are
// enabled so every word carries its own start/end rather than inheriting the
// segment span.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]types.WordToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("whisper: set language %q: %w", t.language, err)
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var words []types.WordToken
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		for _, tok := range segment.Tokens {
			if w, ok := wordFromToken(tok); ok {
				words = append(words, w)
			}
		}
	}
	return words, nil
}

// wordFromToken converts a whisper token into a WordToken, dropping special
// markers, empty text, non-finite timestamps, and low-confidence noise.
func wordFromToken(tok whisperlib.Token) (types.WordToken, bool) {
	text := strings.TrimSpace(tok.Text)
	if text == "" || strings.HasPrefix(text, "[_") || strings.HasPrefix(text, "<|") {
		return types.WordToken{}, false
	}

	start := tok.Start.Seconds()
	end := tok.End.Seconds()
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) || end < start {
		return types.WordToken{}, false
	}

	conf := float64(tok.P)
	if conf > 0 && conf < asr.MinWordConfidence {
		return types.WordToken{}, false
	}

	return types.WordToken{Text: text, Start: start, End: end, Confidence: conf}, true
}
