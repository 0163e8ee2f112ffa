package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/jobs"
	"github.com/orato-ai/orato/pkg/audio"
	"github.com/orato-ai/orato/pkg/provider/vad"
	"github.com/orato-ai/orato/pkg/types"
)

// Version stamps the model_metadata block of every report. Overridden at
// build time via -ldflags.
var Version = "dev"

// runPipeline is the per-job analysis pipeline: decode audio, run ASR, VAD
// and feature extraction concurrently, then hand the evidence to the engine
// and assemble the report. Used as the job manager's Runner.
func (a *App) runPipeline(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
	if a.providers.ASR == nil {
		return nil, fmt.Errorf("app: no ASR provider configured")
	}

	publish("decoding", "loading audio")
	samples, err := audio.LoadForAnalysis(job.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("app: load audio: %w", err)
	}
	durationSec := float64(len(samples)) / float64(audio.AnalysisRate)

	var (
		words    []types.WordToken
		speech   []types.Interval
		features types.FeatureSummary
	)

	publish("transcribing", "running speech recognition")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		words, err = a.providers.ASR.Transcribe(gctx, samples, audio.AnalysisRate)
		if err != nil {
			return fmt.Errorf("transcribe: %w", err)
		}
		a.metrics.TranscriptionDuration.Record(gctx, time.Since(start).Seconds())
		return nil
	})
	if a.providers.VAD != nil {
		g.Go(func() error {
			var err error
			speech, err = a.providers.VAD.SpeechIntervals(gctx, samples, audio.AnalysisRate)
			if err != nil {
				return fmt.Errorf("voice activity: %w", err)
			}
			return nil
		})
	}
	if a.providers.Features != nil {
		g.Go(func() error {
			var err error
			features, err = a.providers.Features.Extract(gctx, samples, audio.AnalysisRate)
			if err != nil {
				return fmt.Errorf("feature extraction: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	if features.DurationSec == 0 {
		features.DurationSec = durationSec
	}
	features.SpeechRatio = vad.SpeechRatio(speech, durationSec)

	in := analysis.Input{
		Words:       words,
		DurationSec: durationSec,
		Speech:      speech,
		Features:    features,
		Requested:   job.Request.RequestedMetrics,
	}

	publish("analyzing", "computing metrics")
	res := a.currentEngine().Analyze(in)

	report := analysis.BuildReport(job.ID, job.Request, in, res, a.modelMetadata())
	return &report, nil
}

// modelMetadata names the providers that produced this report's evidence.
func (a *App) modelMetadata() analysis.ModelMetadata {
	md := analysis.ModelMetadata{Version: Version}
	if a.providers.ASR != nil {
		md.ASRModel = a.providers.ASR.Name()
	}
	if a.providers.VAD != nil {
		md.VADModel = a.providers.VAD.Name()
	}
	if a.providers.Features != nil {
		md.FeaturesModel = a.providers.Features.Name()
	}
	return md
}
