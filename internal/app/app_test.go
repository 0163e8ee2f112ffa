package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/app"
	"github.com/orato-ai/orato/internal/config"
	storemock "github.com/orato-ai/orato/internal/store/mock"
	"github.com/orato-ai/orato/pkg/audio"
	asrmock "github.com/orato-ai/orato/pkg/provider/asr/mock"
	featmock "github.com/orato-ai/orato/pkg/provider/features/mock"
	vadmock "github.com/orato-ai/orato/pkg/provider/vad/mock"
	"github.com/orato-ai/orato/pkg/types"
)

// stageWAV writes a short mono clip and returns its path.
func stageWAV(t *testing.T, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, audio.AnalysisRate, 16, 1, 1)
	data := make([]int, int(seconds*audio.AnalysisRate))
	for i := range data {
		data[i] = 1000
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: audio.AnalysisRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func talkWords() []types.WordToken {
	texts := []string{"today", "I", "will", "explain", "the", "plan", "in", "detail"}
	words := make([]types.WordToken, len(texts))
	for i, text := range texts {
		start := 0.2 + float64(i)*0.2
		words[i] = types.WordToken{Text: text, Start: start, End: start + 0.15, Confidence: 0.9}
	}
	return words
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	pitchMean, pitchStd := 180.0, 30.0
	providers := &app.Providers{
		ASR: &asrmock.Transcriber{Words: talkWords()},
		VAD: &vadmock.Detector{Intervals: []types.Interval{{Start: 0.1, End: 1.9}}},
		Features: &featmock.Extractor{Summary: types.FeatureSummary{
			MeanPitchHz: &pitchMean,
			PitchStdHz:  &pitchStd,
			MeanEnergy:  0.02,
			EnergyStd:   0.01,
		}},
	}
	st := storemock.New()

	application, err := app.New(context.Background(), config.Default(), providers,
		config.NewRegistry(), app.WithStore(st))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Shutdown()

	m := application.Manager()
	m.Start(context.Background())

	path := stageWAV(t, 2.0)
	id, err := m.Submit(analysis.RequestInput{AudioURL: path, Language: "en"}, path)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		job, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if job.Status == analysis.StatusDone {
			break
		}
		if job.Status == analysis.StatusFailed {
			t.Fatalf("job failed: %s", job.Error)
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in status %q", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	report, err := st.GetReport(context.Background(), id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.Status != analysis.StatusDone {
		t.Fatalf("report status = %q", report.Status)
	}
	if report.Input.DurationSec != 2.0 {
		t.Fatalf("duration = %v, want 2.0", report.Input.DurationSec)
	}
	if len(report.Metrics) != len(analysis.AllMetrics) {
		t.Fatalf("got %d metrics, want %d", len(report.Metrics), len(analysis.AllMetrics))
	}
	if report.ModelMetadata.ASRModel != "mock" || report.ModelMetadata.VADModel != "mock" {
		t.Fatalf("model metadata not filled: %+v", report.ModelMetadata)
	}
	if report.Transcript.FullText == "" {
		t.Fatal("transcript should carry the joined words")
	}
}

func TestPipelineFailsOnMissingAudio(t *testing.T) {
	t.Parallel()

	providers := &app.Providers{ASR: &asrmock.Transcriber{Words: talkWords()}}
	st := storemock.New()

	application, err := app.New(context.Background(), config.Default(), providers,
		config.NewRegistry(), app.WithStore(st))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Shutdown()

	m := application.Manager()
	m.Start(context.Background())

	missing := filepath.Join(t.TempDir(), "gone.wav")
	id, err := m.Submit(analysis.RequestInput{AudioURL: missing}, missing)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		job, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if job.Status == analysis.StatusFailed {
			if job.Error == "" {
				t.Fatal("failed job should record an error")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in status %q", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestReloadAnalysisAppliesToNewJobs(t *testing.T) {
	t.Parallel()

	// talkWords spans 2 s at 8 words: 240 WPM, too_fast under defaults.
	providers := &app.Providers{ASR: &asrmock.Transcriber{Words: talkWords()}}
	st := storemock.New()

	application, err := app.New(context.Background(), config.Default(), providers,
		config.NewRegistry(), app.WithStore(st))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Shutdown()

	m := application.Manager()
	m.Start(context.Background())

	path := stageWAV(t, 2.0)
	runJob := func() *analysis.Report {
		t.Helper()
		id, err := m.Submit(analysis.RequestInput{AudioURL: path}, path)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		deadline := time.After(5 * time.Second)
		for {
			job, err := m.Get(id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if job.Status == analysis.StatusDone {
				break
			}
			if job.Status == analysis.StatusFailed {
				t.Fatalf("job failed: %s", job.Error)
			}
			select {
			case <-deadline:
				t.Fatalf("job stuck in status %q", job.Status)
			case <-time.After(10 * time.Millisecond):
			}
		}
		report, err := st.GetReport(context.Background(), id)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		return report
	}

	if label := runJob().Metrics["pace"].Label; label != "too_fast" {
		t.Fatalf("pace label before reload = %q, want too_fast", label)
	}

	bands := config.Default().Analysis
	bands.Pace.FastWPM = 300
	application.ReloadAnalysis(bands)

	if label := runJob().Metrics["pace"].Label; label != "optimal" {
		t.Fatalf("pace label after reload = %q, want optimal", label)
	}
}
