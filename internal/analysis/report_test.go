package analysis_test

import (
	"testing"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/pkg/types"
)

func TestBuildQualityFlags_CleanRecording(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "good", Start: 0, End: 0.3, Confidence: 0.95},
		{Text: "talk", Start: 0.4, End: 0.7, Confidence: 0.85},
	}
	features := types.FeatureSummary{
		MeanEnergy:  0.05,
		SpeechRatio: 0.8,
		RawEnergy:   []float64{0.0005, 0.001, 0.04, 0.05, 0.06},
	}
	flags := analysis.BuildQualityFlags(words, features)

	if flags.ASRConfidence != 0.9 {
		t.Errorf("asr_confidence = %v, want 0.9", flags.ASRConfidence)
	}
	if flags.AbstainReason != nil {
		t.Errorf("abstain_reason = %v, want nil", *flags.AbstainReason)
	}
	if flags.MicQuality != "ok" {
		t.Errorf("mic_quality = %q, want ok", flags.MicQuality)
	}
	// 20th-percentile frame RMS 0.0005 is about -66 dBFS.
	if flags.BackgroundNoiseLevel != "low" {
		t.Errorf("background_noise_level = %q, want low", flags.BackgroundNoiseLevel)
	}
}

func TestBuildQualityFlags_AbstainReasons(t *testing.T) {
	t.Parallel()
	lowConfWords := []types.WordToken{{Text: "mumble", Start: 0, End: 1, Confidence: 0.3}}

	flags := analysis.BuildQualityFlags(lowConfWords, types.FeatureSummary{SpeechRatio: 0.8})
	if flags.AbstainReason == nil || *flags.AbstainReason != "low_asr_confidence" {
		t.Errorf("low confidence: abstain = %v", flags.AbstainReason)
	}

	goodWords := []types.WordToken{{Text: "ok", Start: 0, End: 1, Confidence: 0.9}}
	flags = analysis.BuildQualityFlags(goodWords, types.FeatureSummary{SpeechRatio: 0.1})
	if flags.AbstainReason == nil || *flags.AbstainReason != "low_speech_ratio" {
		t.Errorf("low speech ratio: abstain = %v", flags.AbstainReason)
	}

	flags = analysis.BuildQualityFlags(lowConfWords, types.FeatureSummary{SpeechRatio: 0.1})
	if flags.AbstainReason == nil || *flags.AbstainReason != "low_asr_and_speech_ratio" {
		t.Errorf("both low: abstain = %v", flags.AbstainReason)
	}
}

func TestBuildQualityFlags_NoEnergySeries(t *testing.T) {
	t.Parallel()
	flags := analysis.BuildQualityFlags(nil, types.FeatureSummary{SpeechRatio: 0.8})
	if flags.MicQuality != "unknown" || flags.BackgroundNoiseLevel != "unknown" {
		t.Errorf("without frame energy: mic=%q noise=%q, want unknown/unknown",
			flags.MicQuality, flags.BackgroundNoiseLevel)
	}
	if flags.ASRConfidence != 0 {
		t.Errorf("asr_confidence = %v, want 0 without words", flags.ASRConfidence)
	}
}

func TestBuildTranscript_Assembly(t *testing.T) {
	t.Parallel()
	words := []types.WordToken{
		{Text: "today", Start: 1.0, End: 1.4, Confidence: 0.9},
		{Text: "um", Start: 0.2, End: 0.5, Confidence: 0.7}, // out of order on purpose
		{Text: "hello", Start: 0.0, End: 0.2, Confidence: 0.8},
	}
	tr := analysis.BuildTranscript(words, "")

	if tr.Language != "en" {
		t.Errorf("language = %q, want the en default", tr.Language)
	}
	if tr.FullText != "hello um today" {
		t.Errorf("full_text = %q, want sorted join", tr.FullText)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("expected one whole-talk segment, got %d", len(tr.Segments))
	}
	seg := tr.Segments[0]
	if seg.StartSec != 0.0 || seg.EndSec != 1.4 {
		t.Errorf("segment = [%v,%v], want [0,1.4]", seg.StartSec, seg.EndSec)
	}
	if len(tr.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tr.Tokens))
	}
	if !tr.Tokens[1].IsFiller {
		t.Error("'um' token should be flagged as filler")
	}
	if tr.Tokens[0].IsFiller || tr.Tokens[2].IsFiller {
		t.Error("content tokens must not be flagged as fillers")
	}
}

func TestBuildTranscript_Empty(t *testing.T) {
	t.Parallel()
	tr := analysis.BuildTranscript(nil, "de")
	if tr.Language != "de" {
		t.Errorf("language = %q, want de", tr.Language)
	}
	if tr.Segments == nil || tr.Tokens == nil {
		t.Error("empty transcript must keep empty (not nil) slices for JSON")
	}
}

func TestBuildReport_AssemblesAndSortsTimeline(t *testing.T) {
	t.Parallel()
	e := analysis.New(metric.DefaultConfig())
	in := analysis.Input{
		Words:       talkWords(),
		DurationSec: 60,
		Speech: []types.Interval{
			{Start: 0.5, End: 20}, {Start: 22, End: 40}, {Start: 41.5, End: 59.5},
		},
		Features: types.FeatureSummary{DurationSec: 60, SpeechRatio: 0.9},
	}
	res := e.Analyze(in)

	req := analysis.RequestInput{Language: "en", TalkType: "conference"}
	report := analysis.BuildReport("job-1", req, in, res, analysis.ModelMetadata{
		ASRModel: "mock", Version: "test",
	})

	if report.JobID != "job-1" || report.Status != analysis.StatusDone {
		t.Errorf("header = %q/%q, want job-1/done", report.JobID, report.Status)
	}
	if report.Input.DurationSec != 60 {
		t.Errorf("input duration = %v, want the measured 60", report.Input.DurationSec)
	}
	for i := 1; i < len(report.Timeline); i++ {
		if report.Timeline[i].StartSec < report.Timeline[i-1].StartSec {
			t.Fatalf("timeline not sorted by start: %+v", report.Timeline)
		}
	}
	if report.Transcript.FullText == "" {
		t.Error("report transcript missing")
	}
	if report.ModelMetadata.ASRModel != "mock" {
		t.Errorf("model metadata = %+v", report.ModelMetadata)
	}
}
