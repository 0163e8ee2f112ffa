package analysis

import (
	"math"
	"sort"

	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/pkg/types"
)

// Job states as exposed through the API.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// RequestInput echoes the analysis request back in the report.
type RequestInput struct {
	AudioURL         string         `json:"audio_url"`
	VideoURL         *string        `json:"video_url"`
	Language         string         `json:"language"`
	TalkType         string         `json:"talk_type"`
	AudienceType     string         `json:"audience_type"`
	RequestedMetrics []string       `json:"requested_metrics"`
	UserMetadata     map[string]any `json:"user_metadata"`
	DurationSec      float64        `json:"duration_sec"`
}

// QualityFlags summarizes input quality so the frontend can caveat results.
type QualityFlags struct {
	ASRConfidence        float64 `json:"asr_confidence"`
	MicQuality           string  `json:"mic_quality"`
	BackgroundNoiseLevel string  `json:"background_noise_level"`
	AbstainReason        *string `json:"abstain_reason"`
}

// TranscriptSegment is one contiguous transcript span.
type TranscriptSegment struct {
	StartSec      float64 `json:"start_sec"`
	EndSec        float64 `json:"end_sec"`
	Text          string  `json:"text"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// TranscriptToken is one word with timing and filler flag.
type TranscriptToken struct {
	Text     string  `json:"text"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	IsFiller bool    `json:"is_filler"`
}

// Transcript is the transcript block shared by the full report and the
// transcript endpoint.
type Transcript struct {
	FullText string              `json:"full_text"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
	Tokens   []TranscriptToken   `json:"tokens"`
}

// ModelMetadata records which models produced the analysis.
type ModelMetadata struct {
	ASRModel      string `json:"asr_model"`
	VADModel      string `json:"vad_model"`
	FeaturesModel string `json:"features_model"`
	Version       string `json:"version"`
}

// Report is the complete analysis response for one job.
type Report struct {
	JobID         string                        `json:"job_id"`
	Status        string                        `json:"status"`
	Input         RequestInput                  `json:"input"`
	QualityFlags  QualityFlags                  `json:"quality_flags"`
	OverallScore  types.OverallScore            `json:"overall_score"`
	Metrics       map[string]types.MetricResult `json:"metrics"`
	Timeline      []types.TimelineEvent         `json:"timeline"`
	ModelMetadata ModelMetadata                 `json:"model_metadata"`
	Transcript    Transcript                    `json:"transcript"`
}

// BuildReport assembles the full response from the engine result plus the
// raw evidence the engine consumed.
func BuildReport(jobID string, req RequestInput, in Input, res Result, models ModelMetadata) Report {
	req.DurationSec = in.DurationSec

	sort.Slice(res.Timeline, func(i, j int) bool {
		return res.Timeline[i].StartSec < res.Timeline[j].StartSec
	})

	return Report{
		JobID:         jobID,
		Status:        StatusDone,
		Input:         req,
		QualityFlags:  BuildQualityFlags(in.Words, in.Features),
		OverallScore:  res.Overall,
		Metrics:       res.Metrics,
		Timeline:      res.Timeline,
		ModelMetadata: models,
		Transcript:    BuildTranscript(in.Words, req.Language),
	}
}

// BuildQualityFlags derives the input-quality block: average word confidence,
// a microphone heuristic from the energy statistics, and a combined abstain
// hint when confidence or speech coverage is very low.
func BuildQualityFlags(words []types.WordToken, features types.FeatureSummary) QualityFlags {
	var confSum float64
	confCount := 0
	for _, w := range words {
		if w.Confidence > 0 {
			confSum += w.Confidence
			confCount++
		}
	}
	asrConfidence := 0.0
	if confCount > 0 {
		asrConfidence = confSum / float64(confCount)
	}

	noiseDBFS, haveNoise := noiseFloorDBFS(features.RawEnergy)

	micQuality := "unknown"
	background := "unknown"
	if haveNoise {
		switch {
		case features.MeanEnergy < 0.001:
			micQuality = "very_quiet"
		case noiseDBFS > -30:
			micQuality = "noisy"
		default:
			micQuality = "ok"
		}
		switch {
		case noiseDBFS < -60:
			background = "low"
		case noiseDBFS < -40:
			background = "medium"
		default:
			background = "high"
		}
	}

	var abstain *string
	lowConf := asrConfidence < 0.5
	lowSpeech := features.SpeechRatio < 0.3
	switch {
	case lowConf && lowSpeech:
		abstain = strPtr("low_asr_and_speech_ratio")
	case lowSpeech:
		abstain = strPtr("low_speech_ratio")
	case lowConf:
		abstain = strPtr("low_asr_confidence")
	}

	return QualityFlags{
		ASRConfidence:        asrConfidence,
		MicQuality:           micQuality,
		BackgroundNoiseLevel: background,
		AbstainReason:        abstain,
	}
}

// BuildTranscript assembles the transcript block: one whole-talk segment plus
// word-level tokens with filler flags.
func BuildTranscript(words []types.WordToken, language string) Transcript {
	if language == "" {
		language = "en"
	}
	if len(words) == 0 {
		return Transcript{Language: language, Segments: []TranscriptSegment{}, Tokens: []TranscriptToken{}}
	}

	sorted := types.SortWordsByStart(words)
	fullText := JoinWords(sorted)

	var confSum float64
	confCount := 0
	tokens := make([]TranscriptToken, 0, len(sorted))
	for _, w := range sorted {
		if w.Confidence > 0 {
			confSum += w.Confidence
			confCount++
		}
		tokens = append(tokens, TranscriptToken{
			Text:     w.Text,
			StartSec: w.Start,
			EndSec:   w.End,
			IsFiller: metric.IsFillerToken(w.Text),
		})
	}
	avgConf := 0.0
	if confCount > 0 {
		avgConf = confSum / float64(confCount)
	}

	return Transcript{
		FullText: fullText,
		Language: language,
		Segments: []TranscriptSegment{{
			StartSec:      sorted[0].Start,
			EndSec:        sorted[len(sorted)-1].End,
			Text:          fullText,
			AvgConfidence: avgConf,
		}},
		Tokens: tokens,
	}
}

// noiseFloorDBFS estimates the noise floor as the 20th-percentile frame RMS
// expressed in dBFS.
func noiseFloorDBFS(energy []float64) (float64, bool) {
	if len(energy) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), energy...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * 0.20)
	floor := sorted[idx]
	if floor <= 1e-12 {
		return -100, true
	}
	return 20 * math.Log10(floor), true
}

func strPtr(s string) *string { return &s }
