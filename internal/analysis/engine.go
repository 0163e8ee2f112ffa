// Package analysis orchestrates the metrics pipeline: it derives shared
// measurements from the transcript, voice-activity and prosody inputs, fans
// the five metric builders out in parallel, and folds their results into one
// aggregate score.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/internal/analysis/pause"
	"github.com/orato-ai/orato/internal/analysis/textseg"
	"github.com/orato-ai/orato/internal/observe"
	"github.com/orato-ai/orato/pkg/provider/scorer"
	"github.com/orato-ai/orato/pkg/provider/vad"
	"github.com/orato-ai/orato/pkg/types"
)

// Metric names as they appear in the metrics map and in request payloads.
const (
	MetricPace             = "pace"
	MetricFillers          = "fillers"
	MetricIntonation       = "intonation"
	MetricPauseQuality     = "pause_quality"
	MetricContentStructure = "content_structure"
)

// AllMetrics lists every metric the engine can compute, in report order.
var AllMetrics = []string{
	MetricPace,
	MetricFillers,
	MetricIntonation,
	MetricPauseQuality,
	MetricContentStructure,
}

// Input is the read-only evidence one analysis run consumes. Words need not
// be sorted; the engine re-sorts by start time.
type Input struct {
	Words []types.WordToken

	// Transcript is the full text. When empty it is rebuilt by joining the
	// word tokens.
	Transcript string

	DurationSec float64

	// Speech holds the voice-activity speech intervals. Nil means no
	// detector ran; silence evidence then comes from word gaps alone.
	Speech []types.Interval

	Features types.FeatureSummary

	// Requested restricts which metrics run. Empty means all.
	Requested []string
}

// Result is one complete analysis outcome.
type Result struct {
	Metrics  map[string]types.MetricResult
	Timeline []types.TimelineEvent
	Overall  types.OverallScore
}

// Engine runs analyses. It is immutable after construction and safe for
// concurrent use.
type Engine struct {
	cfg       metric.Config
	signposts *textseg.Matcher
	scorer    scorer.Source
	metrics   *observe.Metrics
	log       *slog.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithScorer attaches a supplementary pace score source. Without one the
// pace metric stays purely rule-based.
func WithScorer(s scorer.Source) Option { return func(e *Engine) { e.scorer = s } }

// WithMetrics sets the telemetry instruments. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// New builds an Engine with the given thresholds.
func New(cfg metric.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		signposts: textseg.NewMatcher(),
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// Analyze runs every requested metric over the input and aggregates the
// results. Metrics run concurrently over shared read-only measurements; a
// panic in one metric abstains that metric and never aborts its siblings.
func (e *Engine) Analyze(in Input) Result {
	words := types.SortWordsByStart(in.Words)

	transcript := in.Transcript
	if transcript == "" {
		transcript = JoinWords(words)
	}

	wordGaps := pause.WordGaps(words, e.cfg.Pauses.MinWordGapSec)

	var silences []types.PauseCandidate
	if len(in.Speech) > 0 {
		for _, iv := range vad.SilenceGaps(in.Speech, in.DurationSec, vad.DefaultMinSilence) {
			silences = append(silences, types.PauseCandidate{
				Interval: iv,
				Source:   types.SourceVoiceActivity,
			})
		}
	}

	speechRatio := in.Features.SpeechRatio
	if speechRatio == 0 && len(in.Speech) > 0 {
		speechRatio = vad.SpeechRatio(in.Speech, in.DurationSec)
	}

	requested := in.Requested
	if len(requested) == 0 {
		requested = AllMetrics
	}

	type outcome struct {
		name   string
		result types.MetricResult
		events []types.TimelineEvent
	}
	outcomes := make([]outcome, len(requested))

	ctx := context.Background()

	var g errgroup.Group
	for i, name := range requested {
		outcomes[i].name = name
		out := &outcomes[i]
		g.Go(func() error {
			start := time.Now()
			defer func() {
				e.metrics.RecordMetricDuration(ctx, out.name, time.Since(start).Seconds())
				if out.result.Abstained {
					reason, _ := out.result.Details["reason"].(string)
					e.metrics.RecordAbstention(ctx, out.name, reason)
				}
			}()
			switch out.name {
			case MetricPace:
				out.result = e.guarded(out.name, func() types.MetricResult {
					return metric.ComputePace(metric.PaceInput{
						Words:       words,
						DurationSec: in.DurationSec,
						SpeechRatio: speechRatio,
						Scorer:      e.scorer,
					}, e.cfg)
				})
			case MetricFillers:
				out.result = e.guarded(out.name, func() types.MetricResult {
					return metric.ComputeFillers(words, in.DurationSec, e.cfg)
				})
			case MetricIntonation:
				out.result = e.guarded(out.name, func() types.MetricResult {
					return metric.ComputeIntonation(in.Features, e.cfg)
				})
			case MetricPauseQuality:
				out.result, out.events = e.guardedPauses(metric.PauseQualityInput{
					WordGaps:    wordGaps,
					Silences:    silences,
					DurationSec: in.DurationSec,
					Words:       words,
					Signposts:   e.signposts,
				})
			case MetricContentStructure:
				out.result = e.guarded(out.name, func() types.MetricResult {
					return metric.ComputeStructure(transcript, e.signposts, e.cfg)
				})
			default:
				e.log.Warn("unknown metric requested", "metric", out.name)
				out.result = types.Abstained("metric_not_implemented")
			}
			return nil
		})
	}
	_ = g.Wait() // metric goroutines never return errors

	res := Result{Metrics: make(map[string]types.MetricResult, len(outcomes))}
	for _, out := range outcomes {
		res.Metrics[out.name] = out.result
		res.Timeline = append(res.Timeline, out.events...)
	}
	res.Overall = Aggregate(res.Metrics)
	return res
}

// guarded runs one metric builder, converting a panic into an abstention.
func (e *Engine) guarded(name string, fn func() types.MetricResult) (res types.MetricResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("metric panicked", "metric", name, "panic", r)
			res = types.Abstained(fmt.Sprintf("metric_computation_failed: %v", r))
		}
	}()
	return fn()
}

func (e *Engine) guardedPauses(in metric.PauseQualityInput) (res types.MetricResult, events []types.TimelineEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("metric panicked", "metric", MetricPauseQuality, "panic", r)
			res = types.Abstained(fmt.Sprintf("metric_computation_failed: %v", r))
			events = nil
		}
	}()
	return metric.ComputePauseQuality(in, e.cfg)
}

// JoinWords rebuilds a plain transcript from word tokens.
func JoinWords(words []types.WordToken) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
