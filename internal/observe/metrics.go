// Package observe provides application-wide observability primitives for
// Orato: OpenTelemetry metrics, structured logging helpers, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Orato metrics.
const meterName = "github.com/orato-ai/orato"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AnalysisDuration tracks full-pipeline analysis latency per job.
	AnalysisDuration metric.Float64Histogram

	// MetricDuration tracks the latency of a single metric builder.
	// Use with attribute.String("metric", ...).
	MetricDuration metric.Float64Histogram

	// TranscriptionDuration tracks ASR transcription latency.
	TranscriptionDuration metric.Float64Histogram

	// MetricAbstentions counts metric abstentions. Use with attributes:
	//   attribute.String("metric", ...), attribute.String("reason", ...)
	MetricAbstentions metric.Int64Counter

	// JobsCompleted counts finished jobs. Use with attribute:
	//   attribute.String("status", ...)
	JobsCompleted metric.Int64Counter

	// ActiveJobs tracks the number of jobs currently being processed.
	ActiveJobs metric.Int64UpDownCounter

	// QueuedJobs tracks the number of jobs waiting for a worker.
	QueuedJobs metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// batch analysis work rather than request serving.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalysisDuration, err = m.Float64Histogram("orato.analysis.duration",
		metric.WithDescription("Latency of one full analysis pipeline run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MetricDuration, err = m.Float64Histogram("orato.metric.duration",
		metric.WithDescription("Latency of a single metric builder by metric name."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("orato.transcription.duration",
		metric.WithDescription("Latency of ASR transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.MetricAbstentions, err = m.Int64Counter("orato.metric.abstentions",
		metric.WithDescription("Total metric abstentions by metric name and reason."),
	); err != nil {
		return nil, err
	}
	if met.JobsCompleted, err = m.Int64Counter("orato.jobs.completed",
		metric.WithDescription("Total finished jobs by terminal status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveJobs, err = m.Int64UpDownCounter("orato.jobs.active",
		metric.WithDescription("Number of jobs currently being processed."),
	); err != nil {
		return nil, err
	}
	if met.QueuedJobs, err = m.Int64UpDownCounter("orato.jobs.queued",
		metric.WithDescription("Number of jobs waiting for a worker."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("orato.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAbstention records one metric abstention with the standard attribute
// set.
func (m *Metrics) RecordAbstention(ctx context.Context, metricName, reason string) {
	m.MetricAbstentions.Add(ctx, 1,
		metric.WithAttributes(Attr("metric", metricName), Attr("reason", reason)),
	)
}

// RecordJobCompleted records one finished job with its terminal status.
func (m *Metrics) RecordJobCompleted(ctx context.Context, status string) {
	m.JobsCompleted.Add(ctx, 1, metric.WithAttributes(Attr("status", status)))
}

// RecordMetricDuration records one metric builder's run time in seconds.
func (m *Metrics) RecordMetricDuration(ctx context.Context, metricName string, seconds float64) {
	m.MetricDuration.Record(ctx, seconds,
		metric.WithAttributes(Attr("metric", metricName)),
	)
}
