package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/orato-ai/orato/internal/analysis/metric"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"asr":      {"whisper", "mock"},
	"vad":      {"energy", "mock"},
	"features": {"basic", "mock"},
	"scorer":   {"onnx", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Store
	if !cfg.Store.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("store.backend %q is invalid; valid values: sqlite, postgres", cfg.Store.Backend))
	}
	if cfg.Store.Backend == StoreSQLite && cfg.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required when store.backend is sqlite"))
	}
	if cfg.Store.Backend == StorePostgres && cfg.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required when store.backend is postgres"))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("asr", cfg.Providers.ASR.Name)
	validateProviderName("vad", cfg.Providers.VAD.Name)
	validateProviderName("features", cfg.Providers.Features.Name)
	validateProviderName("scorer", cfg.Providers.Scorer.Name)

	if cfg.Providers.ASR.Name == "" {
		slog.Warn("no ASR provider configured; submitted jobs must carry a transcript")
	}
	if cfg.Providers.ASR.Name == "whisper" && cfg.Providers.ASR.ModelPath == "" {
		errs = append(errs, errors.New("providers.asr.model_path is required for the whisper provider"))
	}
	if cfg.Providers.Scorer.Name == "onnx" && cfg.Providers.Scorer.ModelPath == "" {
		errs = append(errs, errors.New("providers.scorer.model_path is required for the onnx provider"))
	}

	// Jobs
	if cfg.Jobs.Workers < 1 {
		errs = append(errs, fmt.Errorf("jobs.workers %d must be at least 1", cfg.Jobs.Workers))
	}
	if cfg.Jobs.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("jobs.queue_size %d must be at least 1", cfg.Jobs.QueueSize))
	}
	if cfg.Jobs.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("jobs.timeout_sec %d must not be negative", cfg.Jobs.TimeoutSec))
	}

	errs = append(errs, validateAnalysis(&cfg.Analysis)...)

	return errors.Join(errs...)
}

// validateAnalysis sanity-checks the metric threshold bands.
func validateAnalysis(a *metric.Config) []error {
	var errs []error

	if a.Pace.SlowWPM <= 0 || a.Pace.FastWPM <= a.Pace.SlowWPM {
		errs = append(errs, fmt.Errorf("analysis.pace: slow_wpm %.0f and fast_wpm %.0f must satisfy 0 < slow < fast", a.Pace.SlowWPM, a.Pace.FastWPM))
	}
	if a.Pace.SegmentLengthSec <= 0 {
		errs = append(errs, fmt.Errorf("analysis.pace.segment_length_sec %.1f must be positive", a.Pace.SegmentLengthSec))
	}
	if a.Fillers.LowPerMin < 0 || a.Fillers.HighPerMin < a.Fillers.LowPerMin {
		errs = append(errs, fmt.Errorf("analysis.fillers: low_per_min %.1f and high_per_min %.1f must satisfy 0 <= low <= high", a.Fillers.LowPerMin, a.Fillers.HighPerMin))
	}
	if a.Pauses.TooFewPerSec < 0 || a.Pauses.TooManyPerSec <= a.Pauses.TooFewPerSec {
		errs = append(errs, fmt.Errorf("analysis.pauses: too_few_per_sec %.2f and too_many_per_sec %.2f must satisfy 0 <= few < many", a.Pauses.TooFewPerSec, a.Pauses.TooManyPerSec))
	}
	if a.Structure.LongSentenceTokens <= 0 {
		errs = append(errs, fmt.Errorf("analysis.structure.long_sentence_tokens %d must be positive", a.Structure.LongSentenceTokens))
	}
	return errs
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
