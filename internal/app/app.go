// Package app wires all Orato subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the server and job workers, and Shutdown tears
// everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithMetrics). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/analysis/metric"
	"github.com/orato-ai/orato/internal/config"
	"github.com/orato-ai/orato/internal/jobs"
	"github.com/orato-ai/orato/internal/observe"
	"github.com/orato-ai/orato/internal/server"
	"github.com/orato-ai/orato/internal/store"
	"github.com/orato-ai/orato/pkg/provider/asr"
	"github.com/orato-ai/orato/pkg/provider/features"
	"github.com/orato-ai/orato/pkg/provider/scorer"
	"github.com/orato-ai/orato/pkg/provider/vad"
)

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go via the config registry.
type Providers struct {
	ASR      asr.Transcriber
	VAD      vad.Detector
	Features features.Extractor
	Scorer   scorer.Source
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers
	metrics   *observe.Metrics

	store   store.Store
	manager *jobs.Manager
	server  *server.Server

	// engineMu guards engine so analysis thresholds can be hot-reloaded.
	engineMu sync.RWMutex
	engine   *analysis.Engine

	// closers are called in reverse order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a report store instead of creating one from config.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithMetrics injects a metrics instance instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
func New(ctx context.Context, cfg *config.Config, providers *Providers, reg *config.Registry, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if a.store == nil {
		st, err := reg.CreateStore(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("app: create store: %w", err)
		}
		a.store = st
		a.closers = append(a.closers, st.Close)
	}

	a.engine = buildEngine(cfg, providers, a.metrics)

	a.manager = jobs.NewManager(jobs.ManagerConfig{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
		Timeout:   time.Duration(cfg.Jobs.TimeoutSec) * time.Second,
		Store:     a.store,
		Run:       a.runPipeline,
		Metrics:   a.metrics,
	})

	a.server = server.New(cfg.Server, a.manager, a.store,
		server.WithMetrics(a.metrics),
		server.WithUploadDir(cfg.Jobs.UploadDir))

	return a, nil
}

// buildEngine assembles the analysis engine from the configured thresholds,
// the telemetry instruments, and the optional supplementary scorer.
func buildEngine(cfg *config.Config, providers *Providers, m *observe.Metrics) *analysis.Engine {
	engineOpts := []analysis.Option{analysis.WithMetrics(m)}
	if providers.Scorer != nil {
		engineOpts = append(engineOpts, analysis.WithScorer(providers.Scorer))
	}
	return analysis.New(cfg.Analysis, engineOpts...)
}

// Manager exposes the job manager, mainly for tests.
func (a *App) Manager() *jobs.Manager { return a.manager }

// currentEngine returns the engine new jobs should analyze with.
func (a *App) currentEngine() *analysis.Engine {
	a.engineMu.RLock()
	defer a.engineMu.RUnlock()
	return a.engine
}

// ReloadAnalysis swaps in an engine built from new threshold bands. Jobs
// submitted afterwards use the new bands; running jobs finish on the old.
func (a *App) ReloadAnalysis(bands metric.Config) {
	cfg := *a.cfg
	cfg.Analysis = bands
	eng := buildEngine(&cfg, a.providers, a.metrics)

	a.engineMu.Lock()
	a.engine = eng
	a.engineMu.Unlock()
}

// Run starts the job workers and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.manager.Start(ctx)
	return a.server.Run(ctx)
}

// Shutdown stops the workers and releases all subsystem resources.
func (a *App) Shutdown() error {
	var errs []error
	a.stopOnce.Do(func() {
		a.manager.Stop()
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](); err != nil {
				slog.Warn("app: closer error", "index", i, "err", err)
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
