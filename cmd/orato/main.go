// Command orato runs the Orato speech analysis server: it accepts recorded
// presentations over HTTP, runs the analysis pipeline on background workers,
// and serves the resulting reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orato-ai/orato/internal/app"
	"github.com/orato-ai/orato/internal/config"
	"github.com/orato-ai/orato/internal/observe"
	"github.com/orato-ai/orato/internal/store"
	pgstore "github.com/orato-ai/orato/internal/store/postgres"
	sqlitestore "github.com/orato-ai/orato/internal/store/sqlite"
	"github.com/orato-ai/orato/pkg/provider/asr"
	asrmock "github.com/orato-ai/orato/pkg/provider/asr/mock"
	"github.com/orato-ai/orato/pkg/provider/asr/whisper"
	"github.com/orato-ai/orato/pkg/provider/features"
	"github.com/orato-ai/orato/pkg/provider/features/basic"
	featmock "github.com/orato-ai/orato/pkg/provider/features/mock"
	"github.com/orato-ai/orato/pkg/provider/scorer"
	scorermock "github.com/orato-ai/orato/pkg/provider/scorer/mock"
	"github.com/orato-ai/orato/pkg/provider/scorer/onnx"
	"github.com/orato-ai/orato/pkg/provider/vad"
	"github.com/orato-ai/orato/pkg/provider/vad/energy"
	vadmock "github.com/orato-ai/orato/pkg/provider/vad/mock"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "orato.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger, logLevel := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)
	slog.Info("orato starting", "version", app.Version, "listen", cfg.Server.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: app.Version,
	})
	if err != nil {
		slog.Error("init telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObserve(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("build providers", "err", err)
		return 1
	}

	application, err := app.New(ctx, cfg, providers, reg)
	if err != nil {
		slog.Error("wire application", "err", err)
		return 1
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			slog.Warn("shutdown", "err", err)
		}
	}()

	// Hot-reload the cheap config sections; warn when a change needs a
	// restart to take effect.
	watcher, err := config.NewWatcher(*configPath, func(old, updated *config.Config) {
		diff := config.Diff(old, updated)
		if diff.LogLevelChanged {
			logLevel.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level updated", "level", diff.NewLogLevel)
		}
		if diff.AnalysisChanged {
			application.ReloadAnalysis(updated.Analysis)
			slog.Info("analysis thresholds reloaded")
		}
		if len(diff.RestartNeeded) > 0 {
			slog.Warn("config changes need a restart to apply", "sections", diff.RestartNeeded)
		}
	})
	if err != nil {
		slog.Warn("config watcher unavailable", "err", err)
	} else {
		defer watcher.Stop()
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server exited", "err", err)
		return 1
	}

	slog.Info("orato stopped")
	return 0
}

// registerBuiltinProviders wires every provider implementation shipped with
// the binary into the registry. External builds can register additional
// providers before calling buildProviders.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterASR("whisper", func(entry config.ProviderEntry) (asr.Transcriber, error) {
		var opts []whisper.Option
		if entry.Language != "" {
			opts = append(opts, whisper.WithLanguage(entry.Language))
		}
		return whisper.New(entry.ModelPath, opts...)
	})
	reg.RegisterASR("mock", func(config.ProviderEntry) (asr.Transcriber, error) {
		return &asrmock.Transcriber{}, nil
	})

	reg.RegisterVAD("energy", func(config.ProviderEntry) (vad.Detector, error) {
		return energy.New(), nil
	})
	reg.RegisterVAD("mock", func(config.ProviderEntry) (vad.Detector, error) {
		return &vadmock.Detector{}, nil
	})

	reg.RegisterFeatures("basic", func(config.ProviderEntry) (features.Extractor, error) {
		return basic.New(), nil
	})
	reg.RegisterFeatures("mock", func(config.ProviderEntry) (features.Extractor, error) {
		return &featmock.Extractor{}, nil
	})

	reg.RegisterScorer("onnx", func(entry config.ProviderEntry) (scorer.Source, error) {
		var opts []onnx.Option
		if lib, ok := entry.Options["library_path"].(string); ok && lib != "" {
			opts = append(opts, onnx.WithLibraryPath(lib))
		}
		if raw, ok := entry.Options["feature_order"].([]any); ok {
			var names []string
			for _, v := range raw {
				if s, ok := v.(string); ok {
					names = append(names, s)
				}
			}
			if len(names) > 0 {
				opts = append(opts, onnx.WithFeatureOrder(names...))
			}
		}
		return onnx.New(entry.ModelPath, opts...)
	})
	reg.RegisterScorer("mock", func(config.ProviderEntry) (scorer.Source, error) {
		return &scorermock.Scorer{Value: 0.5}, nil
	})

	reg.RegisterStore(config.StoreSQLite, func(cfg config.StoreConfig) (store.Store, error) {
		return sqlitestore.New(cfg.Path)
	})
	reg.RegisterStore(config.StorePostgres, func(cfg config.StoreConfig) (store.Store, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return pgstore.New(ctx, cfg.PostgresDSN)
	})
}

// buildProviders instantiates the providers the config names. The ASR slot
// is mandatory; the others default to nil when no name is configured.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	p := &app.Providers{}
	var err error

	if cfg.Providers.ASR.Name == "" {
		return nil, fmt.Errorf("providers.asr.name is required")
	}
	if p.ASR, err = reg.CreateASR(cfg.Providers.ASR); err != nil {
		return nil, fmt.Errorf("asr: %w", err)
	}
	if cfg.Providers.VAD.Name != "" {
		if p.VAD, err = reg.CreateVAD(cfg.Providers.VAD); err != nil {
			return nil, fmt.Errorf("vad: %w", err)
		}
	}
	if cfg.Providers.Features.Name != "" {
		if p.Features, err = reg.CreateFeatures(cfg.Providers.Features); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
	}
	if cfg.Providers.Scorer.Name != "" {
		if p.Scorer, err = reg.CreateScorer(cfg.Providers.Scorer); err != nil {
			return nil, fmt.Errorf("scorer: %w", err)
		}
	}
	return p, nil
}

// newLogger builds the process logger. The returned LevelVar lets the
// config watcher adjust verbosity without a restart.
func newLogger(level config.LogLevel) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(slogLevel(level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})), lv
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
