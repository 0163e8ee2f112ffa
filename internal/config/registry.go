package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/orato-ai/orato/internal/store"
	"github.com/orato-ai/orato/pkg/provider/asr"
	"github.com/orato-ai/orato/pkg/provider/features"
	"github.com/orato-ai/orato/pkg/provider/scorer"
	"github.com/orato-ai/orato/pkg/provider/vad"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	asr      map[string]func(ProviderEntry) (asr.Transcriber, error)
	vad      map[string]func(ProviderEntry) (vad.Detector, error)
	features map[string]func(ProviderEntry) (features.Extractor, error)
	scorer   map[string]func(ProviderEntry) (scorer.Source, error)
	store    map[StoreBackend]func(StoreConfig) (store.Store, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		asr:      make(map[string]func(ProviderEntry) (asr.Transcriber, error)),
		vad:      make(map[string]func(ProviderEntry) (vad.Detector, error)),
		features: make(map[string]func(ProviderEntry) (features.Extractor, error)),
		scorer:   make(map[string]func(ProviderEntry) (scorer.Source, error)),
		store:    make(map[StoreBackend]func(StoreConfig) (store.Store, error)),
	}
}

// RegisterASR registers a transcriber factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterASR(name string, factory func(ProviderEntry) (asr.Transcriber, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asr[name] = factory
}

// RegisterVAD registers a voice-activity detector factory under name.
func (r *Registry) RegisterVAD(name string, factory func(ProviderEntry) (vad.Detector, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vad[name] = factory
}

// RegisterFeatures registers a feature extractor factory under name.
func (r *Registry) RegisterFeatures(name string, factory func(ProviderEntry) (features.Extractor, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[name] = factory
}

// RegisterScorer registers a score source factory under name.
func (r *Registry) RegisterScorer(name string, factory func(ProviderEntry) (scorer.Source, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorer[name] = factory
}

// RegisterStore registers a report store factory under backend.
func (r *Registry) RegisterStore(backend StoreBackend, factory func(StoreConfig) (store.Store, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[backend] = factory
}

// CreateASR instantiates a transcriber using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateASR(entry ProviderEntry) (asr.Transcriber, error) {
	r.mu.RLock()
	factory, ok := r.asr[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: asr/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateVAD instantiates a voice-activity detector using the factory
// registered under entry.Name.
func (r *Registry) CreateVAD(entry ProviderEntry) (vad.Detector, error) {
	r.mu.RLock()
	factory, ok := r.vad[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: vad/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateFeatures instantiates a feature extractor using the factory
// registered under entry.Name.
func (r *Registry) CreateFeatures(entry ProviderEntry) (features.Extractor, error) {
	r.mu.RLock()
	factory, ok := r.features[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: features/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateScorer instantiates a score source using the factory registered
// under entry.Name.
func (r *Registry) CreateScorer(entry ProviderEntry) (scorer.Source, error) {
	r.mu.RLock()
	factory, ok := r.scorer[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: scorer/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateStore instantiates a report store using the factory registered under
// cfg.Backend.
func (r *Registry) CreateStore(cfg StoreConfig) (store.Store, error) {
	r.mu.RLock()
	factory, ok := r.store[cfg.Backend]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: store/%q", ErrProviderNotRegistered, cfg.Backend)
	}
	return factory(cfg)
}
