// Package onnx runs a pace regression model through ONNX Runtime. The model
// takes a fixed-order feature vector and emits a single quality score in
// [0, 1] that the pace metric blends with its rule-based score.
package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/orato-ai/orato/pkg/provider/scorer"
)

var _ scorer.Source = (*Scorer)(nil)

var (
	initOnce sync.Once
	initErr  error
)

// Scorer holds a loaded ONNX session. Calls to Score are serialized because
// the underlying session reuses its input tensor.
type Scorer struct {
	mu       sync.Mutex
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	features []string
}

// Option configures a [Scorer].
type Option func(*opts)

type opts struct {
	libraryPath string
	inputName   string
	outputName  string
	features    []string
}

// WithLibraryPath sets the path to the onnxruntime shared library. Without
// it the runtime's default lookup applies.
func WithLibraryPath(p string) Option { return func(o *opts) { o.libraryPath = p } }

// WithTensorNames overrides the model's input and output tensor names.
// Defaults: "features" and "score".
func WithTensorNames(in, out string) Option {
	return func(o *opts) { o.inputName, o.outputName = in, out }
}

// WithFeatureOrder sets the names and order of features fed to the model.
func WithFeatureOrder(names ...string) Option { return func(o *opts) { o.features = names } }

// DefaultFeatureOrder is the feature vector layout models are trained
// against. These are exactly the keys the pace metric supplies to
// [scorer.Source.Score].
var DefaultFeatureOrder = []string{"overall_wpm", "mean_pause", "pause_ratio", "speech_ratio"}

// New loads the model at modelPath and prepares a reusable session.
func New(modelPath string, options ...Option) (*Scorer, error) {
	o := opts{
		inputName:  "features",
		outputName: "score",
		features:   DefaultFeatureOrder,
	}
	for _, opt := range options {
		opt(&o)
	}

	initOnce.Do(func() {
		if o.libraryPath != "" {
			ort.SetSharedLibraryPath(o.libraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("onnx scorer: initialize runtime: %w", initErr)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(o.features))), make([]float32, len(o.features)))
	if err != nil {
		return nil, fmt.Errorf("onnx scorer: create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("onnx scorer: create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{o.inputName}, []string{o.outputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("onnx scorer: create session for %q: %w", modelPath, err)
	}

	return &Scorer{
		session:  session,
		input:    input,
		output:   output,
		features: o.features,
	}, nil
}

// Name implements [scorer.Source].
func (s *Scorer) Name() string { return "onnx-pace" }

// Score implements [scorer.Source]. Every configured feature must be present
// in the map; a missing one yields [scorer.ErrFeatureMissing].
func (s *Scorer) Score(feats map[string]float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.input.GetData()
	for i, name := range s.features {
		v, ok := feats[name]
		if !ok {
			return 0, fmt.Errorf("onnx scorer: feature %q: %w", name, scorer.ErrFeatureMissing)
		}
		data[i] = float32(v)
	}

	if err := s.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx scorer: run: %w", err)
	}

	v := float64(s.output.GetData()[0])
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v, nil
}

// Close releases the session and tensors.
func (s *Scorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	return nil
}
