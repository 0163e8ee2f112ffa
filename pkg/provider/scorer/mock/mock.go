// Package mock provides a scripted [scorer.Source] for tests.
package mock

import "github.com/orato-ai/orato/pkg/provider/scorer"

var _ scorer.Source = (*Scorer)(nil)

// Scorer returns a fixed value and optional error.
type Scorer struct {
	Value float64
	Err   error
	// Calls records the feature maps passed to Score.
	Calls []map[string]float64
}

func (s *Scorer) Name() string { return "mock" }

func (s *Scorer) Score(features map[string]float64) (float64, error) {
	s.Calls = append(s.Calls, features)
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Value, nil
}
