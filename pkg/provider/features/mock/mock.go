// Package mock provides a scripted [features.Extractor] for tests.
package mock

import (
	"context"

	"github.com/orato-ai/orato/pkg/provider/features"
	"github.com/orato-ai/orato/pkg/types"
)

var _ features.Extractor = (*Extractor)(nil)

// Extractor returns canned results regardless of input.
type Extractor struct {
	Summary types.FeatureSummary
	Err     error
}

func (e *Extractor) Name() string { return "mock" }

func (e *Extractor) Extract(ctx context.Context, _ []float32, _ int) (types.FeatureSummary, error) {
	if err := ctx.Err(); err != nil {
		return types.FeatureSummary{}, err
	}
	return e.Summary, e.Err
}
