package analysis

import (
	"math"

	"github.com/orato-ai/orato/pkg/types"
)

// Aggregate folds the per-metric results into one overall score: the
// confidence-weighted mean of every non-abstained metric score, with the
// overall confidence being the plain mean of the contributing confidences.
// When every metric abstained the result is {0, unknown, 0}.
func Aggregate(metrics map[string]types.MetricResult) types.OverallScore {
	var (
		weighted float64
		weight   float64
		confSum  float64
		n        int
	)
	for _, m := range metrics {
		if m.Abstained || m.Score == nil || m.Confidence <= 0 {
			continue
		}
		weighted += float64(*m.Score) * m.Confidence
		weight += m.Confidence
		confSum += m.Confidence
		n++
	}
	if n == 0 {
		return types.OverallScore{Score: 0, Label: types.OverallUnknown, Confidence: 0}
	}

	score := int(math.Round(weighted / weight))
	return types.OverallScore{
		Score:      score,
		Label:      overallLabel(score),
		Confidence: confSum / float64(n),
	}
}

func overallLabel(score int) types.OverallLabel {
	switch {
	case score >= 85:
		return types.OverallExcellent
	case score >= 70:
		return types.OverallGood
	case score >= 50:
		return types.OverallNeedsImprovement
	default:
		return types.OverallPoor
	}
}
