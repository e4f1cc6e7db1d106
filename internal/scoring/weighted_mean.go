package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

const (
	weightedMeanMinSubjects = 4
	percentMaxScore         = 100

	methodologyWeightedMean = "Composite percentage: weighted mean of marks, weights set by program category"
)

// WeightedMeanStrategy computes a category-weighted mean of raw marks.
type WeightedMeanStrategy struct {
	exclusions subject.Exclusions
	weights    map[ProgramCategory]WeightSet
}

// NewWeightedMeanStrategy creates a WeightedMeanStrategy. A nil weights map
// uses DefaultCategoryWeights. Every set must validate, and the general
// category must be present since unknown categories fall back to it.
func NewWeightedMeanStrategy(ex subject.Exclusions, weights map[ProgramCategory]WeightSet) (*WeightedMeanStrategy, error) {
	if weights == nil {
		weights = DefaultCategoryWeights()
	}
	if _, ok := weights[CategoryGeneral]; !ok {
		return nil, fmt.Errorf("weights for category %q are required", CategoryGeneral)
	}
	for cat, ws := range weights {
		if err := ws.Validate(); err != nil {
			return nil, fmt.Errorf("weights for category %q: %w", cat, err)
		}
	}
	return &WeightedMeanStrategy{exclusions: ex, weights: weights}, nil
}

// MaxScore implements Strategy.
func (s *WeightedMeanStrategy) MaxScore() int { return percentMaxScore }

// Score implements Strategy.
func (s *WeightedMeanStrategy) Score(results []subject.Result, opts Options) InstitutionScore {
	contributing := s.exclusions.Contributing(results)
	if len(contributing) < weightedMeanMinSubjects {
		return insufficient(methodologyWeightedMean, percentMaxScore, weightedMeanMinSubjects, len(contributing))
	}

	category := opts.Category
	if category == "" {
		category = CategoryGeneral
	}
	ws, ok := s.weights[category]
	if !ok {
		category = CategoryGeneral
		ws = s.weights[CategoryGeneral]
	}

	var weighted, totalWeight float64
	for _, r := range contributing {
		w := ws.For(r.Name)
		weighted += float64(r.RawMark) * w
		totalWeight += w
	}

	score := roundHalfUp(weighted / totalWeight)

	return InstitutionScore{
		Score:       score,
		MaxScore:    percentMaxScore,
		Methodology: methodologyWeightedMean,
		Status:      StatusOK,
		Explanation: fmt.Sprintf("%d%% weighted average over %d subjects using %s weighting.", score, len(contributing), category),
	}
}
