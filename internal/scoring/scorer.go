package scoring

import (
	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

// Institution ids with a non-standard admission formula.
const (
	InstitutionUCT   = "uct"
	InstitutionWits  = "wits"
	InstitutionSU    = "sun"
	InstitutionRU    = "ru"
	InstitutionUNISA = "unisa"
)

// UNISAMinimumMark is the per-subject floor the UNISA average reports against.
const UNISAMinimumMark = 50

// Target identifies the institution a score is computed for.
type Target struct {
	ID   string
	Name string
}

// Scorer picks the strategy for an institution, falling back to the standard score.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	strategies map[string]Strategy
	fallback   Strategy
	exclusions subject.Exclusions
}

// NewScorer creates a Scorer with the given per-institution strategies.
func NewScorer(ex subject.Exclusions, strategies map[string]Strategy) *Scorer {
	if strategies == nil {
		strategies = map[string]Strategy{}
	}
	return &Scorer{
		strategies: strategies,
		fallback:   NewStandardStrategy(ex),
		exclusions: ex,
	}
}

// DefaultStrategies returns the built-in institution formulas.
func DefaultStrategies(ex subject.Exclusions) map[string]Strategy {
	wits, err := NewWeightedMeanStrategy(ex, nil)
	if err != nil {
		panic(err)
	}
	return map[string]Strategy{
		InstitutionUCT:   NewTopSixStrategy(ex),
		InstitutionWits:  wits,
		InstitutionSU:    NewCompositeStrategy(ex),
		InstitutionRU:    NewMeanStrategy(ex),
		InstitutionUNISA: NewMeanWithFloorStrategy(ex, UNISAMinimumMark),
	}
}

// NewDefaultScorer creates a Scorer with DefaultStrategies.
func NewDefaultScorer(ex subject.Exclusions) *Scorer {
	return NewScorer(ex, DefaultStrategies(ex))
}

// UsesCustomScoring reports whether the institution has its own formula.
func (s *Scorer) UsesCustomScoring(institutionID string) bool {
	_, ok := s.strategies[institutionID]
	return ok
}

// Strategy returns the strategy for an institution.
func (s *Scorer) Strategy(institutionID string) Strategy {
	if st, ok := s.strategies[institutionID]; ok {
		return st
	}
	return s.fallback
}

// MaxScore returns the top of the institution's score scale.
func (s *Scorer) MaxScore(institutionID string) int {
	return s.Strategy(institutionID).MaxScore()
}

// Standard returns the national point score for results.
func (s *Scorer) Standard(results []subject.Result) int {
	return StandardScore(results, s.exclusions)
}

// ScoreInstitution runs the institution's strategy and stamps the result with its identity.
func (s *Scorer) ScoreInstitution(t Target, results []subject.Result, opts Options) InstitutionScore {
	res := s.Strategy(t.ID).Score(results, opts)
	res.InstitutionID = t.ID
	res.InstitutionName = t.Name
	return res
}

// ScoreAll scores every target in order.
func (s *Scorer) ScoreAll(targets []Target, results []subject.Result, opts Options) []InstitutionScore {
	out := make([]InstitutionScore, 0, len(targets))
	for _, t := range targets {
		out = append(out, s.ScoreInstitution(t, results, opts))
	}
	return out
}
