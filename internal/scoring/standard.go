package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

// StandardMaxScore is the highest achievable national point score (six subjects at level 7).
const StandardMaxScore = 42

const methodologyStandard = "Admission Point Score: sum of 1-7 level points over contributing subjects"

// StandardScore sums level points over contributing subjects. It is best-effort
// on partial input; admission readiness is checked separately with
// subject.CheckAdmission.
func StandardScore(results []subject.Result, ex subject.Exclusions) int {
	var total int
	for _, r := range ex.Contributing(results) {
		if r.LevelPoints() < 0 {
			continue
		}
		total += r.LevelPoints()
	}
	return total
}

// StandardStrategy re-expresses the standard score as an institution score.
type StandardStrategy struct {
	exclusions subject.Exclusions
}

// NewStandardStrategy creates the default strategy.
func NewStandardStrategy(ex subject.Exclusions) *StandardStrategy {
	return &StandardStrategy{exclusions: ex}
}

func (s *StandardStrategy) MaxScore() int { return StandardMaxScore }

// Score implements Strategy.
func (s *StandardStrategy) Score(results []subject.Result, _ Options) InstitutionScore {
	total := StandardScore(results, s.exclusions)
	counted := len(s.exclusions.Contributing(results))
	return InstitutionScore{
		Score:       total,
		MaxScore:    StandardMaxScore,
		Methodology: methodologyStandard,
		Status:      StatusOK,
		Explanation: fmt.Sprintf("APS of %d from %d contributing subjects.", total, counted),
	}
}
