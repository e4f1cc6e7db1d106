package scoring

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

const (
	topSixCount    = 6
	topSixMaxScore = 54

	methodologyTopSix = "Faculty Points Score: best six subjects on a 9-point scale"
)

// TopSixStrategy sums a 9-point mark scale over the six best contributing subjects.
type TopSixStrategy struct {
	exclusions subject.Exclusions
}

// NewTopSixStrategy creates a TopSixStrategy.
func NewTopSixStrategy(ex subject.Exclusions) *TopSixStrategy {
	return &TopSixStrategy{exclusions: ex}
}

func (s *TopSixStrategy) MaxScore() int { return topSixMaxScore }

// Score implements Strategy.
func (s *TopSixStrategy) Score(results []subject.Result, _ Options) InstitutionScore {
	contributing := s.exclusions.Contributing(results)
	if len(contributing) < topSixCount {
		return insufficient(methodologyTopSix, topSixMaxScore, topSixCount, len(contributing))
	}

	top := byMarkDesc(contributing)[:topSixCount]
	var total int
	parts := make([]string, 0, len(top))
	for _, r := range top {
		p := NinePointFor(r.RawMark)
		total += p
		parts = append(parts, fmt.Sprintf("%s %d", r.Name, p))
	}

	return InstitutionScore{
		Score:       total,
		MaxScore:    topSixMaxScore,
		Methodology: methodologyTopSix,
		Status:      StatusOK,
		Explanation: fmt.Sprintf("%d/%d from your best six subjects (%s).", total, topSixMaxScore, strings.Join(parts, ", ")),
	}
}

// NinePointFor maps a raw mark onto the 9-point scale: one point per full
// ten marks from 10 upwards, capped at 9.
func NinePointFor(mark int) int {
	switch {
	case mark >= 90:
		return 9
	case mark < 10:
		return 0
	default:
		return mark / 10
	}
}
