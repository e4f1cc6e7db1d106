package scoring

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

const (
	meanMinSubjects = 4

	methodologyMean = "Average percentage across contributing subjects"
)

// MeanStrategy averages raw marks. With a positive floor it also reports
// whether every subject reaches that floor; the flag never changes the score.
type MeanStrategy struct {
	exclusions subject.Exclusions
	floor      int
}

// NewMeanStrategy creates a plain average strategy.
func NewMeanStrategy(ex subject.Exclusions) *MeanStrategy {
	return &MeanStrategy{exclusions: ex}
}

// NewMeanWithFloorStrategy creates an average strategy that also flags
// subjects below floor.
func NewMeanWithFloorStrategy(ex subject.Exclusions, floor int) *MeanStrategy {
	return &MeanStrategy{exclusions: ex, floor: floor}
}

func (s *MeanStrategy) MaxScore() int { return percentMaxScore }

// Score implements Strategy.
func (s *MeanStrategy) Score(results []subject.Result, _ Options) InstitutionScore {
	contributing := s.exclusions.Contributing(results)
	if len(contributing) < meanMinSubjects {
		res := insufficient(methodologyMean, percentMaxScore, meanMinSubjects, len(contributing))
		if s.floor > 0 {
			meets := false
			res.MeetsMinimums = &meets
		}
		return res
	}

	score := roundHalfUp(meanMark(contributing))
	res := InstitutionScore{
		Score:       score,
		MaxScore:    percentMaxScore,
		Methodology: methodologyMean,
		Status:      StatusOK,
		Explanation: fmt.Sprintf("%d%% average over %d subjects.", score, len(contributing)),
	}
	if s.floor <= 0 {
		return res
	}

	var below []string
	for _, r := range contributing {
		if r.RawMark < s.floor {
			below = append(below, r.Name)
		}
	}
	meets := len(below) == 0
	res.MeetsMinimums = &meets
	if meets {
		res.Explanation += fmt.Sprintf(" All subjects meet the %d%% minimum.", s.floor)
	} else {
		res.Explanation += fmt.Sprintf(" Below the %d%% minimum: %s.", s.floor, strings.Join(below, ", "))
	}
	return res
}
