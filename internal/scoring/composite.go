package scoring

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

const (
	compositeMinSubjects = 4
	compositeRestCount   = 4

	methodologyComposite = "Admission average: language 25%, mathematics 25%, best four remaining subjects 50%"
)

// CompositeStrategy weights one language and one mathematics subject a quarter
// each and the mean of the best remaining four subjects a half.
type CompositeStrategy struct {
	exclusions subject.Exclusions
}

// NewCompositeStrategy creates a CompositeStrategy.
func NewCompositeStrategy(ex subject.Exclusions) *CompositeStrategy {
	return &CompositeStrategy{exclusions: ex}
}

func (s *CompositeStrategy) MaxScore() int { return percentMaxScore }

// Score implements Strategy.
func (s *CompositeStrategy) Score(results []subject.Result, _ Options) InstitutionScore {
	contributing := s.exclusions.Contributing(results)
	if len(contributing) < compositeMinSubjects {
		return insufficient(methodologyComposite, percentMaxScore, compositeMinSubjects, len(contributing))
	}

	// Highest-marked candidates win when a student has more than one of each.
	ranked := byMarkDesc(contributing)
	langIdx, mathIdx := -1, -1
	for i, r := range ranked {
		if mathIdx < 0 && subject.IsMathematics(r.Name) {
			mathIdx = i
			continue
		}
		if langIdx < 0 && subject.IsLanguage(r.Name) {
			langIdx = i
		}
	}

	var missing []string
	if langIdx < 0 {
		missing = append(missing, "a language subject")
	}
	if mathIdx < 0 {
		missing = append(missing, "Mathematics")
	}
	if len(missing) > 0 {
		return InstitutionScore{
			MaxScore:    percentMaxScore,
			Methodology: methodologyComposite,
			Status:      StatusMissingRequiredSubject,
			Explanation: fmt.Sprintf("This calculation requires %s.", strings.Join(missing, " and ")),
		}
	}

	var rest []subject.Result
	for i, r := range ranked {
		if i == langIdx || i == mathIdx {
			continue
		}
		rest = append(rest, r)
	}
	if len(rest) > compositeRestCount {
		rest = rest[:compositeRestCount]
	}

	lang, maths := ranked[langIdx], ranked[mathIdx]
	restMean := meanMark(rest)
	score := roundHalfUp(float64(lang.RawMark)*0.25 + float64(maths.RawMark)*0.25 + restMean*0.5)

	return InstitutionScore{
		Score:       score,
		MaxScore:    percentMaxScore,
		Methodology: methodologyComposite,
		Status:      StatusOK,
		Explanation: fmt.Sprintf("%d%% from %s (%d%%), %s (%d%%) and an average of %.1f%% over %d further subjects.",
			score, lang.Name, lang.RawMark, maths.Name, maths.RawMark, restMean, len(rest)),
	}
}
