package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

// Status describes how a strategy arrived at its score.
type Status string

const (
	StatusOK                     Status = "ok"
	StatusInsufficientSubjects   Status = "insufficient_subjects"
	StatusMissingRequiredSubject Status = "missing_required_subject"
)

// InstitutionScore is the output of one strategy for one institution.
type InstitutionScore struct {
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
	Score           int    `json:"score"`
	MaxScore        int    `json:"max_score"`
	Explanation     string `json:"explanation"`
	Methodology     string `json:"methodology"`
	Status          Status `json:"status"`
	// MeetsMinimums is only set by strategies that check a per-subject floor.
	// It is informational and never gates Score.
	MeetsMinimums *bool `json:"meets_minimums,omitempty"`
}

// Options carries per-request parameters some strategies need.
type Options struct {
	Category ProgramCategory `json:"program_category,omitempty"`
}

// Strategy is an institution-specific admission score formula.
// Implementations exclude non-contributing subjects and degrade to a zero
// score with an explanation instead of failing on incomplete input.
type Strategy interface {
	Score(results []subject.Result, opts Options) InstitutionScore
	MaxScore() int
}

// roundHalfUp rounds to the nearest integer with .5 going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// byMarkDesc returns a copy of results ordered by raw mark, highest first.
// Equal marks keep input order.
func byMarkDesc(results []subject.Result) []subject.Result {
	sorted := make([]subject.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RawMark > sorted[j].RawMark
	})
	return sorted
}

func meanMark(results []subject.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum int
	for _, r := range results {
		sum += r.RawMark
	}
	return float64(sum) / float64(len(results))
}

func insufficient(methodology string, maxScore, min, got int) InstitutionScore {
	return InstitutionScore{
		Score:       0,
		MaxScore:    maxScore,
		Methodology: methodology,
		Status:      StatusInsufficientSubjects,
		Explanation: fmt.Sprintf("At least %d subjects are required for this calculation, %d provided.", min, got),
	}
}
