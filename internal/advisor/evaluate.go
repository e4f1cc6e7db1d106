package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
	"github.com/MikeSquared-Agency/Admit/internal/eligibility"
	"github.com/MikeSquared-Agency/Admit/internal/hermes"
	"github.com/MikeSquared-Agency/Admit/internal/scoring"
	"github.com/MikeSquared-Agency/Admit/internal/subject"
	"github.com/MikeSquared-Agency/Admit/internal/summary"
)

type Request struct {
	Subjects       []subject.Result
	InstitutionIDs []string
	Category       scoring.ProgramCategory
}

type ScoreReport struct {
	Subjects          []subject.Result           `json:"subjects"`
	StandardScore     int                        `json:"standard_score"`
	StandardMaxScore  int                        `json:"standard_max_score"`
	Admission         subject.AdmissionCheck     `json:"admission"`
	InstitutionScores []scoring.InstitutionScore `json:"institution_scores"`
}

type Evaluation struct {
	ID string `json:"evaluation_id"`
	ScoreReport
	Results         []eligibility.Result `json:"results"`
	AlmostEligible  []eligibility.Result `json:"almost_eligible"`
	Summary         summary.Stats        `json:"summary"`
	Recommendations []string             `json:"recommendations"`
}

// Score computes the standard score, the admission check and a score for each
// selected institution. Marks out of range fail with subject.ErrInvalidMark.
func (a *Advisor) Score(req Request) (*ScoreReport, error) {
	institutions, err := a.selectInstitutions(req.InstitutionIDs)
	if err != nil {
		return nil, err
	}
	return a.score(req, institutions)
}

func (a *Advisor) score(req Request, institutions []catalog.Institution) (*ScoreReport, error) {
	results, err := subject.ValidateAll(req.Subjects)
	if err != nil {
		return nil, err
	}

	targets := make([]scoring.Target, 0, len(institutions))
	for _, inst := range institutions {
		targets = append(targets, scoring.Target{ID: inst.ID, Name: inst.Name})
	}
	opts := scoring.Options{Category: req.Category}

	return &ScoreReport{
		Subjects:          results,
		StandardScore:     a.scorer.Standard(results),
		StandardMaxScore:  scoring.StandardMaxScore,
		Admission:         subject.CheckAdmission(results, a.policy.Exclusions),
		InstitutionScores: a.scorer.ScoreAll(targets, results, opts),
	}, nil
}

// Evaluate scores the request and matches it against every program of the
// selected institutions.
func (a *Advisor) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	institutions, err := a.selectInstitutions(req.InstitutionIDs)
	if err != nil {
		return nil, err
	}
	report, err := a.score(req, institutions)
	if err != nil {
		return nil, err
	}

	var results []eligibility.Result
	if a.policy.MatchOnInstitutionScale {
		results = eligibility.MatchEach(a.scoreLookup(report), institutions)
	} else {
		results = eligibility.Match(report.StandardScore, institutions)
	}

	eval := &Evaluation{
		ID:              uuid.New().String(),
		ScoreReport:     *report,
		Results:         results,
		AlmostEligible:  eligibility.AlmostEligible(results, a.policy.AlmostEligibleGap),
		Summary:         summary.Summarize(results, a.policy.AlmostEligibleGap),
		Recommendations: summary.Recommend(report.StandardScore, a.policy.Bands),
	}

	a.metrics.EvaluationCompleted(report.Admission.Ready, eval.Summary.EligibleCount)
	a.logger.Debug("evaluation completed",
		"evaluation_id", eval.ID,
		"standard_score", report.StandardScore,
		"programs", eval.Summary.Total,
		"eligible", eval.Summary.EligibleCount,
	)
	a.publish(hermes.SubjectEvaluationCompleted(eval.ID), hermes.EvaluationCompletedEvent{
		EvaluationID:        eval.ID,
		StandardScore:       report.StandardScore,
		SubjectCount:        len(report.Subjects),
		AdmissionReady:      report.Admission.Ready,
		ProgramCategory:     string(req.Category),
		InstitutionIDs:      req.InstitutionIDs,
		TotalPrograms:       eval.Summary.Total,
		EligibleCount:       eval.Summary.EligibleCount,
		AlmostEligibleCount: eval.Summary.AlmostEligibleCount,
		Timestamp:           time.Now().UTC(),
	})
	return eval, nil
}

// scoreLookup uses an institution's own score when its strategy produced one,
// and the standard score otherwise.
func (a *Advisor) scoreLookup(report *ScoreReport) eligibility.ScoreLookup {
	byID := make(map[string]int, len(report.InstitutionScores))
	for _, s := range report.InstitutionScores {
		if s.Status == scoring.StatusOK && a.scorer.UsesCustomScoring(s.InstitutionID) {
			byID[s.InstitutionID] = s.Score
		}
	}
	return func(id string) int {
		if v, ok := byID[id]; ok {
			return v
		}
		return report.StandardScore
	}
}
