package eligibility

import (
	"sort"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

// DefaultAlmostEligibleGap is the largest shortfall still shown as "almost eligible".
const DefaultAlmostEligibleGap = 5

// InstitutionSummary is the institution identity carried on each result.
type InstitutionSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Abbreviation      string `json:"abbreviation"`
	UsesCustomScoring bool   `json:"uses_custom_scoring"`
}

// Result is the outcome of comparing one score against one program.
type Result struct {
	Program          catalog.Program    `json:"program"`
	Institution      InstitutionSummary `json:"institution"`
	StudentScore     int                `json:"student_score"`
	MeetsRequirement bool               `json:"meets_requirement"`
	// Gap is set only when MeetsRequirement is false, and is then positive.
	Gap *int `json:"gap,omitempty"`
}

// ScoreLookup returns the score to compare against an institution's programs.
type ScoreLookup func(institutionID string) int

// Match compares one score against every program of every institution and ranks the results.
func Match(score int, institutions []catalog.Institution) []Result {
	return MatchEach(func(string) int { return score }, institutions)
}

// MatchEach is Match with a per-institution score, for institutions whose
// thresholds are expressed on their own scale.
func MatchEach(lookup ScoreLookup, institutions []catalog.Institution) []Result {
	var out []Result
	for _, inst := range institutions {
		summary := InstitutionSummary{
			ID:                inst.ID,
			Name:              inst.Name,
			Abbreviation:      inst.Abbreviation,
			UsesCustomScoring: inst.UsesCustomScoring,
		}
		score := lookup(inst.ID)
		for _, fac := range inst.Faculties {
			for _, p := range fac.Programs {
				out = append(out, compare(score, p, summary))
			}
		}
	}
	Rank(out)
	return out
}

func compare(score int, p catalog.Program, inst InstitutionSummary) Result {
	r := Result{
		Program:          p,
		Institution:      inst,
		StudentScore:     score,
		MeetsRequirement: score >= p.RequiredScore,
	}
	if !r.MeetsRequirement {
		gap := p.RequiredScore - score
		r.Gap = &gap
	}
	return r
}

// Rank orders results in place: eligible before ineligible, then by ascending
// required score. Equal keys keep their catalog order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MeetsRequirement != b.MeetsRequirement {
			return a.MeetsRequirement
		}
		return a.Program.RequiredScore < b.Program.RequiredScore
	})
}

// AlmostEligible returns the ineligible results within maxGap, closest first.
func AlmostEligible(results []Result, maxGap int) []Result {
	var out []Result
	for _, r := range results {
		if !r.MeetsRequirement && r.Gap != nil && *r.Gap <= maxGap {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Gap < *out[j].Gap
	})
	return out
}

// Eligible returns only the results whose requirement is met, in ranked order.
func Eligible(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.MeetsRequirement {
			out = append(out, r)
		}
	}
	return out
}
