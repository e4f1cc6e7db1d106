package summary

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Admit/internal/eligibility"
)

// Counts is an eligibility tally over a set of results.
type Counts struct {
	Total                  int `json:"total"`
	EligibleCount          int `json:"eligible_count"`
	AlmostEligibleCount    int `json:"almost_eligible_count"`
	EligibilityRatePercent int `json:"eligibility_rate_percent"`
}

// FacultyCounts is a Counts scoped to one faculty name.
type FacultyCounts struct {
	Faculty string `json:"faculty"`
	Counts
}

// Stats is the aggregate view of an evaluation.
type Stats struct {
	Counts
	ByFaculty []FacultyCounts `json:"by_faculty"`
}

// Summarize tallies results overall and per faculty. A result is almost
// eligible when it is ineligible with a gap of at most maxGap.
func Summarize(results []eligibility.Result, maxGap int) Stats {
	var overall Counts
	byFaculty := make(map[string]*Counts)

	for _, r := range results {
		fc, ok := byFaculty[r.Program.FacultyName]
		if !ok {
			fc = &Counts{}
			byFaculty[r.Program.FacultyName] = fc
		}
		tally(&overall, r, maxGap)
		tally(fc, r, maxGap)
	}

	overall.EligibilityRatePercent = rate(overall)
	stats := Stats{Counts: overall, ByFaculty: make([]FacultyCounts, 0, len(byFaculty))}
	for name, c := range byFaculty {
		c.EligibilityRatePercent = rate(*c)
		stats.ByFaculty = append(stats.ByFaculty, FacultyCounts{Faculty: name, Counts: *c})
	}
	sort.Slice(stats.ByFaculty, func(i, j int) bool {
		return stats.ByFaculty[i].Faculty < stats.ByFaculty[j].Faculty
	})
	return stats
}

func tally(c *Counts, r eligibility.Result, maxGap int) {
	c.Total++
	switch {
	case r.MeetsRequirement:
		c.EligibleCount++
	case r.Gap != nil && *r.Gap <= maxGap:
		c.AlmostEligibleCount++
	}
}

func rate(c Counts) int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Floor(float64(c.EligibleCount)*100/float64(c.Total) + 0.5))
}
