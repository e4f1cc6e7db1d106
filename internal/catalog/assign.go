package catalog

import (
	"sort"
	"strings"
)

// Assign returns the programs the rules give to one institution, with each
// program's RequiredScore replaced by the institution's effective threshold.
// Programs without a rule are not assigned. Output follows rule order.
func Assign(institutionID string, programs []Program, rules []AssignmentRule) []Program {
	byID := make(map[string]Program, len(programs))
	for _, p := range programs {
		if _, seen := byID[p.ID]; !seen {
			byID[p.ID] = p
		}
	}

	var out []Program
	assigned := make(map[string]bool)
	for _, rule := range rules {
		p, ok := byID[rule.ProgramID]
		if !ok || assigned[p.ID] || !rule.Includes(institutionID) {
			continue
		}
		p.RequiredScore = rule.RequiredScoreFor(institutionID, p.RequiredScore)
		out = append(out, p)
		assigned[p.ID] = true
	}
	return out
}

// GroupByFaculty builds faculties from programs, sorted by faculty name, with
// each faculty's programs sorted by program name.
func GroupByFaculty(programs []Program, descriptions map[string]string) []Faculty {
	index := make(map[string]int)
	var faculties []Faculty
	for _, p := range programs {
		i, ok := index[p.FacultyName]
		if !ok {
			i = len(faculties)
			index[p.FacultyName] = i
			faculties = append(faculties, Faculty{
				ID:          slug(p.FacultyName),
				Name:        p.FacultyName,
				Description: descriptions[p.FacultyName],
			})
		}
		faculties[i].Programs = append(faculties[i].Programs, p)
	}

	sort.SliceStable(faculties, func(a, b int) bool {
		return faculties[a].Name < faculties[b].Name
	})
	for i := range faculties {
		progs := faculties[i].Programs
		sort.SliceStable(progs, func(a, b int) bool {
			return progs[a].Name < progs[b].Name
		})
	}
	return faculties
}

// Build derives the full institution tree. It is a pure function of its input;
// callers cache the result and rebuild when the dataset changes.
func Build(ds *Dataset) []Institution {
	out := make([]Institution, 0, len(ds.Institutions))
	for _, ref := range ds.Institutions {
		out = append(out, Institution{
			ID:                ref.ID,
			Name:              ref.Name,
			Abbreviation:      ref.Abbreviation,
			UsesCustomScoring: ref.UsesCustomScoring,
			Faculties:         GroupByFaculty(Assign(ref.ID, ds.Programs, ds.Rules), ds.Faculties),
		})
	}
	return out
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
