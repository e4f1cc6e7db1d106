package subject

import "fmt"

// MinAdmissionSubjects is the number of contributing subjects a result set
// needs before its score is treated as admission-ready.
const MinAdmissionSubjects = 6

// AdmissionCheck reports whether a result set satisfies the minimum subject policy.
// It is kept apart from score calculation so live, partial input still scores.
type AdmissionCheck struct {
	Ready    bool     `json:"ready"`
	Problems []string `json:"problems,omitempty"`
}

// CheckAdmission applies the minimum subject policy: six contributing subjects,
// a language, and Mathematics or Mathematical Literacy.
func CheckAdmission(results []Result, ex Exclusions) AdmissionCheck {
	contributing := ex.Contributing(results)

	var hasLanguage, hasQuantitative bool
	for _, r := range contributing {
		if IsLanguage(r.Name) {
			hasLanguage = true
		}
		if IsQuantitative(r.Name) {
			hasQuantitative = true
		}
	}

	var problems []string
	if len(contributing) < MinAdmissionSubjects {
		problems = append(problems, fmt.Sprintf("at least %d subjects are required, %d provided", MinAdmissionSubjects, len(contributing)))
	}
	if !hasLanguage {
		problems = append(problems, "a language subject is required")
	}
	if !hasQuantitative {
		problems = append(problems, "Mathematics or Mathematical Literacy is required")
	}

	return AdmissionCheck{Ready: len(problems) == 0, Problems: problems}
}
