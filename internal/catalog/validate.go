package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Admit/internal/scoring"
)

// ErrCatalogIntegrity marks a catalog that must not be published.
var ErrCatalogIntegrity = errors.New("catalog integrity error")

type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by Validate.
const (
	CodeDuplicateProgramID         = "duplicate_program_id"
	CodeDuplicateInstitutionID     = "duplicate_institution_id"
	CodeDuplicateRule              = "duplicate_rule"
	CodeUnknownProgram             = "unknown_program"
	CodeInvalidMode                = "invalid_mode"
	CodeUnknownExcludedInstitution = "unknown_excluded_institution"
	CodeUnknownOverrideInstitution = "unknown_override_institution"
	CodeNegativeRequiredScore      = "negative_required_score"
	CodeUnassignedProgram          = "unassigned_program"
	CodeEmptyInstitution           = "institution_without_programs"
	CodeRequiredScoreAboveMax      = "required_score_above_max"
	CodeDuplicateFacultyID         = "duplicate_faculty_id"
)

// ScoreCeiling returns the highest score a student can be matched with at an
// institution. Required scores above it can never be met.
type ScoreCeiling func(inst InstitutionRef) int

// StandardCeiling caps every institution at the national point-score maximum.
func StandardCeiling(InstitutionRef) int { return scoring.StandardMaxScore }

// Issue is a single validation finding.
type Issue struct {
	Severity      Severity `json:"severity"`
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	ProgramID     string   `json:"program_id,omitempty"`
	InstitutionID string   `json:"institution_id,omitempty"`
}

// Report is the outcome of a structural validation pass.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Fatal returns the issues that block publishing.
func (r Report) Fatal() []Issue { return r.filter(SeverityFatal) }

// Warnings returns the non-blocking issues.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// HasFatal reports whether the catalog must be rejected.
func (r Report) HasFatal() bool { return len(r.Fatal()) > 0 }

// Err returns an error wrapping ErrCatalogIntegrity when fatal issues exist.
func (r Report) Err() error {
	fatal := r.Fatal()
	if len(fatal) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(fatal))
	for _, is := range fatal {
		msgs = append(msgs, is.Message)
	}
	return fmt.Errorf("%w: %d fatal issue(s): %s", ErrCatalogIntegrity, len(fatal), strings.Join(msgs, "; "))
}

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

func (r *Report) add(sev Severity, code, programID, institutionID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity:      sev,
		Code:          code,
		Message:       fmt.Sprintf(format, args...),
		ProgramID:     programID,
		InstitutionID: institutionID,
	})
}

// Validate checks the dataset's structure against StandardCeiling. It is
// meant for catalog load and offline publishing checks, not for per-student
// calculations.
func Validate(ds *Dataset) Report {
	return ValidateWithCeiling(ds, StandardCeiling)
}

// ValidateWithCeiling is Validate with a per-institution score ceiling.
func ValidateWithCeiling(ds *Dataset, ceiling ScoreCeiling) Report {
	if ceiling == nil {
		ceiling = StandardCeiling
	}
	var rep Report

	known := make(map[string]bool, len(ds.Institutions))
	for _, inst := range ds.Institutions {
		if known[inst.ID] {
			rep.add(SeverityFatal, CodeDuplicateInstitutionID, "", inst.ID, "institution id %q appears more than once", inst.ID)
		}
		known[inst.ID] = true
	}

	programs := make(map[string]bool, len(ds.Programs))
	for _, p := range ds.Programs {
		if programs[p.ID] {
			rep.add(SeverityFatal, CodeDuplicateProgramID, p.ID, "", "program id %q appears more than once", p.ID)
		}
		programs[p.ID] = true
		if p.RequiredScore < 0 {
			rep.add(SeverityFatal, CodeNegativeRequiredScore, p.ID, "", "program %q has negative required score %d", p.ID, p.RequiredScore)
		}
	}

	ruled := make(map[string]bool, len(ds.Rules))
	for _, rule := range ds.Rules {
		if ruled[rule.ProgramID] {
			rep.add(SeverityFatal, CodeDuplicateRule, rule.ProgramID, "", "program %q has more than one assignment rule", rule.ProgramID)
		}
		ruled[rule.ProgramID] = true

		if !programs[rule.ProgramID] {
			rep.add(SeverityWarning, CodeUnknownProgram, rule.ProgramID, "", "assignment rule references unknown program %q", rule.ProgramID)
		}
		if m := rule.EffectiveMode(); m != ModeAll && m != ModeAllExcept {
			rep.add(SeverityFatal, CodeInvalidMode, rule.ProgramID, "", "program %q has unknown assignment mode %q", rule.ProgramID, m)
		}
		for _, id := range rule.ExcludedInstitutionIDs {
			if !known[id] {
				rep.add(SeverityWarning, CodeUnknownExcludedInstitution, rule.ProgramID, id, "program %q excludes unknown institution %q", rule.ProgramID, id)
			}
		}
		overrideIDs := make([]string, 0, len(rule.RequiredScoreOverrides))
		for id := range rule.RequiredScoreOverrides {
			overrideIDs = append(overrideIDs, id)
		}
		sort.Strings(overrideIDs)
		for _, id := range overrideIDs {
			score := rule.RequiredScoreOverrides[id]
			if !known[id] {
				rep.add(SeverityWarning, CodeUnknownOverrideInstitution, rule.ProgramID, id, "program %q overrides score for unknown institution %q", rule.ProgramID, id)
			}
			if score < 0 {
				rep.add(SeverityFatal, CodeNegativeRequiredScore, rule.ProgramID, id, "program %q has negative required score %d at %q", rule.ProgramID, score, id)
			}
		}
	}

	counts := make(map[string]int, len(ds.Institutions))
	reach := make(map[string]int, len(ds.Programs))
	slugClash := make(map[string]bool)
	for _, inst := range ds.Institutions {
		limit := ceiling(inst)
		faculties := make(map[string]string)
		for _, p := range Assign(inst.ID, ds.Programs, ds.Rules) {
			counts[inst.ID]++
			reach[p.ID]++
			if p.RequiredScore > limit {
				rep.add(SeverityWarning, CodeRequiredScoreAboveMax, p.ID, inst.ID,
					"program %q requires %d at %q, above the maximum score of %d", p.ID, p.RequiredScore, inst.ID, limit)
			}

			id := slug(p.FacultyName)
			prev, seen := faculties[id]
			if !seen {
				faculties[id] = p.FacultyName
				continue
			}
			key := id + "\x00" + prev + "\x00" + p.FacultyName
			if prev != p.FacultyName && !slugClash[key] {
				slugClash[key] = true
				rep.add(SeverityWarning, CodeDuplicateFacultyID, p.ID, inst.ID,
					"faculties %q and %q share the id %q", prev, p.FacultyName, id)
			}
		}
	}

	reported := make(map[string]bool)
	for _, p := range ds.Programs {
		if reach[p.ID] > 0 || reported[p.ID] {
			continue
		}
		reported[p.ID] = true
		if !ruled[p.ID] {
			rep.add(SeverityFatal, CodeUnassignedProgram, p.ID, "", "program %q has no assignment rule", p.ID)
			continue
		}
		rep.add(SeverityFatal, CodeUnassignedProgram, p.ID, "", "program %q is not assigned to any institution", p.ID)
	}

	for _, inst := range ds.Institutions {
		if counts[inst.ID] == 0 {
			rep.add(SeverityWarning, CodeEmptyInstitution, "", inst.ID, "institution %q has no programs", inst.ID)
		}
	}

	return rep
}
