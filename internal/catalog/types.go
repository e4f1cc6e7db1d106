package catalog

// SubjectRequirement is a subject-level entry condition shown with a program.
type SubjectRequirement struct {
	Name     string `yaml:"name" json:"name"`
	MinLevel int    `yaml:"min_level" json:"min_level"`
	Required bool   `yaml:"required" json:"required"`
}

// Program is one degree program in the master catalog.
type Program struct {
	ID                  string               `yaml:"id" json:"id"`
	Name                string               `yaml:"name" json:"name"`
	FacultyName         string               `yaml:"faculty" json:"faculty"`
	DurationLabel       string               `yaml:"duration" json:"duration"`
	RequiredScore       int                  `yaml:"required_score" json:"required_score"`
	SubjectRequirements []SubjectRequirement `yaml:"subject_requirements,omitempty" json:"subject_requirements,omitempty"`
	CareerProspects     []string             `yaml:"career_prospects,omitempty" json:"career_prospects,omitempty"`
	Description         string               `yaml:"description,omitempty" json:"description,omitempty"`
}

type AssignmentMode string

const (
	// ModeAll assigns the program to every institution.
	ModeAll AssignmentMode = "all"
	// ModeAllExcept assigns the program to every institution not in the exclusion list.
	ModeAllExcept AssignmentMode = "all_except"
)

// AssignmentRule states which institutions offer a program and at what threshold.
type AssignmentRule struct {
	ProgramID              string         `yaml:"program_id" json:"program_id"`
	Mode                   AssignmentMode `yaml:"mode,omitempty" json:"mode,omitempty"`
	ExcludedInstitutionIDs []string       `yaml:"excluded_institution_ids,omitempty" json:"excluded_institution_ids,omitempty"`
	RequiredScoreOverrides map[string]int `yaml:"required_score_overrides,omitempty" json:"required_score_overrides,omitempty"`
}

// EffectiveMode resolves an unset mode: a rule with exclusions means all_except,
// otherwise all.
func (r AssignmentRule) EffectiveMode() AssignmentMode {
	if r.Mode != "" {
		return r.Mode
	}
	if len(r.ExcludedInstitutionIDs) > 0 {
		return ModeAllExcept
	}
	return ModeAll
}

// Includes reports whether the rule assigns its program to the institution.
func (r AssignmentRule) Includes(institutionID string) bool {
	switch r.EffectiveMode() {
	case ModeAll:
		return true
	case ModeAllExcept:
		for _, id := range r.ExcludedInstitutionIDs {
			if id == institutionID {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RequiredScoreFor returns the institution's override, or base when there is none.
func (r AssignmentRule) RequiredScoreFor(institutionID string, base int) int {
	if v, ok := r.RequiredScoreOverrides[institutionID]; ok {
		return v
	}
	return base
}

// InstitutionRef is an institution directory entry, before programs are assigned.
type InstitutionRef struct {
	ID                string `yaml:"id" json:"id"`
	Name              string `yaml:"name" json:"name"`
	Abbreviation      string `yaml:"abbreviation" json:"abbreviation"`
	UsesCustomScoring bool   `yaml:"uses_custom_scoring" json:"uses_custom_scoring"`
}

// Faculty groups an institution's assigned programs. It is always derived.
type Faculty struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Programs    []Program `json:"programs"`
}

// Institution is a directory entry with its derived faculty tree.
type Institution struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Abbreviation      string    `json:"abbreviation"`
	UsesCustomScoring bool      `json:"uses_custom_scoring"`
	Faculties         []Faculty `json:"faculties"`
}

// ProgramCount returns the number of programs across all faculties.
func (i Institution) ProgramCount() int {
	var n int
	for _, f := range i.Faculties {
		n += len(f.Programs)
	}
	return n
}

// Dataset is everything the catalog source provides.
type Dataset struct {
	Institutions []InstitutionRef  `yaml:"institutions" json:"institutions"`
	Programs     []Program         `yaml:"programs" json:"programs"`
	Rules        []AssignmentRule  `yaml:"rules" json:"rules"`
	Faculties    map[string]string `yaml:"faculty_descriptions,omitempty" json:"faculty_descriptions,omitempty"`
}
