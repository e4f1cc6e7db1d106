package subject

import "strings"

// Exclusions is the set of non-contributing subject names, matched case-insensitively.
type Exclusions map[string]struct{}

// NewExclusions builds an exclusion set from subject names.
func NewExclusions(names ...string) Exclusions {
	ex := make(Exclusions, len(names))
	for _, n := range names {
		ex[normalize(n)] = struct{}{}
	}
	return ex
}

// DefaultExclusions returns the exclusion set for DefaultNonContributing.
func DefaultExclusions() Exclusions {
	return NewExclusions(DefaultNonContributing...)
}

// Contains reports whether name is non-contributing.
func (e Exclusions) Contains(name string) bool {
	_, ok := e[normalize(name)]
	return ok
}

// Contributing returns the valid results that count towards a score, in input order.
func (e Exclusions) Contributing(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Valid() || e.Contains(r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

var languageMarkers = []string{
	"english", "afrikaans", "isizulu", "isixhosa", "isindebele", "sesotho", "setswana",
	"sepedi", "siswati", "tshivenda", "xitsonga", "homelanguage", "additionallanguage",
}

// IsLanguage reports whether the subject is a language subject.
func IsLanguage(name string) bool {
	n := normalize(name)
	for _, m := range languageMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}

// IsMathematics reports whether the subject is Mathematics proper
// (Technical Mathematics included, Mathematical Literacy excluded).
func IsMathematics(name string) bool {
	n := normalize(name)
	return n == "mathematics" || n == "maths" || n == "math" || n == "technicalmathematics"
}

// IsMathematicalLiteracy reports whether the subject is Mathematical Literacy.
func IsMathematicalLiteracy(name string) bool {
	n := normalize(name)
	return n == "mathematicalliteracy" || n == "mathsliteracy" || n == "mathliteracy"
}

// IsQuantitative reports whether the subject belongs to the quantitative-literacy pair.
func IsQuantitative(name string) bool {
	return IsMathematics(name) || IsMathematicalLiteracy(name)
}

// IsPhysicalScience reports whether the subject is Physical Sciences.
func IsPhysicalScience(name string) bool {
	n := normalize(name)
	return strings.HasPrefix(n, "physicalscience") || n == "technicalsciences"
}

// IsLifeScience reports whether the subject is Life Sciences.
func IsLifeScience(name string) bool {
	n := normalize(name)
	return strings.HasPrefix(n, "lifescience")
}

// IsEnglish reports whether the subject is an English language subject.
func IsEnglish(name string) bool {
	return strings.HasPrefix(normalize(name), "english")
}

// normalize folds case and drops separators so "Life Orientation",
// "LifeOrientation" and "life_orientation" compare equal.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
