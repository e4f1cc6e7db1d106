package subject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMark is returned when a raw mark falls outside [0,100].
var ErrInvalidMark = errors.New("invalid mark")

const (
	MinMark = 0
	MaxMark = 100
)

// DefaultNonContributing lists subjects that count for curriculum completeness
// but never towards an admission score.
var DefaultNonContributing = []string{"Life Orientation"}

// Result is one Grade-12 subject result. LevelPoints always tracks RawMark.
type Result struct {
	Name        string `json:"name"`
	RawMark     int    `json:"raw_mark"`
	levelPoints int
}

// New creates a Result, rejecting marks outside [0,100].
func New(name string, mark int) (Result, error) {
	r := Result{Name: name}
	if err := r.SetMark(mark); err != nil {
		return Result{}, err
	}
	return r, nil
}

// MustNew is New for fixtures and tests; it panics on an invalid mark.
func MustNew(name string, mark int) Result {
	r, err := New(name, mark)
	if err != nil {
		panic(err)
	}
	return r
}

// SetMark updates the raw mark and recomputes the level.
func (r *Result) SetMark(mark int) error {
	if mark < MinMark || mark > MaxMark {
		return fmt.Errorf("%w: %q has mark %d, must be between %d and %d", ErrInvalidMark, r.Name, mark, MinMark, MaxMark)
	}
	r.RawMark = mark
	r.levelPoints = LevelFor(mark)
	return nil
}

// LevelPoints returns the 1–7 level derived from the raw mark.
func (r Result) LevelPoints() int {
	return r.levelPoints
}

// Valid reports whether the result takes part in scoring at all.
// Empty form slots (no name, or no mark yet) do not.
func (r Result) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && r.RawMark > 0
}

// LevelFor maps a raw mark onto the seven-band national level scale.
func LevelFor(mark int) int {
	switch {
	case mark >= 80:
		return 7
	case mark >= 70:
		return 6
	case mark >= 60:
		return 5
	case mark >= 50:
		return 4
	case mark >= 40:
		return 3
	case mark >= 30:
		return 2
	default:
		return 1
	}
}

// ValidateAll checks every mark once at the boundary and rebuilds levels,
// so downstream scoring can assume well-formed input.
func ValidateAll(results []Result) ([]Result, error) {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		checked, err := New(r.Name, r.RawMark)
		if err != nil {
			return nil, err
		}
		out = append(out, checked)
	}
	return out, nil
}

// MarshalJSON includes the derived level so clients never recompute it.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string `json:"name"`
		RawMark     int    `json:"raw_mark"`
		LevelPoints int    `json:"level_points"`
	}{r.Name, r.RawMark, r.levelPoints})
}
