package summary

import (
	"fmt"
	"math"
)

// Band maps a half-open score range [Min, Max) to guidance. Max of
// math.MaxInt leaves the band open-ended.
type Band struct {
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	Guidance []string `json:"guidance"`
}

// DefaultBandEdges are the lower bounds of the second and later bands.
var DefaultBandEdges = []int{20, 30, 35}

var defaultGuidance = [][]string{
	{
		"Consider a bridging or extended-curriculum program to build towards degree entry.",
		"Look at TVET colleges and higher certificate programs as a first step.",
		"Rewriting subjects where you are close to the next level can raise your score quickly.",
	},
	{
		"Diploma and higher certificate programs at universities of technology are within reach.",
		"Extended degree programs offer an additional foundation year for scores in this range.",
		"Focus on improving Mathematics and your language subject to widen your options.",
	},
	{
		"You qualify for a good range of degree programs at most institutions.",
		"Competitive programs may still be out of reach; compare faculty thresholds carefully.",
		"Apply early, as many programs fill up before the closing date.",
	},
	{
		"You are a strong candidate for most degree programs, including competitive ones.",
		"Check the institution-specific scores for universities with their own formulas.",
		"Look into merit bursaries and scholarships that reward results at this level.",
	},
}

// DefaultBands returns the four standard guidance bands.
func DefaultBands() []Band {
	bands, err := BandsFromEdges(DefaultBandEdges, defaultGuidance)
	if err != nil {
		panic(err)
	}
	return bands
}

// BandsFromEdges builds contiguous bands starting at 0 with the given edges.
// guidance must have one entry per resulting band.
func BandsFromEdges(edges []int, guidance [][]string) ([]Band, error) {
	if len(guidance) != len(edges)+1 {
		return nil, fmt.Errorf("need %d guidance lists for %d edges, got %d", len(edges)+1, len(edges), len(guidance))
	}
	bands := make([]Band, 0, len(edges)+1)
	lo := 0
	for i, e := range edges {
		bands = append(bands, Band{Min: lo, Max: e, Guidance: guidance[i]})
		lo = e
	}
	bands = append(bands, Band{Min: lo, Max: math.MaxInt, Guidance: guidance[len(edges)]})
	return bands, ValidateBands(bands)
}

// DefaultGuidance returns a copy of the built-in guidance lists.
func DefaultGuidance() [][]string {
	out := make([][]string, len(defaultGuidance))
	for i, g := range defaultGuidance {
		out[i] = append([]string(nil), g...)
	}
	return out
}

// ValidateBands checks that bands are non-empty, start at 0, and neither overlap nor leave gaps.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("no recommendation bands")
	}
	if bands[0].Min != 0 {
		return fmt.Errorf("first band must start at 0, starts at %d", bands[0].Min)
	}
	for i, b := range bands {
		if b.Max <= b.Min {
			return fmt.Errorf("band %d is empty: [%d, %d)", i, b.Min, b.Max)
		}
		if i > 0 && b.Min != bands[i-1].Max {
			return fmt.Errorf("band %d starts at %d, previous ends at %d", i, b.Min, bands[i-1].Max)
		}
	}
	return nil
}

// Recommend returns the guidance for score. Scores below zero fall in the first band.
func Recommend(score int, bands []Band) []string {
	if len(bands) == 0 {
		return nil
	}
	if score < bands[0].Min {
		return bands[0].Guidance
	}
	for _, b := range bands {
		if score >= b.Min && score < b.Max {
			return b.Guidance
		}
	}
	return bands[len(bands)-1].Guidance
}
