package scoring

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Admit/internal/subject"
)

// ProgramCategory selects the subject weighting used by the weighted-mean strategy.
type ProgramCategory string

const (
	CategoryGeneral     ProgramCategory = "general"
	CategoryEngineering ProgramCategory = "engineering"
	CategoryCommerce    ProgramCategory = "commerce"
	CategoryHealth      ProgramCategory = "health"
)

// ParseCategory maps a free-form category onto a known one, defaulting to general.
func ParseCategory(s string) (ProgramCategory, error) {
	switch c := ProgramCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryGeneral, nil
	case CategoryGeneral, CategoryEngineering, CategoryCommerce, CategoryHealth:
		return c, nil
	default:
		return CategoryGeneral, fmt.Errorf("unknown program category %q", s)
	}
}

// WeightSet defines how strongly each subject group counts in a weighted mean.
type WeightSet struct {
	Mathematics float64
	Science     float64
	English     float64
	Other       float64
	// LifeScienceIsScience widens Science to include Life Sciences.
	LifeScienceIsScience bool
}

// DefaultCategoryWeights returns the weight distribution per program category.
func DefaultCategoryWeights() map[ProgramCategory]WeightSet {
	return map[ProgramCategory]WeightSet{
		CategoryGeneral:     {Mathematics: 1.0, Science: 1.0, English: 1.0, Other: 1.0},
		CategoryEngineering: {Mathematics: 2.5, Science: 2.0, English: 1.5, Other: 1.0},
		CategoryCommerce:    {Mathematics: 2.0, Science: 1.0, English: 1.5, Other: 1.0},
		CategoryHealth:      {Mathematics: 1.5, Science: 2.0, English: 1.5, Other: 1.0, LifeScienceIsScience: true},
	}
}

// Validate checks that every weight is positive.
func (w WeightSet) Validate() error {
	for _, v := range w.asList() {
		if v <= 0 {
			return fmt.Errorf("weight must be positive, got %f", v)
		}
	}
	return nil
}

// For returns the weight applied to one subject.
func (w WeightSet) For(name string) float64 {
	switch {
	case subject.IsMathematics(name):
		return w.Mathematics
	case subject.IsPhysicalScience(name), w.LifeScienceIsScience && subject.IsLifeScience(name):
		return w.Science
	case subject.IsEnglish(name):
		return w.English
	default:
		return w.Other
	}
}

func (w WeightSet) asList() []float64 {
	return []float64{w.Mathematics, w.Science, w.English, w.Other}
}
