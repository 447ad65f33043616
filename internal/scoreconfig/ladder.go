package scoreconfig

import "fmt"

// Comparison decides how a value is tested against a tier bound
type Comparison string

const (
	GreaterThan    Comparison = "gt"
	GreaterOrEqual Comparison = "gte"
	LessThan       Comparison = "lt"
	LessOrEqual    Comparison = "lte"
)

// Tier awards Points when the value passes Bound
type Tier struct {
	Bound  float64 `yaml:"bound" json:"bound"`
	Points float64 `yaml:"points" json:"points"`
}

// Ladder is an ordered tier table. The first passing tier wins;
// a present value that passes no tier gets Floor.
type Ladder struct {
	Cmp   Comparison `yaml:"cmp" json:"cmp"`
	Max   float64    `yaml:"max" json:"max"`
	Floor float64    `yaml:"floor,omitempty" json:"floor,omitempty"`
	Tiers []Tier     `yaml:"tiers" json:"tiers"`
}

// Score returns the points for v
func (l Ladder) Score(v float64) float64 {
	for _, t := range l.Tiers {
		if l.passes(v, t.Bound) {
			return t.Points
		}
	}
	return l.Floor
}

func (l Ladder) passes(v, bound float64) bool {
	switch l.Cmp {
	case GreaterThan:
		return v > bound
	case GreaterOrEqual:
		return v >= bound
	case LessThan:
		return v < bound
	case LessOrEqual:
		return v <= bound
	default:
		return false
	}
}

// validate checks that bounds are ordered for the comparison
// and that no tier awards more than Max
func (l Ladder) validate(field string) error {
	switch l.Cmp {
	case GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
	default:
		return ValidationError{field + ".cmp", fmt.Sprintf("unknown comparison %q", l.Cmp)}
	}
	if len(l.Tiers) == 0 {
		return ValidationError{field + ".tiers", "required"}
	}
	if l.Floor < 0 || l.Floor > l.Max {
		return ValidationError{field + ".floor", "must be in [0, max]"}
	}

	descending := l.Cmp == GreaterThan || l.Cmp == GreaterOrEqual
	for i, t := range l.Tiers {
		if t.Points < 0 || t.Points > l.Max {
			return ValidationError{fmt.Sprintf("%s.tiers[%d].points", field, i), "must be in [0, max]"}
		}
		if i == 0 {
			continue
		}
		prev := l.Tiers[i-1].Bound
		if descending && t.Bound >= prev {
			return ValidationError{fmt.Sprintf("%s.tiers[%d].bound", field, i), "bounds must be descending"}
		}
		if !descending && t.Bound <= prev {
			return ValidationError{fmt.Sprintf("%s.tiers[%d].bound", field, i), "bounds must be ascending"}
		}
	}
	return nil
}

func gt(max float64, tiers ...Tier) Ladder {
	return Ladder{Cmp: GreaterThan, Max: max, Tiers: tiers}
}

func gte(max float64, tiers ...Tier) Ladder {
	return Ladder{Cmp: GreaterOrEqual, Max: max, Tiers: tiers}
}

func lt(max float64, tiers ...Tier) Ladder {
	return Ladder{Cmp: LessThan, Max: max, Tiers: tiers}
}

func lte(max float64, tiers ...Tier) Ladder {
	return Ladder{Cmp: LessOrEqual, Max: max, Tiers: tiers}
}

func withFloor(l Ladder, floor float64) Ladder {
	l.Floor = floor
	return l
}
