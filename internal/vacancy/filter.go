package vacancy

import (
	"strings"

	"github.com/sells-group/civic-cli/internal/model"
)

// All matches every value of a filter dimension.
const All = "all"

// Filter selects vacant properties. Empty or "all" string fields match
// everything. A nil MaxScore means no upper bound.
type Filter struct {
	LandUse      string   `json:"land_use"`
	Owner        string   `json:"owner"`
	PropertyType string   `json:"property_type"`
	Neighborhood string   `json:"neighborhood"`
	MinScore     float64  `json:"min_score"`
	MaxScore     *float64 `json:"max_score,omitempty"`
}

// Match reports whether p satisfies every dimension of f.
func (f Filter) Match(p model.VacantProperty) bool {
	if !matches(f.LandUse, p.LandUse) ||
		!matches(f.Owner, p.OwnerClass) ||
		!matches(f.PropertyType, p.PropertyType) ||
		!matches(f.Neighborhood, p.NeighborhoodCode) {
		return false
	}
	if p.TriageScore < f.MinScore {
		return false
	}
	if f.MaxScore != nil && p.TriageScore > *f.MaxScore {
		return false
	}
	return true
}

// WithMaxScore returns a copy of f bounded above by score.
func (f Filter) WithMaxScore(score float64) Filter {
	f.MaxScore = &score
	return f
}

// Apply returns the properties matching f, preserving order.
func (f Filter) Apply(props []model.VacantProperty) []model.VacantProperty {
	out := make([]model.VacantProperty, 0, len(props))
	for _, p := range props {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || strings.EqualFold(want, All) || strings.EqualFold(want, got)
}
