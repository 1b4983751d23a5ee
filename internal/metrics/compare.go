package metrics

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/civic-cli/internal/model"
)

// Dimension names, in display order.
const (
	DimTransit   = "transit"
	DimComplaint = "complaint"
	DimFood      = "food"
	DimVacancy   = "vacancy"
	DimComposite = "composite"
)

// ErrSameNeighborhood is returned when both sides of a comparison are the same code.
var ErrSameNeighborhood = eris.New("metrics: cannot compare a neighborhood with itself")

// Delta is one row of a comparison panel. Diff is A minus B.
type Delta struct {
	Dimension string  `json:"dimension"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Diff      float64 `json:"diff"`
	Leader    string  `json:"leader,omitempty"`
}

// Comparison is a side-by-side view of two neighborhoods.
type Comparison struct {
	A      model.NeighborhoodMetrics `json:"a"`
	B      model.NeighborhoodMetrics `json:"b"`
	Deltas []Delta                   `json:"deltas"`
}

// Compare builds a comparison panel for neighborhoods a and b.
func (c *Calculator) Compare(a, b string) (Comparison, error) {
	if a == b {
		return Comparison{}, eris.Wrapf(ErrSameNeighborhood, "code %q", a)
	}
	ma, err := c.Compute(a)
	if err != nil {
		return Comparison{}, err
	}
	mb, err := c.Compute(b)
	if err != nil {
		return Comparison{}, err
	}

	rows := []struct {
		dim  string
		a, b float64
	}{
		{DimTransit, ma.TransitScore, mb.TransitScore},
		{DimComplaint, ma.ComplaintScore, mb.ComplaintScore},
		{DimFood, ma.FoodScore, mb.FoodScore},
		{DimVacancy, ma.VacancyScore, mb.VacancyScore},
		{DimComposite, ma.CompositeScore, mb.CompositeScore},
	}
	deltas := make([]Delta, 0, len(rows))
	for _, r := range rows {
		d := Delta{Dimension: r.dim, A: r.a, B: r.b, Diff: r.a - r.b}
		switch {
		case r.a > r.b:
			d.Leader = ma.Code
		case r.b > r.a:
			d.Leader = mb.Code
		}
		deltas = append(deltas, d)
	}

	return Comparison{
		A:      ma,
		B:      mb,
		Deltas: deltas,
	}, nil
}
