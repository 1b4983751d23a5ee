// Package metrics computes per-neighborhood snapshots of transit, complaint
// health, food access, and vacancy around each neighborhood centroid.
package metrics

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/geo"
	"github.com/sells-group/civic-cli/internal/model"
)

// CatchmentMiles is the radius used for every "nearby" join.
const CatchmentMiles = 0.5

// ErrUnknownNeighborhood is returned when a code has no neighborhood.
var ErrUnknownNeighborhood = eris.New("metrics: unknown neighborhood")

var foodBands = []geo.Band{
	{MaxMiles: 0.5, Points: 90},
	{MaxMiles: 1, Points: 60},
	{MaxMiles: 2, Points: 30},
}

// Inputs are the raw neighborhood measurements the composite is built from.
// NearestGroceryMiles is +Inf when there is no grocery.
type Inputs struct {
	StopsNearby         int
	TotalTrips          int
	TotalComplaints     int
	NearestGroceryMiles float64
	AvgTriageScore      float64
}

// Scores holds the four dimension scores and their composite.
type Scores struct {
	Transit   float64
	Complaint float64
	Food      float64
	Vacancy   float64
	Composite float64
}

// Score is the only implementation of the neighborhood composite. Detail
// views and comparisons must both go through it.
func Score(in Inputs) Scores {
	s := Scores{
		Transit:   math.Min(100, float64(in.StopsNearby)*15+math.Min(float64(in.TotalTrips)*0.3, 30)),
		Complaint: math.Max(0, 100-float64(in.TotalComplaints)/50),
		Food:      geo.StepScore(in.NearestGroceryMiles, foodBands, 10),
		Vacancy:   100 - in.AvgTriageScore,
	}
	s.Composite = math.Round((s.Transit + s.Complaint + s.Food + s.Vacancy) / 4)
	return s
}

// Options selects the radius-query index.
type Options struct {
	IndexKind string
	CellMiles float64
}

// Calculator joins a dataset's point collections to neighborhood centroids.
// Build one per dataset; it holds no state beyond the indexes.
type Calculator struct {
	ds        *model.Dataset
	stops     geo.Index[model.TransitStop]
	vacancies geo.Index[model.VacantProperty]
	groceries geo.Index[model.GroceryStore]
}

// NewCalculator indexes the dataset's stops, vacancies and groceries.
func NewCalculator(ds *model.Dataset, opts Options) *Calculator {
	return &Calculator{
		ds: ds,
		stops: geo.NewIndex(opts.IndexKind, ds.Stops, func(s model.TransitStop) model.LatLon {
			return s.Location
		}, opts.CellMiles),
		vacancies: geo.NewIndex(opts.IndexKind, ds.Vacancies, func(v model.VacantProperty) model.LatLon {
			return v.Location
		}, opts.CellMiles),
		groceries: geo.NewLinearIndex(ds.Groceries, func(g model.GroceryStore) model.LatLon {
			return g.Location
		}),
	}
}

// Compute returns the metrics for one neighborhood.
func (c *Calculator) Compute(code string) (model.NeighborhoodMetrics, error) {
	n, ok := c.ds.Neighborhood(code)
	if !ok {
		return model.NeighborhoodMetrics{}, eris.Wrapf(ErrUnknownNeighborhood, "code %q", code)
	}
	return c.compute(n)
}

// ComputeAll returns metrics for every neighborhood in dataset order.
// Neighborhoods with invalid boundaries are skipped.
func (c *Calculator) ComputeAll() []model.NeighborhoodMetrics {
	out := make([]model.NeighborhoodMetrics, 0, len(c.ds.Neighborhoods))
	for _, n := range c.ds.Neighborhoods {
		m, err := c.compute(n)
		if err != nil {
			zap.L().Warn("metrics: skipping neighborhood",
				zap.String("code", n.Code),
				zap.Error(err),
			)
			continue
		}
		out = append(out, m)
	}
	zap.L().Info("metrics: computed neighborhood metrics",
		zap.Int("neighborhoods", len(out)),
	)
	return out
}

func (c *Calculator) compute(n model.Neighborhood) (model.NeighborhoodMetrics, error) {
	centroid, err := geo.Centroid(n.Boundary)
	if err != nil {
		return model.NeighborhoodMetrics{}, eris.Wrapf(err, "metrics: centroid for %s", n.Code)
	}

	stops := c.stops.Within(centroid, CatchmentMiles)
	var trips int
	for _, h := range stops {
		trips += c.ds.TripsFor(h.Item.ID)
	}

	vacancies := c.vacancies.Within(centroid, CatchmentMiles)
	var avgTriage float64
	if len(vacancies) > 0 {
		var sum float64
		for _, h := range vacancies {
			sum += h.Item.TriageScore
		}
		avgTriage = sum / float64(len(vacancies))
	}

	nearest := math.Inf(1)
	var groceryName string
	if h, ok := c.groceries.Nearest(centroid); ok {
		nearest = h.Miles
		groceryName = h.Item.Name
	}

	complaints := c.ds.Complaints[n.Code]
	s := Score(Inputs{
		StopsNearby:         len(stops),
		TotalTrips:          trips,
		TotalComplaints:     complaints,
		NearestGroceryMiles: nearest,
		AvgTriageScore:      avgTriage,
	})

	return model.NeighborhoodMetrics{
		Code:                n.Code,
		Name:                n.Name,
		Centroid:            centroid,
		TransitScore:        s.Transit,
		ComplaintScore:      s.Complaint,
		FoodScore:           s.Food,
		VacancyScore:        s.Vacancy,
		CompositeScore:      s.Composite,
		StopsNearby:         len(stops),
		TotalTripFrequency:  trips,
		TotalComplaints:     complaints,
		VacanciesNearby:     len(vacancies),
		AvgTriageScore:      math.Round(avgTriage*10) / 10,
		NearestGroceryMiles: model.Float(nearest),
		NearestGroceryName:  groceryName,
	}, nil
}
