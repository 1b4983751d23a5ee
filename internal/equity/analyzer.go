// Package equity scores transit-mediated grocery access for food desert tracts.
package equity

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/geo"
	"github.com/sells-group/civic-cli/internal/model"
)

// Join radii and travel assumptions.
const (
	NearbyRadiusMiles      = 0.5
	GroceryStopRadiusMiles = 0.25
	WalkMPH                = 3.0
	BusMPH                 = 15.0
	WaitMinutes            = 10.0
)

// Component caps. They sum to 100 so no single factor dominates.
const (
	maxStopPoints      = 30.0
	maxFrequencyPoints = 20.0
	accessiblePoints   = 25.0
	pointsPerStop      = 10.0
	pointsPerTrip      = 0.5
)

// groceryBands maps nearest-grocery distance to points (max 25).
var groceryBands = []geo.Band{
	{MaxMiles: 0.5, Points: 25},
	{MaxMiles: 1, Points: 15},
	{MaxMiles: 2, Points: 5},
}

// Options selects the radius-query index used for stop lookups.
type Options struct {
	IndexKind string
	CellMiles float64
}

// Analyzer computes equity gap results.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// AnalyzeDataset runs Analyze over the relevant collections of a dataset.
func (a *Analyzer) AnalyzeDataset(ds *model.Dataset) []model.EquityGapResult {
	return a.Analyze(ds.Tracts, ds.Stops, ds.StopStats, ds.Groceries)
}

// Analyze scores every LILA tract and returns results sorted by ascending
// score, so the worst-served tracts come first. Tracts whose boundary has no
// usable centroid are skipped.
func (a *Analyzer) Analyze(
	tracts []model.FoodDesertTract,
	stops []model.TransitStop,
	stats map[string]model.StopStats,
	groceries []model.GroceryStore,
) []model.EquityGapResult {
	stopIdx := geo.NewIndex(a.opts.IndexKind, stops, stopLocation, a.opts.CellMiles)
	groceryIdx := geo.NewLinearIndex(groceries, groceryLocation)

	// Stops serving each grocery do not depend on the tract.
	groceryStops := make([][]geo.Hit[model.TransitStop], len(groceries))
	for i, g := range groceries {
		groceryStops[i] = stopIdx.Within(g.Location, GroceryStopRadiusMiles)
	}

	results := make([]model.EquityGapResult, 0, len(tracts))
	var skipped int
	for _, t := range tracts {
		if !t.LILA {
			continue
		}
		c, err := geo.Centroid(t.Boundary)
		if err != nil {
			skipped++
			zap.L().Warn("equity: skipping tract with invalid geometry",
				zap.String("geoid", t.GEOID),
				zap.Error(err),
			)
			continue
		}
		results = append(results, a.analyzeTract(t, c, stopIdx, stats, groceryIdx, groceryStops))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	zap.L().Info("equity: analysis complete",
		zap.Int("tracts_scored", len(results)),
		zap.Int("tracts_skipped", skipped),
		zap.Int("stops", len(stops)),
		zap.Int("groceries", len(groceries)),
	)
	return results
}

func (a *Analyzer) analyzeTract(
	t model.FoodDesertTract,
	c model.LatLon,
	stopIdx geo.Index[model.TransitStop],
	stats map[string]model.StopStats,
	groceryIdx geo.Index[model.GroceryStore],
	groceryStops [][]geo.Hit[model.TransitStop],
) model.EquityGapResult {
	nearby := stopIdx.Within(c, NearbyRadiusMiles)
	var trips int
	for _, h := range nearby {
		trips += stats[h.Item.ID].DailyTrips
	}

	nearestStop := math.Inf(1)
	if h, ok := stopIdx.Nearest(c); ok {
		nearestStop = h.Miles
	}

	nearestGrocery := math.Inf(1)
	var groceryName string
	if h, ok := groceryIdx.Nearest(c); ok {
		nearestGrocery = h.Miles
		groceryName = h.Item.Name
	}

	accessible, minutes := reachable(nearby, groceryStops, stats)

	res := model.EquityGapResult{
		GEOID:               t.GEOID,
		Name:                t.Name,
		Population:          t.Population,
		PovertyRate:         t.PovertyRate,
		VehicleAccessRate:   t.VehicleAccessRate,
		Centroid:            c,
		StopsNearby:         len(nearby),
		TotalTripFrequency:  trips,
		NearestStopMiles:    model.Float(nearestStop),
		NearestGroceryMiles: model.Float(nearestGrocery),
		NearestGroceryName:  groceryName,
		GroceryAccessible:   accessible,
		Score:               Score(len(nearby), trips, nearestGrocery, accessible),
	}
	if accessible {
		res.TransitMinutes = model.Float(math.Round(minutes*10) / 10)
	}
	return res
}

// reachable reports whether some grocery can be reached by riding a route
// shared between a tract-side stop and a grocery-side stop, and the fastest
// estimated door-to-door time among the paths found. For each grocery the
// search stops at the first matching stop pair.
func reachable(
	tractStops []geo.Hit[model.TransitStop],
	groceryStops [][]geo.Hit[model.TransitStop],
	stats map[string]model.StopStats,
) (bool, float64) {
	best := math.Inf(1)
	found := false
	for _, candidates := range groceryStops {
		for _, gs := range candidates {
			gStats := stats[gs.Item.ID]
			matched := false
			for _, ts := range tractStops {
				if !stats[ts.Item.ID].SharesRoute(gStats) {
					continue
				}
				ride := geo.Distance(ts.Item.Location, gs.Item.Location)
				minutes := ts.Miles/WalkMPH*60 + WaitMinutes + ride/BusMPH*60 + gs.Miles/WalkMPH*60
				best = math.Min(best, minutes)
				found, matched = true, true
				break
			}
			if matched {
				break
			}
		}
	}
	return found, best
}

// Score sums the four independently capped components into a 0-100 score.
// The sum is not rounded: odd trip counts earn half points. An infinite
// grocery distance earns no proximity points.
func Score(stopsNearby, totalTrips int, nearestGroceryMiles float64, accessible bool) float64 {
	score := math.Min(float64(stopsNearby)*pointsPerStop, maxStopPoints) +
		math.Min(float64(totalTrips)*pointsPerTrip, maxFrequencyPoints) +
		geo.StepScore(nearestGroceryMiles, groceryBands, 0)
	if accessible {
		score += accessiblePoints
	}
	return score
}

func stopLocation(s model.TransitStop) model.LatLon     { return s.Location }
func groceryLocation(g model.GroceryStore) model.LatLon { return g.Location }
