// Package distress ranks neighborhoods by a weighted composite of crime,
// vacancy, complaints, food access and population decline.
package distress

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/geo"
	"github.com/sells-group/civic-cli/internal/model"
)

// Sub-score weights. They must sum to 1.
const (
	WeightCrime      = 0.25
	WeightVacancy    = 0.25
	WeightComplaint  = 0.20
	WeightFood       = 0.15
	WeightPopDecline = 0.15
)

// FoodDesertMiles is the nearest-grocery distance beyond which a
// neighborhood counts as lacking food access.
const FoodDesertMiles = 1.5

// WeightSum returns the sum of the sub-score weights.
func WeightSum() float64 {
	return WeightCrime + WeightVacancy + WeightComplaint + WeightFood + WeightPopDecline
}

// Score ranks every neighborhood in the dataset, highest distress first.
// Missing per-code counts are treated as zero. When the grocery collection
// is absent the food dimension contributes nothing.
func Score(ds *model.Dataset) []model.AffectedScore {
	vacancyCounts := make(map[string]int)
	for _, v := range ds.Vacancies {
		if v.NeighborhoodCode == model.UnmatchedNeighborhood || v.NeighborhoodCode == "" {
			continue
		}
		vacancyCounts[v.NeighborhoodCode]++
	}

	var maxCrime, maxVacancy, maxComplaint int
	var maxDecline float64
	for _, n := range ds.Neighborhoods {
		maxCrime = max(maxCrime, ds.Crime[n.Code])
		maxVacancy = max(maxVacancy, vacancyCounts[n.Code])
		maxComplaint = max(maxComplaint, ds.Complaints[n.Code])
		maxDecline = math.Max(maxDecline, decline(ds.Demographics[n.Code]))
	}

	var groceries geo.Index[model.GroceryStore]
	if ds.Groceries != nil {
		groceries = geo.NewLinearIndex(ds.Groceries, func(g model.GroceryStore) model.LatLon {
			return g.Location
		})
	}

	results := make([]model.AffectedScore, 0, len(ds.Neighborhoods))
	for _, n := range ds.Neighborhoods {
		s := model.AffectedScore{
			Code:           n.Code,
			Name:           n.Name,
			CrimeCount:     ds.Crime[n.Code],
			VacancyCount:   vacancyCounts[n.Code],
			ComplaintCount: ds.Complaints[n.Code],
			PopChange:      ds.Demographics[n.Code].PopChange10to20,
		}

		c, err := geo.Centroid(n.Boundary)
		if err != nil {
			zap.L().Warn("distress: neighborhood has no usable centroid, food score set to 0",
				zap.String("code", n.Code),
				zap.Error(err),
			)
		} else {
			s.Centroid = c
			s.FoodScore = foodScore(groceries, c)
		}

		s.CrimeScore = normalize(float64(s.CrimeCount), float64(maxCrime))
		s.VacancyScore = normalize(float64(s.VacancyCount), float64(maxVacancy))
		s.ComplaintScore = normalize(float64(s.ComplaintCount), float64(maxComplaint))
		s.PopDeclineScore = normalize(decline(ds.Demographics[n.Code]), maxDecline)
		s.Composite = math.Round(
			s.CrimeScore*WeightCrime +
				s.VacancyScore*WeightVacancy +
				s.ComplaintScore*WeightComplaint +
				s.FoodScore*WeightFood +
				s.PopDeclineScore*WeightPopDecline,
		)
		results = append(results, s)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Composite > results[j].Composite
	})

	zap.L().Info("distress: scored neighborhoods",
		zap.Int("neighborhoods", len(results)),
		zap.Bool("groceries_loaded", ds.Groceries != nil),
	)
	return results
}

// normalize scales v against the observed maximum, flooring the
// denominator at 1.
func normalize(v, maxVal float64) float64 {
	return v / math.Max(maxVal, 1) * 100
}

func decline(d model.Demographics) float64 {
	return math.Max(0, -d.PopChange10to20)
}

func foodScore(groceries geo.Index[model.GroceryStore], c model.LatLon) float64 {
	if groceries == nil {
		return 0
	}
	// An empty collection yields +Inf, which counts as a desert.
	nearest := math.Inf(1)
	if h, ok := groceries.Nearest(c); ok {
		nearest = h.Miles
	}
	if nearest > FoodDesertMiles {
		return 100
	}
	return 0
}
