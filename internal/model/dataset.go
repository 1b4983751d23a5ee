package model

// Dataset bundles every collection the scorers read. A nil slice or map
// means the collection was never loaded; a non-nil empty one means it was
// loaded and is legitimately empty.
type Dataset struct {
	Neighborhoods []Neighborhood
	Tracts        []FoodDesertTract
	Stops         []TransitStop
	StopStats     map[string]StopStats
	Groceries     []GroceryStore
	Vacancies     []VacantProperty
	Crime         map[string]int
	Complaints    map[string]int
	Demographics  map[string]Demographics
	ComplaintLog  []Complaint
	Weather       []DailyWeather
}

// Neighborhood looks up a neighborhood by code.
func (d *Dataset) Neighborhood(code string) (Neighborhood, bool) {
	for _, n := range d.Neighborhoods {
		if n.Code == code {
			return n, true
		}
	}
	return Neighborhood{}, false
}

// TripsFor returns the daily trip count recorded for a stop, or 0.
func (d *Dataset) TripsFor(stopID string) int {
	if d.StopStats == nil {
		return 0
	}
	return d.StopStats[stopID].DailyTrips
}
