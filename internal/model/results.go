package model

import "math"

// EquityGapResult describes transit-mediated grocery access for one LILA tract.
// Distances and times are nil when no candidate exists.
type EquityGapResult struct {
	GEOID               string   `json:"geoid"`
	Name                string   `json:"name,omitempty"`
	Population          int      `json:"population"`
	PovertyRate         float64  `json:"poverty_rate"`
	VehicleAccessRate   float64  `json:"vehicle_access_rate"`
	Centroid            LatLon   `json:"centroid"`
	StopsNearby         int      `json:"stops_nearby"`
	TotalTripFrequency  int      `json:"total_trip_frequency"`
	NearestStopMiles    *float64 `json:"nearest_stop_miles"`
	NearestGroceryMiles *float64 `json:"nearest_grocery_miles"`
	NearestGroceryName  string   `json:"nearest_grocery_name,omitempty"`
	GroceryAccessible   bool     `json:"grocery_accessible"`
	TransitMinutes      *float64 `json:"transit_minutes"`
	Score               float64  `json:"score"`
}

// NeighborhoodMetrics is the per-neighborhood snapshot of transit, complaint
// health, food access, and vacancy. Every score is "higher is better".
type NeighborhoodMetrics struct {
	Code                string   `json:"code"`
	Name                string   `json:"name"`
	Centroid            LatLon   `json:"centroid"`
	TransitScore        float64  `json:"transit_score"`
	ComplaintScore      float64  `json:"complaint_score"`
	FoodScore           float64  `json:"food_score"`
	VacancyScore        float64  `json:"vacancy_score"`
	CompositeScore      float64  `json:"composite_score"`
	StopsNearby         int      `json:"stops_nearby"`
	TotalTripFrequency  int      `json:"total_trip_frequency"`
	TotalComplaints     int      `json:"total_complaints"`
	VacanciesNearby     int      `json:"vacancies_nearby"`
	AvgTriageScore      float64  `json:"avg_triage_score"`
	NearestGroceryMiles *float64 `json:"nearest_grocery_miles"`
	NearestGroceryName  string   `json:"nearest_grocery_name,omitempty"`
}

// AffectedScore ranks a neighborhood by composite civic distress.
// Every sub-score is 0-100 where 100 is the worst observed.
type AffectedScore struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Centroid        LatLon  `json:"centroid"`
	CrimeScore      float64 `json:"crime_score"`
	VacancyScore    float64 `json:"vacancy_score"`
	ComplaintScore  float64 `json:"complaint_score"`
	FoodScore       float64 `json:"food_score"`
	PopDeclineScore float64 `json:"pop_decline_score"`
	Composite       float64 `json:"composite"`
	CrimeCount      int     `json:"crime_count"`
	VacancyCount    int     `json:"vacancy_count"`
	ComplaintCount  int     `json:"complaint_count"`
	PopChange       float64 `json:"pop_change"`
}

// Float returns a pointer to v, or nil when v is not finite.
func Float(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
