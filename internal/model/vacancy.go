package model

// Owner classes found in the vacancy registry.
const (
	OwnerLRA     = "lra" // Land Reutilization Authority
	OwnerCity    = "city"
	OwnerPrivate = "private"
)

// Property types found in the vacancy registry.
const (
	PropertyLot      = "lot"
	PropertyBuilding = "building"
)

// VacantProperty is a registry entry for a vacant lot or building.
// TriageScore and ScoreBreakdown are derived once per load.
type VacantProperty struct {
	ID                 string             `json:"id"`
	Address            string             `json:"address"`
	NeighborhoodCode   string             `json:"neighborhood_code"`
	Location           LatLon             `json:"location"`
	Condition          int                `json:"condition"` // 1 (sound) to 5 (collapse risk)
	TaxDelinquentYears int                `json:"tax_delinquent_years"`
	ViolationCount     int                `json:"violation_count"`
	LotSqFt            float64            `json:"lot_sq_ft"`
	OwnerClass         string             `json:"owner_class"`
	LandUse            string             `json:"land_use"`
	PropertyType       string             `json:"property_type"`
	NearbyComplaints   int                `json:"nearby_complaints"`
	TriageScore        float64            `json:"triage_score"`
	ScoreBreakdown     map[string]float64 `json:"score_breakdown,omitempty"`
}
