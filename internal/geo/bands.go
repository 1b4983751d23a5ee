package geo

// Band awards Points to any distance at or below MaxMiles.
type Band struct {
	MaxMiles float64
	Points   float64
}

// StepScore returns the points of the first band whose MaxMiles covers
// miles, or fallback. Bands must be ordered by ascending MaxMiles.
// An infinite distance falls through every band.
func StepScore(miles float64, bands []Band, fallback float64) float64 {
	for _, b := range bands {
		if miles <= b.MaxMiles {
			return b.Points
		}
	}
	return fallback
}
