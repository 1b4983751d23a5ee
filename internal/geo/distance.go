// Package geo provides the geometry primitives shared by every scorer:
// great-circle distance, polygon centroids, radius queries, and distance bands.
package geo

import (
	"math"

	"github.com/sells-group/civic-cli/internal/model"
)

// EarthRadiusMiles is the mean Earth radius used for all distances.
const EarthRadiusMiles = 3959.0

// milesPerDegreeLat approximates one degree of latitude. It is slightly
// below the true value so bounding boxes built from it stay conservative.
const milesPerDegreeLat = 69.0

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Distance is Haversine over two LatLon values.
func Distance(a, b model.LatLon) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
