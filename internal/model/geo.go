// Package model defines the immutable records shared by the civic scoring core.
package model

import "fmt"

// LatLon is a point in internal axis order (latitude first).
// GeoJSON coordinates are [lon, lat]; convert at the boundary, never here.
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// UnmatchedNeighborhood is the code assigned to records that fell outside
// every neighborhood boundary.
const UnmatchedNeighborhood = "00"

// NeighborhoodCode formats a numeric neighborhood id as the two-digit,
// zero-padded join key used by every per-neighborhood table.
func NeighborhoodCode(n int) string {
	return fmt.Sprintf("%02d", n)
}
