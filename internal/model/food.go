package model

import "github.com/twpayne/go-geom"

// FoodDesertTract is a census tract from the USDA food access atlas.
// Only tracts flagged LILA (low income, low access) are scored.
type FoodDesertTract struct {
	GEOID             string  `json:"geoid"`
	Name              string  `json:"name"`
	LILA              bool    `json:"lila"`
	Population        int     `json:"population"`
	PovertyRate       float64 `json:"poverty_rate"`
	VehicleAccessRate float64 `json:"vehicle_access_rate"`
	Boundary          geom.T  `json:"-"`
}

// GroceryStore is a full-service grocery location.
type GroceryStore struct {
	Name     string `json:"name"`
	Chain    string `json:"chain"`
	Location LatLon `json:"location"`
}
