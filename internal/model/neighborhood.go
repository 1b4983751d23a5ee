package model

import "github.com/twpayne/go-geom"

// Neighborhood is a city neighborhood keyed by its two-digit code.
type Neighborhood struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Boundary geom.T `json:"-"`
}

// Demographics holds census population figures for a neighborhood.
type Demographics struct {
	Code            string  `json:"code"`
	Pop2010         int     `json:"pop_2010"`
	Pop2020         int     `json:"pop_2020"`
	PopChange10to20 float64 `json:"pop_change_10_20"` // percent
}
