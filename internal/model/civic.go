package model

import "time"

// Complaint is a single 311 service request.
type Complaint struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"`
	NeighborhoodCode string    `json:"neighborhood_code"`
	Date             time.Time `json:"date"`
}

// DailyWeather pairs a day's complaint count with observed weather.
type DailyWeather struct {
	Date         time.Time `json:"date"`
	Count        float64   `json:"count"`
	PrecipInches float64   `json:"precip_inches"`
	TempHighF    float64   `json:"temp_high_f"`
}
