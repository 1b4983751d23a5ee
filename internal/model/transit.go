package model

// TransitStop is a bus or rail stop.
type TransitStop struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location LatLon `json:"location"`
}

// StopStats aggregates schedule data for a single stop.
type StopStats struct {
	StopID     string   `json:"stop_id"`
	DailyTrips int      `json:"daily_trips"`
	Routes     []string `json:"routes"`
}

// SharesRoute reports whether two stops are served by at least one common route.
func (s StopStats) SharesRoute(other StopStats) bool {
	if len(s.Routes) == 0 || len(other.Routes) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(s.Routes))
	for _, r := range s.Routes {
		set[r] = struct{}{}
	}
	for _, r := range other.Routes {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
