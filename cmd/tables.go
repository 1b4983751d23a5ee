package main

import (
	"sort"
	"strconv"

	"github.com/sells-group/civic-cli/internal/model"
)

func equityTable(results []model.EquityGapResult) table {
	t := table{header: []string{"GEOID", "POP", "STOPS", "TRIPS", "NEAREST_STOP_MI", "NEAREST_GROCERY_MI", "GROCERY", "TRANSIT_MIN", "SCORE"}}
	for _, r := range results {
		transit := "-"
		if r.TransitMinutes != nil {
			transit = num(*r.TransitMinutes)
		}
		t.rows = append(t.rows, []string{
			r.GEOID,
			strconv.Itoa(r.Population),
			strconv.Itoa(r.StopsNearby),
			strconv.Itoa(r.TotalTripFrequency),
			miles(r.NearestStopMiles),
			miles(r.NearestGroceryMiles),
			truncate(r.NearestGroceryName, 30),
			transit,
			num(r.Score),
		})
	}
	return t
}

func metricsTable(results []model.NeighborhoodMetrics) table {
	t := table{header: []string{"CODE", "NAME", "TRANSIT", "COMPLAINT", "FOOD", "VACANCY", "COMPOSITE", "STOPS", "COMPLAINTS", "VACANCIES", "GROCERY_MI"}}
	for _, m := range results {
		t.rows = append(t.rows, []string{
			m.Code,
			truncate(m.Name, 30),
			num(m.TransitScore),
			num(m.ComplaintScore),
			num(m.FoodScore),
			num(m.VacancyScore),
			num(m.CompositeScore),
			strconv.Itoa(m.StopsNearby),
			strconv.Itoa(m.TotalComplaints),
			strconv.Itoa(m.VacanciesNearby),
			miles(m.NearestGroceryMiles),
		})
	}
	return t
}

func distressTable(results []model.AffectedScore) table {
	t := table{header: []string{"CODE", "NAME", "CRIME", "VACANCY", "COMPLAINT", "FOOD", "POP_DECLINE", "COMPOSITE"}}
	for _, s := range results {
		t.rows = append(t.rows, []string{
			s.Code,
			truncate(s.Name, 30),
			num(s.CrimeScore),
			num(s.VacancyScore),
			num(s.ComplaintScore),
			num(s.FoodScore),
			num(s.PopDeclineScore),
			num(s.Composite),
		})
	}
	return t
}

func triageTable(props []model.VacantProperty) table {
	t := table{header: []string{"ID", "ADDRESS", "NHD", "OWNER", "TYPE", "LAND_USE", "CONDITION", "SCORE"}}
	for _, p := range props {
		t.rows = append(t.rows, []string{
			p.ID,
			truncate(p.Address, 40),
			p.NeighborhoodCode,
			p.OwnerClass,
			p.PropertyType,
			p.LandUse,
			strconv.Itoa(p.Condition),
			num(p.TriageScore),
		})
	}
	return t
}

// sortByTriage orders properties by descending triage score, keeping
// registry order among ties. The input is not modified.
func sortByTriage(props []model.VacantProperty) []model.VacantProperty {
	out := make([]model.VacantProperty, len(props))
	copy(out, props)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriageScore > out[j].TriageScore
	})
	return out
}
