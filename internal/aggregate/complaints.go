package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/sells-group/civic-cli/internal/model"
)

// DayCount is one point of a daily series.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count float64   `json:"count"`
}

// CategoryCount is one bar of a category chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ComplaintFilter selects complaints. Empty Categories and an empty or
// "all" Neighborhood match everything. Zero From/To leave that side of the
// window open; From is inclusive and To exclusive.
type ComplaintFilter struct {
	Categories   []string
	Neighborhood string
	From         time.Time
	To           time.Time
}

// LastDays returns a filter covering the n days ending at now.
func LastDays(n int, now time.Time) ComplaintFilter {
	end := day(now).AddDate(0, 0, 1)
	return ComplaintFilter{From: end.AddDate(0, 0, -n), To: end}
}

// Match reports whether c passes the filter.
func (f ComplaintFilter) Match(c model.Complaint) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, cat := range f.Categories {
			if strings.EqualFold(cat, c.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Neighborhood != "" && !strings.EqualFold(f.Neighborhood, "all") && f.Neighborhood != c.NeighborhoodCode {
		return false
	}
	if !f.From.IsZero() && c.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !c.Date.Before(f.To) {
		return false
	}
	return true
}

// FilterComplaints returns the complaints matching f, preserving order.
func FilterComplaints(complaints []model.Complaint, f ComplaintFilter) []model.Complaint {
	out := make([]model.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// DailyCounts buckets complaints by UTC calendar day and returns a dense
// chronological series from the first to the last day, with zero-count
// days filled in.
func DailyCounts(complaints []model.Complaint) []DayCount {
	if len(complaints) == 0 {
		return nil
	}
	counts := make(map[time.Time]float64)
	first, last := day(complaints[0].Date), day(complaints[0].Date)
	for _, c := range complaints {
		d := day(c.Date)
		counts[d]++
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var out []DayCount
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, DayCount{Date: d, Count: counts[d]})
	}
	return out
}

// CountByCategory tallies complaints per category, largest first. Ties are
// ordered by category name.
func CountByCategory(complaints []model.Complaint) []CategoryCount {
	tally := make(map[string]int)
	for _, c := range complaints {
		tally[c.Category]++
	}
	out := make([]CategoryCount, 0, len(tally))
	for cat, n := range tally {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Values extracts the counts of a series.
func Values(series []DayCount) []float64 {
	out := make([]float64, len(series))
	for i, d := range series {
		out[i] = d.Count
	}
	return out
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
