// Package aggregate turns daily complaint series into chart-ready
// aggregates: moving averages, weather correlation and KPI summaries.
package aggregate

import (
	"math"
	"time"

	"github.com/sells-group/civic-cli/internal/model"
)

// DefaultWindow is the moving average window in days.
const DefaultWindow = 7

// MovingAverage returns the rounded trailing mean of each position. The
// first window-1 positions have insufficient history and are nil.
func MovingAverage(values []float64, window int) []*float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	out := make([]*float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			avg := math.Round(sum / float64(window))
			out[i] = &avg
		}
	}
	return out
}

// Thresholds partition days for WeatherCorrelation.
type Thresholds struct {
	RainyInches     float64
	HotF            float64
	HeavyRainInches float64
}

// DefaultThresholds returns the standard weather partitions.
func DefaultThresholds() Thresholds {
	return Thresholds{RainyInches: 0.1, HotF: 85, HeavyRainInches: 0.5}
}

// Split compares the average daily count of two partitions.
type Split struct {
	Label       string  `json:"label"`
	AvgWith     float64 `json:"avg_with"`
	AvgWithout  float64 `json:"avg_without"`
	DaysWith    int     `json:"days_with"`
	DaysWithout int     `json:"days_without"`
	PctDiff     float64 `json:"pct_diff"`
}

// Correlation holds the three weather comparisons.
type Correlation struct {
	Rain           Split `json:"rain"`
	Heat           Split `json:"heat"`
	AfterHeavyRain Split `json:"after_heavy_rain"`
}

// WeatherCorrelation partitions days into rainy/dry, hot/cool and
// day-after-heavy-rain/day-after-normal, and reports each pair's averages
// with the percentage difference relative to the "without" side. Days must
// be in chronological order; an empty partition averages to 0.
func WeatherCorrelation(days []model.DailyWeather, th Thresholds) Correlation {
	var rain, heat, after partition
	for i, d := range days {
		rain.add(d.PrecipInches >= th.RainyInches, d.Count)
		heat.add(d.TempHighF >= th.HotF, d.Count)
		if i > 0 {
			after.add(days[i-1].PrecipInches >= th.HeavyRainInches, d.Count)
		}
	}
	return Correlation{
		Rain:           rain.split("rainy vs dry"),
		Heat:           heat.split("hot vs cool"),
		AfterHeavyRain: after.split("day after heavy rain vs day after normal"),
	}
}

type partition struct {
	sumWith, sumWithout float64
	nWith, nWithout     int
}

func (p *partition) add(with bool, v float64) {
	if with {
		p.sumWith += v
		p.nWith++
		return
	}
	p.sumWithout += v
	p.nWithout++
}

func (p *partition) split(label string) Split {
	s := Split{
		Label:       label,
		AvgWith:     mean(p.sumWith, p.nWith),
		AvgWithout:  mean(p.sumWithout, p.nWithout),
		DaysWith:    p.nWith,
		DaysWithout: p.nWithout,
	}
	s.PctDiff = pctChange(s.AvgWithout, s.AvgWith)
	return s
}

// Summary is the KPI card for a daily series.
type Summary struct {
	Total     float64    `json:"total"`
	Days      int        `json:"days"`
	DailyAvg  float64    `json:"daily_avg"`
	PeakDate  *time.Time `json:"peak_date"`
	PeakCount float64    `json:"peak_count"`
	Last7     float64    `json:"last_7"`
	Prior7    float64    `json:"prior_7"`
	TrendPct  float64    `json:"trend_pct"`
}

// Summarize computes total, daily average, peak day and the last-7 versus
// prior-7 day trend. Days must be in chronological order.
func Summarize(days []DayCount) Summary {
	var s Summary
	s.Days = len(days)
	for i, d := range days {
		s.Total += d.Count
		if s.PeakDate == nil || d.Count > s.PeakCount {
			date := days[i].Date
			s.PeakDate = &date
			s.PeakCount = d.Count
		}
	}
	s.DailyAvg = math.Round(mean(s.Total, s.Days)*10) / 10

	n := len(days)
	for i := max(0, n-7); i < n; i++ {
		s.Last7 += days[i].Count
	}
	for i := max(0, n-14); i < max(0, n-7); i++ {
		s.Prior7 += days[i].Count
	}
	s.TrendPct = pctChange(s.Prior7, s.Last7)
	return s
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// pctChange returns the rounded percentage change from base to v, or 0 when
// base is 0.
func pctChange(base, v float64) float64 {
	if base == 0 {
		return 0
	}
	return math.Round((v - base) / base * 100)
}
