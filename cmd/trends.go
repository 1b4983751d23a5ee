package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/civic-cli/internal/aggregate"
	"github.com/sells-group/civic-cli/internal/model"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Summarize 311 complaint volume and its weather correlation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")
		categories, _ := cmd.Flags().GetString("category")
		neighborhood, _ := cmd.Flags().GetString("neighborhood")

		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		var f aggregate.ComplaintFilter
		if days > 0 {
			f = aggregate.LastDays(days, time.Now())
		}
		f.Categories = splitAndTrim(categories)
		if neighborhood != "" && !strings.EqualFold(neighborhood, "all") {
			f.Neighborhood = padCode(neighborhood)
		}

		rep := buildTrends(ds, f)
		if format == "table" {
			return writeTrends(os.Stdout, rep)
		}
		return render(os.Stdout, format, rep, dailyTable(rep))
	},
}

func init() {
	f := trendsCmd.Flags()
	f.String("format", "table", "output format: table, csv, json or yaml")
	f.Int("days", 0, "only the last N days (0 = everything loaded)")
	f.String("category", "", "comma-separated complaint categories")
	f.String("neighborhood", "", "neighborhood code, or all")
	rootCmd.AddCommand(trendsCmd)
}

// trendsReport bundles the complaint KPIs with the weather comparison.
type trendsReport struct {
	Summary       aggregate.Summary         `json:"summary"`
	Daily         []aggregate.DayCount      `json:"daily"`
	MovingAverage []*float64                `json:"moving_average"`
	Categories    []aggregate.CategoryCount `json:"categories"`
	Weather       aggregate.Correlation     `json:"weather"`
}

func buildTrends(ds *model.Dataset, f aggregate.ComplaintFilter) trendsReport {
	matched := aggregate.FilterComplaints(ds.ComplaintLog, f)
	daily := aggregate.DailyCounts(matched)
	return trendsReport{
		Summary:       aggregate.Summarize(daily),
		Daily:         daily,
		MovingAverage: aggregate.MovingAverage(aggregate.Values(daily), cfg.Weather.MovingAvgWindow),
		Categories:    aggregate.CountByCategory(matched),
		Weather: aggregate.WeatherCorrelation(ds.Weather, aggregate.Thresholds{
			RainyInches:     cfg.Weather.RainyInches,
			HotF:            cfg.Weather.HotF,
			HeavyRainInches: cfg.Weather.HeavyRainInches,
		}),
	}
}

func dailyTable(rep trendsReport) table {
	t := table{header: []string{"DATE", "COUNT", "MOVING_AVG"}}
	for i, d := range rep.Daily {
		avg := ""
		if i < len(rep.MovingAverage) && rep.MovingAverage[i] != nil {
			avg = strconv.FormatFloat(*rep.MovingAverage[i], 'f', -1, 64)
		}
		t.rows = append(t.rows, []string{d.Date.Format("2006-01-02"), strconv.FormatFloat(d.Count, 'f', -1, 64), avg})
	}
	return t
}

func writeTrends(out io.Writer, rep trendsReport) error {
	s := rep.Summary
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total complaints:\t%.0f over %d days\n", s.Total, s.Days)
	_, _ = fmt.Fprintf(w, "Daily average:\t%.1f\n", s.DailyAvg)
	if s.PeakDate != nil {
		_, _ = fmt.Fprintf(w, "Peak day:\t%s (%.0f)\n", s.PeakDate.Format("2006-01-02"), s.PeakCount)
	}
	_, _ = fmt.Fprintf(w, "Last 7 vs prior 7:\t%.0f vs %.0f (%+.0f%%)\n", s.Last7, s.Prior7, s.TrendPct)
	_, _ = fmt.Fprintln(w)
	for _, c := range rep.Categories {
		_, _ = fmt.Fprintf(w, "  %s\t%d\n", c.Category, c.Count)
	}
	_, _ = fmt.Fprintln(w)
	for _, sp := range []aggregate.Split{rep.Weather.Rain, rep.Weather.Heat, rep.Weather.AfterHeavyRain} {
		_, _ = fmt.Fprintf(w, "%s:\t%.1f vs %.1f per day (%+.0f%%)\n", sp.Label, sp.AvgWith, sp.AvgWithout, sp.PctDiff)
	}
	return eris.Wrap(w.Flush(), "write trends")
}
