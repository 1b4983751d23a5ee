package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/civic-cli/internal/metrics"
	"github.com/sells-group/civic-cli/internal/model"
)

var compareCmd = &cobra.Command{
	Use:   "compare <code> <code>",
	Short: "Compare two neighborhoods side by side",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}

		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		cmp, err := metrics.NewCalculator(ds, metricsOptions()).Compare(padCode(args[0]), padCode(args[1]))
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		if format == "table" {
			return writeComparison(os.Stdout, cmp)
		}
		return render(os.Stdout, format, cmp, deltaTable(cmp))
	},
}

func init() {
	compareCmd.Flags().String("format", "table", "output format: table, csv, json or yaml")
	rootCmd.AddCommand(compareCmd)
}

func deltaTable(cmp metrics.Comparison) table {
	t := table{header: []string{"DIMENSION", cmp.A.Code, cmp.B.Code, "DIFF", "LEADER"}}
	for _, d := range cmp.Deltas {
		t.rows = append(t.rows, []string{d.Dimension, num(d.A), num(d.B), fmt.Sprintf("%+.1f", d.Diff), d.Leader})
	}
	return t
}

func writeComparison(out io.Writer, cmp metrics.Comparison) error {
	_, _ = fmt.Fprintf(out, "%s (%s) vs %s (%s)\n\n", cmp.A.Name, cmp.A.Code, cmp.B.Name, cmp.B.Code)
	if err := writeTable(out, deltaTable(cmp)); err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Stops nearby:\t%d\t%d\n", cmp.A.StopsNearby, cmp.B.StopsNearby)
	_, _ = fmt.Fprintf(w, "Complaints:\t%d\t%d\n", cmp.A.TotalComplaints, cmp.B.TotalComplaints)
	_, _ = fmt.Fprintf(w, "Vacancies nearby:\t%d\t%d\n", cmp.A.VacanciesNearby, cmp.B.VacanciesNearby)
	_, _ = fmt.Fprintf(w, "Nearest grocery (mi):\t%s\t%s\n", miles(cmp.A.NearestGroceryMiles), miles(cmp.B.NearestGroceryMiles))
	return eris.Wrap(w.Flush(), "write comparison")
}

// padCode accepts "7" as well as "07".
func padCode(raw string) string {
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return model.NeighborhoodCode(n)
	}
	return raw
}
