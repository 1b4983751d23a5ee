package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/civic-cli/internal/model"
	"github.com/sells-group/civic-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved scoring runs",
	Long:  "Commands for listing and viewing runs saved with score --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		if kind != "" && !model.RunKind(kind).Valid() {
			return eris.Errorf("runs list: unknown kind %q", kind)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Kind:   model.RunKind(kind),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			_, _ = fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run's per-entity scores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		if format == "table" {
			formatRunDetail(os.Stdout, run)
			return nil
		}
		return render(os.Stdout, format, run, runScoresTable(run))
	},
}

func init() {
	runsListCmd.Flags().String("kind", "", "filter by run kind (equity, metrics, distress, triage)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsListCmd.Flags().Int("offset", 0, "number of runs to skip")

	runsShowCmd.Flags().String("format", "table", "output format: table, csv, json or yaml")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tRECORDS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			truncateID(r.ID),
			r.Kind,
			r.RecordCount,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatRunDetail(out io.Writer, run *model.Run) {
	_, _ = fmt.Fprintf(out, "Run:      %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Kind:     %s\n", run.Kind)
	_, _ = fmt.Fprintf(out, "Records:  %d\n", run.RecordCount)
	_, _ = fmt.Fprintf(out, "Created:  %s\n\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	_ = writeTable(out, runScoresTable(run))
}

func runScoresTable(run *model.Run) table {
	t := table{header: []string{"KEY", "SCORE", "LAT", "LON"}}
	for _, s := range run.Scores {
		t.rows = append(t.rows, []string{
			s.Key,
			num(s.Score),
			strconv.FormatFloat(s.Centroid.Lat, 'f', 5, 64),
			strconv.FormatFloat(s.Centroid.Lon, 'f', 5, 64),
		})
	}
	return t
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
