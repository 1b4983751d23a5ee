package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/distress"
	"github.com/sells-group/civic-cli/internal/equity"
	"github.com/sells-group/civic-cli/internal/metrics"
	"github.com/sells-group/civic-cli/internal/model"
	"github.com/sells-group/civic-cli/internal/vacancy"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run one of the scorers over the configured datasets",
	Long: `Run a scorer over the datasets named in the data section of the config.

Examples:
  # Worst-served food desert tracts first
  score equity --limit 20

  # Every neighborhood's metrics as YAML
  score metrics --format yaml

  # Distress ranking saved as a run and exported
  score distress --save --format csv --output distress.csv

  # Highest-priority LRA-owned vacant buildings
  score triage --owner lra --type building --min-score 70`,
}

var scoreEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Transit-mediated grocery access for food desert tracts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd, model.RunEquity, func(ds *model.Dataset) (any, table, int) {
			results := equity.NewAnalyzer(equityOptions()).AnalyzeDataset(ds)
			return results, equityTable(results), len(results)
		})
	},
}

var scoreMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Transit, complaint, food and vacancy scores per neighborhood",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd, model.RunMetrics, func(ds *model.Dataset) (any, table, int) {
			results := metrics.NewCalculator(ds, metricsOptions()).ComputeAll()
			return results, metricsTable(results), len(results)
		})
	},
}

var scoreDistressCmd = &cobra.Command{
	Use:   "distress",
	Short: "Composite distress ranking, most affected first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd, model.RunDistress, func(ds *model.Dataset) (any, table, int) {
			results := distress.Score(ds)
			return results, distressTable(results), len(results)
		})
	},
}

var scoreTriageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Vacancy triage scores, filtered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := triageFilter(cmd)
		return runScore(cmd, model.RunTriage, func(ds *model.Dataset) (any, table, int) {
			results := sortByTriage(f.Apply(ds.Vacancies))
			return results, triageTable(results), len(results)
		})
	},
}

func init() {
	pf := scoreCmd.PersistentFlags()
	pf.String("format", "table", "output format: table, csv, json or yaml")
	pf.String("output", "", "output file path (default: stdout)")
	pf.Bool("save", false, "save the full result set as a run")
	pf.Int("limit", 0, "maximum number of results to print (0 = all)")

	tf := scoreTriageCmd.Flags()
	tf.String("land-use", "", "land use, or all")
	tf.String("owner", "", "owner class: lra, city, private, or all")
	tf.String("type", "", "property type: lot, building, or all")
	tf.String("neighborhood", "", "neighborhood code, or all")
	tf.Float64("min-score", 0, "minimum triage score")
	tf.Float64("max-score", 0, "maximum triage score (unbounded unless set)")

	scoreCmd.AddCommand(scoreEquityCmd, scoreMetricsCmd, scoreDistressCmd, scoreTriageCmd)
	rootCmd.AddCommand(scoreCmd)
}

// scoreFunc computes a result set and its table rendering.
type scoreFunc func(ds *model.Dataset) (records any, tbl table, n int)

func runScore(cmd *cobra.Command, kind model.RunKind, fn scoreFunc) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("score"); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	limit, _ := cmd.Flags().GetInt("limit")
	if err := validateFormat(format); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "score"), zap.String("kind", string(kind)))

	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	records, tbl, n := fn(ds)
	log.Info("scoring complete", zap.Int("results", n))

	if save {
		id, err := saveRun(ctx, kind, records)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Saved run %s (%d %s results)\n", id, n, kind)
	}

	records, tbl = applyLimit(records, tbl, limit)
	return writeOutput(outputPath, format, records, tbl)
}

func saveRun(ctx context.Context, kind model.RunKind, records any) (string, error) {
	st, err := initStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.SaveRun(ctx, kind, records)
	if err != nil {
		return "", eris.Wrap(err, "score: save run")
	}
	return run.ID, nil
}

// applyLimit truncates both renderings to the first limit entries.
func applyLimit(records any, tbl table, limit int) (any, table) {
	if limit <= 0 || limit >= len(tbl.rows) {
		return records, tbl
	}
	tbl.rows = tbl.rows[:limit]
	switch rs := records.(type) {
	case []model.EquityGapResult:
		records = rs[:limit]
	case []model.NeighborhoodMetrics:
		records = rs[:limit]
	case []model.AffectedScore:
		records = rs[:limit]
	case []model.VacantProperty:
		records = rs[:limit]
	}
	return records, tbl
}

func triageFilter(cmd *cobra.Command) vacancy.Filter {
	f := vacancy.Filter{}
	f.LandUse, _ = cmd.Flags().GetString("land-use")
	f.Owner, _ = cmd.Flags().GetString("owner")
	f.PropertyType, _ = cmd.Flags().GetString("type")
	f.Neighborhood, _ = cmd.Flags().GetString("neighborhood")
	f.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	if cmd.Flags().Changed("max-score") {
		maxScore, _ := cmd.Flags().GetFloat64("max-score")
		f = f.WithMaxScore(maxScore)
	}
	if n, err := strconv.Atoi(f.Neighborhood); err == nil && n >= 0 {
		f.Neighborhood = model.NeighborhoodCode(n)
	}
	return f
}

func equityOptions() equity.Options {
	return equity.Options{IndexKind: cfg.Equity.Index, CellMiles: cfg.Equity.GridCellMiles}
}

func metricsOptions() metrics.Options {
	return metrics.Options{IndexKind: cfg.Equity.Index, CellMiles: cfg.Equity.GridCellMiles}
}
