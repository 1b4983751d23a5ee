package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/civic-cli/internal/breaks"
)

var breaksCmd = &cobra.Command{
	Use:   "breaks",
	Short: "Compute choropleth breakpoints for a list of values",
	Long: `Compute breakpoints for map shading.

percentile: one threshold per bucket, each the value at the bucket's
starting percentile, so every band holds roughly the same count.
dynamic: equal intervals from 0 to the maximum, always strictly ascending.

Examples:
  breaks --kind percentile --buckets 5 --values 12,40,7,93,55
  breaks --kind dynamic --buckets 7 --values 3,18,240`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		n, _ := cmd.Flags().GetInt("buckets")
		raw, _ := cmd.Flags().GetString("values")

		values, err := parseFloats(raw)
		if err != nil {
			return err
		}
		out, err := computeBreaks(kind, values, n)
		if err != nil {
			return err
		}

		parts := make([]string, len(out))
		for i, b := range out {
			parts[i] = strconv.FormatFloat(b, 'f', -1, 64)
		}
		_, err = fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
		return err
	},
}

func init() {
	f := breaksCmd.Flags()
	f.String("kind", "percentile", "break kind: percentile or dynamic")
	f.Int("buckets", 0, "bucket (percentile) or step (dynamic) count; 0 uses the default")
	f.String("values", "", "comma-separated values")
	rootCmd.AddCommand(breaksCmd)
}

func computeBreaks(kind string, values []float64, n int) ([]float64, error) {
	if n > breaks.MaxBuckets {
		return nil, eris.Errorf("breaks: --buckets must be at most %d (got %d)", breaks.MaxBuckets, n)
	}
	switch kind {
	case "percentile":
		return breaks.PercentileBreaks(values, n), nil
	case "dynamic":
		return breaks.DynamicBreaks(values, n), nil
	default:
		return nil, eris.Errorf("breaks: --kind must be percentile or dynamic (got %q)", kind)
	}
}

func parseFloats(raw string) ([]float64, error) {
	parts := splitAndTrim(raw)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, eris.Errorf("breaks: invalid value %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
