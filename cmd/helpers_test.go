package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/civic-cli/internal/config"
)

// testConfig returns a config that passes Validate for every mode, backed
// by a SQLite file in a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
		Equity: config.EquityConfig{Index: "linear", GridCellMiles: 0.5},
		Triage: config.TriageConfig{
			ConditionWeight: 30,
			TaxWeight:       20,
			ViolationWeight: 20,
			ComplaintWeight: 15,
			OwnershipWeight: 10,
			LotSizeWeight:   5,
			MaxTaxYears:     10,
			MaxViolations:   10,
			MaxComplaints:   25,
			LargeLotSqFt:    10000,
		},
		Weather: config.WeatherConfig{RainyInches: 0.1, HotF: 85, HeavyRainInches: 0.5, MovingAvgWindow: 7},
		Server:  config.ServerConfig{Port: 8080},
		Log:     config.LogConfig{Level: "error", Format: "json"},
	}
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeCommand runs the root command with args and restores every flag
// to its default afterwards, since cobra keeps parsed values between runs.
func executeCommand(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

const neighborhoodsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"NHD_NUM": 1, "NHD_NAME": "Carondelet"},
      "geometry": {"type": "Polygon", "coordinates": [[[-90.26, 38.55], [-90.24, 38.55], [-90.24, 38.57], [-90.26, 38.57]]]}
    },
    {
      "type": "Feature",
      "properties": {"NHD_NUM": 15, "NHD_NAME": "Tower Grove South"},
      "geometry": {"type": "Polygon", "coordinates": [[[-90.27, 38.59], [-90.25, 38.59], [-90.25, 38.61], [-90.27, 38.61]]]}
    }
  ]
}`

const crimeJSON = `{"1": 812, "15": 240}`
