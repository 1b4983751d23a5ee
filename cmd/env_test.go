package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/civic-cli/internal/config"
	"github.com/sells-group/civic-cli/internal/store"
)

func TestInitStore_SQLite(t *testing.T) {
	cfg = testConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs, "fresh store is migrated and empty")
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg = &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	_, err = os.Stat(filepath.Join(tmpDir, "civic.db"))
	assert.NoError(t, err)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver: mysql")
}

func TestInitStore_PostgresBadURL(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "postgres", DatabaseURL: "://not-a-url"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(t)
	cfg.Data = config.DataConfig{
		Neighborhoods: writeTestFile(t, dir, "nhd.geojson", neighborhoodsGeoJSON),
		Crime:         writeTestFile(t, dir, "crime.json", crimeJSON),
		Vacancies: writeTestFile(t, dir, "vacancies.csv", `id,address,neighborhood,lat,lon,condition,tax_delinquent_years,violation_count,lot_sq_ft,owner_class,land_use,property_type,nearby_complaints
P1,1 Main St,1,38.56,-90.25,5,10,10,12000,lra,residential,building,25
`),
	}

	ds, err := loadDataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Neighborhoods, 2)
	assert.Equal(t, 812, ds.Crime["01"])
	require.Len(t, ds.Vacancies, 1)
	assert.Greater(t, ds.Vacancies[0].TriageScore, 0.0, "vacancies are triaged on load")
}

func TestLoadDataset_BadTriageWeights(t *testing.T) {
	cfg = testConfig(t)
	cfg.Triage.ConditionWeight = 0

	_, err := loadDataset(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triage config")
}

func TestLoadDataset_MissingFile(t *testing.T) {
	cfg = testConfig(t)
	cfg.Data.Crime = filepath.Join(t.TempDir(), "missing.json")

	_, err := loadDataset(context.Background())
	require.Error(t, err)
}
