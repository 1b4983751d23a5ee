package dataset

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/civic-cli/internal/config"
	"github.com/sells-group/civic-cli/internal/geo"
	"github.com/sells-group/civic-cli/internal/model"
)

func TestLoadNeighborhoodsGeoJSON(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "neighborhoods.geojson", neighborhoodsGeoJSON)

	got, err := LoadNeighborhoodsGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, got, 2, "feature without a code is skipped")

	assert.Equal(t, "01", got[0].Code)
	assert.Equal(t, "Carondelet", got[0].Name)
	assert.Equal(t, "15", got[1].Code)
	assert.Equal(t, "Tower Grove South", got[1].Name)
	assert.IsType(t, &geom.MultiPolygon{}, got[1].Boundary)
}

func TestLoadNeighborhoodsGeoJSON_AxisOrder(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "neighborhoods.geojson", neighborhoodsGeoJSON)
	got, err := LoadNeighborhoodsGeoJSON(path)
	require.NoError(t, err)

	c, err := geo.Centroid(got[0].Boundary)
	require.NoError(t, err)
	// GeoJSON stores [lon, lat]; the centroid must come back as lat/lon.
	assert.InDelta(t, 38.56, c.Lat, 1e-9)
	assert.InDelta(t, -90.25, c.Lon, 1e-9)
}

func TestLoadTractsGeoJSON(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "tracts.geojson", tractsGeoJSON)

	got, err := LoadTractsGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "29510101100", got[0].GEOID)
	assert.Equal(t, "Census Tract 1011", got[0].Name)
	assert.True(t, got[0].LILA)
	assert.Equal(t, 2750, got[0].Population)
	assert.InDelta(t, 38.5, got[0].PovertyRate, 1e-9)
	assert.InDelta(t, 0.31, got[0].VehicleAccessRate, 1e-9)
	assert.NotNil(t, got[0].Boundary)

	assert.False(t, got[1].LILA)
	assert.Equal(t, 1900, got[1].Population)
}

func TestLoadGroceriesGeoJSON_SkipsNonPoints(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "groceries.geojson", groceriesGeoJSON)

	got, err := LoadGroceriesGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Schnucks Grand", got[0].Name)
	assert.Equal(t, "Schnucks", got[0].Chain)
	assert.Equal(t, model.LatLon{Lat: 38.6117, Lon: -90.2431}, got[0].Location)
}

func TestLoadStopsGeoJSON_FallsBackToFeatureID(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "stops.geojson", stopsGeoJSON)

	got, err := LoadStopsGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "4401", got[0].ID)
	assert.Equal(t, "Grand @ Arsenal", got[0].Name)
	assert.Equal(t, "S2", got[1].ID)
	assert.InDelta(t, 38.6033, got[1].Location.Lat, 1e-9)
}

func TestLoadGeoJSON_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTractsGeoJSON(filepath.Join(dir, "missing.geojson"))
	assert.Error(t, err)

	bad := writeTestFile(t, dir, "bad.geojson", `{"type": "Feature"}`)
	_, err = LoadTractsGeoJSON(bad)
	assert.Error(t, err)
}

func writeTestShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neighborhoods.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NHD_NUM", 4),
		shp.StringField("NHD_NAME", 40),
	}))

	shapes := []struct {
		code, name string
		parts      [][]shp.Point
	}{
		{"7", "SOULARD", [][]shp.Point{{
			{X: -90.21, Y: 38.60}, {X: -90.19, Y: 38.60}, {X: -90.19, Y: 38.62}, {X: -90.21, Y: 38.62},
		}}},
		{"", "NO CODE", [][]shp.Point{{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
		}}},
	}
	for _, s := range shapes {
		poly := shp.Polygon(*shp.NewPolyLine(s.parts))
		row := int(w.Write(&poly))
		require.NoError(t, w.WriteAttribute(row, 0, s.code))
		require.NoError(t, w.WriteAttribute(row, 1, s.name))
	}
	w.Close()
	return path
}

func TestLoadNeighborhoodsShapefile(t *testing.T) {
	path := writeTestShapefile(t)

	got, err := LoadNeighborhoodsShapefile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "07", got[0].Code)
	assert.Equal(t, "Soulard", got[0].Name)

	c, err := geo.Centroid(got[0].Boundary)
	require.NoError(t, err)
	assert.InDelta(t, 38.61, c.Lat, 1e-9)
	assert.InDelta(t, -90.20, c.Lon, 1e-9)
}

func TestLoadNeighborhoodsShapefile_Missing(t *testing.T) {
	_, err := LoadNeighborhoodsShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}

func TestPolygonToMultiPolygon(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))

	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{
		{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}},
		{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}},
	}))
	mp := polygonToMultiPolygon(&poly)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 4326, mp.SRID())
	assert.Equal(t, []geom.Coord{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, mp.Polygon(0).Coords()[0])
}

func TestLoadStopStatsCSV(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "stop_stats.csv", stopStatsCSV)

	got, err := LoadStopStatsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2, "rows without a stop id are dropped")
	assert.Equal(t, model.StopStats{StopID: "4401", DailyTrips: 96, Routes: []string{"70", "94"}}, got["4401"])
	assert.Equal(t, []string{"11", "30", "31"}, got["S2"].Routes)
}

func assertVacancies(t *testing.T, got []model.VacantProperty) {
	t.Helper()
	require.Len(t, got, 2, "rows without coordinates are dropped")

	p1 := got[0]
	assert.Equal(t, "P1", p1.ID)
	assert.Equal(t, "1234 N Market St", p1.Address)
	assert.Equal(t, "01", p1.NeighborhoodCode)
	assert.Equal(t, model.LatLon{Lat: 38.56, Lon: -90.25}, p1.Location)
	assert.Equal(t, 4, p1.Condition)
	assert.Equal(t, 6, p1.TaxDelinquentYears)
	assert.Equal(t, 3, p1.ViolationCount)
	assert.InDelta(t, 4500, p1.LotSqFt, 1e-9)
	assert.Equal(t, model.OwnerLRA, p1.OwnerClass)
	assert.Equal(t, "residential", p1.LandUse)
	assert.Equal(t, model.PropertyLot, p1.PropertyType)
	assert.Equal(t, 12, p1.NearbyComplaints)

	p2 := got[1]
	assert.Equal(t, model.UnmatchedNeighborhood, p2.NeighborhoodCode)
	assert.Equal(t, model.OwnerPrivate, p2.OwnerClass)
	assert.Equal(t, model.PropertyBuilding, p2.PropertyType)
}

func TestLoadVacanciesCSV(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "vacancies.csv", vacanciesCSV)
	got, err := LoadVacanciesCSV(path)
	require.NoError(t, err)
	assertVacancies(t, got)
}

func writeTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Vacancies")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "vacancies.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadVacanciesXLSX(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"id", "address", "neighborhood", "lat", "lon", "condition", "tax_delinquent_years", "violation_count", "lot_sq_ft", "owner_class", "land_use", "property_type", "nearby_complaints"},
		{"P1", "1234  n market st", "1", "38.56", "-90.25", "4", "6", "3", "4,500", "Land Reutilization Authority", "Residential", "Lot", "12"},
		{"P2", "55 Oak Ave", "", "38.60", "-90.26", "2", "0", "0", "3000", "ACME Holdings LLC", "commercial", "building", "0"},
		{"P3", "No Location", "15", "", "", "3", "1", "1", "1000", "city", "residential", "lot", "1"},
	})
	got, err := LoadVacanciesXLSX(path)
	require.NoError(t, err)
	assertVacancies(t, got)
}

func TestLoadComplaintsCSV(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "complaints.csv", complaintsCSV)

	got, err := LoadComplaintsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 3, "rows with unparseable dates are dropped")
	assert.Equal(t, "01", got[0].NeighborhoodCode)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC), got[1].Date)
	assert.Equal(t, model.UnmatchedNeighborhood, got[2].NeighborhoodCode)
}

func TestLoadWeatherCSV_Sorted(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "weather.csv", weatherCSV)

	got, err := LoadWeatherCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Date.Day())
	assert.Equal(t, 100.0, got[0].Count)
	assert.Equal(t, 0.8, got[1].PrecipInches)
	assert.Equal(t, 80.0, got[1].TempHighF)
}

func TestLoadWeatherCSV_BadDate(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "weather.csv", "date,count\nyesterday,4\n")
	_, err := LoadWeatherCSV(path)
	assert.Error(t, err)
}

func TestLoadCountsJSON(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadCountsJSON(writeTestFile(t, dir, "crime.json", crimeJSON))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"01": 812, "15": 240, "02": 19}, got)

	_, err = LoadCountsJSON(writeTestFile(t, dir, "bad.json", `{"north": 3}`))
	assert.Error(t, err)
}

func TestLoadDemographicsJSON(t *testing.T) {
	got, err := LoadDemographicsJSON(writeTestFile(t, t.TempDir(), "demographics.json", demographicsJSON))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.Demographics{Code: "01", Pop2010: 8661, Pop2020: 7766, PopChange10to20: -10.3}, got["01"])
	assert.InDelta(t, 4.3, got["15"].PopChange10to20, 1e-9)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"TOWER GROVE SOUTH", "Tower Grove South"},
		{"  the   hill ", "The Hill"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in))
	}
}

func TestNeighborhoodCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7", "07", true},
		{"07", "07", true},
		{"79.0", "79", true},
		{"", "", false},
		{"7.5", "", false},
		{"-1", "", false},
		{"north", "", false},
	}
	for _, tt := range tests {
		got, ok := neighborhoodCode(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	paths := config.DataConfig{
		Neighborhoods: writeTestFile(t, dir, "neighborhoods.geojson", neighborhoodsGeoJSON),
		Tracts:        writeTestFile(t, dir, "tracts.geojson", tractsGeoJSON),
		Stops:         writeTestFile(t, dir, "stops.geojson", stopsGeoJSON),
		StopStats:     writeTestFile(t, dir, "stop_stats.csv", stopStatsCSV),
		Groceries:     writeTestFile(t, dir, "groceries.geojson", groceriesGeoJSON),
		Vacancies:     writeTestFile(t, dir, "vacancies.csv", vacanciesCSV),
		Crime:         writeTestFile(t, dir, "crime.json", crimeJSON),
		ComplaintLog:  writeTestFile(t, dir, "complaints.csv", complaintsCSV),
		Weather:       writeTestFile(t, dir, "weather.csv", weatherCSV),
	}

	ds, err := LoadAll(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, ds.Neighborhoods, 2)
	assert.Len(t, ds.Tracts, 2)
	assert.Len(t, ds.Stops, 2)
	assert.Len(t, ds.StopStats, 2)
	assert.Len(t, ds.Groceries, 1)
	assert.Len(t, ds.Vacancies, 2)
	assert.Len(t, ds.Crime, 3)
	assert.Len(t, ds.ComplaintLog, 3)
	assert.Len(t, ds.Weather, 2)

	// Unconfigured datasets stay absent.
	assert.Nil(t, ds.Complaints)
	assert.Nil(t, ds.Demographics)
}

func TestLoadAll_ShapefileAndXLSX(t *testing.T) {
	paths := config.DataConfig{
		Neighborhoods: writeTestShapefile(t),
		Vacancies: writeTestXLSX(t, [][]string{
			{"id", "lat", "lon"},
			{"V1", "38.6", "-90.2"},
		}),
	}
	ds, err := LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, ds.Neighborhoods, 1)
	assert.Equal(t, "07", ds.Neighborhoods[0].Code)
	require.Len(t, ds.Vacancies, 1)
	assert.Equal(t, "V1", ds.Vacancies[0].ID)
	assert.Nil(t, ds.Groceries)
}

func TestLoadAll_Empty(t *testing.T) {
	ds, err := LoadAll(context.Background(), config.DataConfig{})
	require.NoError(t, err)
	assert.Equal(t, &model.Dataset{}, ds)
}

func TestLoadAll_FailureIsReported(t *testing.T) {
	dir := t.TempDir()
	paths := config.DataConfig{
		Tracts: writeTestFile(t, dir, "tracts.geojson", tractsGeoJSON),
		Crime:  filepath.Join(dir, "missing.json"),
	}
	_, err := LoadAll(context.Background(), paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset: load crime")
}

func TestLoadAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := LoadAll(ctx, config.DataConfig{
		Tracts: writeTestFile(t, dir, "tracts.geojson", tractsGeoJSON),
	})
	assert.Error(t, err)
}
