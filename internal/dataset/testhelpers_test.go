package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestFile writes content to name inside dir and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const neighborhoodsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"NHD_NUM": 1, "NHD_NAME": "CARONDELET"},
      "geometry": {"type": "Polygon", "coordinates": [[[-90.26, 38.55], [-90.24, 38.55], [-90.24, 38.57], [-90.26, 38.57]]]}
    },
    {
      "type": "Feature",
      "properties": {"NHD_NUM": "15", "NHD_NAME": "tower  grove south"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-90.27, 38.59], [-90.25, 38.59], [-90.25, 38.61], [-90.27, 38.61]]]]}
    },
    {
      "type": "Feature",
      "properties": {"NHD_NAME": "No Code"},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1]]]}
    }
  ]
}`

const tractsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"GEOID": "29510101100", "NAMELSAD": "Census Tract 1011", "LILATracts_1And10": 1, "POP2010": 2750, "PovertyRate": 38.5, "lahunv1share": 0.31},
      "geometry": {"type": "Polygon", "coordinates": [[[-90.252, 38.598], [-90.248, 38.598], [-90.248, 38.602], [-90.252, 38.602]]]}
    },
    {
      "type": "Feature",
      "properties": {"GEOID": "29510101200", "LILATracts_1And10": "0", "POP2010": "1900"},
      "geometry": {"type": "Polygon", "coordinates": [[[-90.3, 38.6], [-90.29, 38.6], [-90.29, 38.61]]]}
    }
  ]
}`

const groceriesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Schnucks Grand", "chain": "Schnucks"}, "geometry": {"type": "Point", "coordinates": [-90.2431, 38.6117]}},
    {"type": "Feature", "properties": {"name": "Broken"}, "geometry": {"type": "LineString", "coordinates": [[-90.2, 38.6], [-90.3, 38.7]]}}
  ]
}`

const stopsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 4401, "properties": {"stop_name": "Grand @ Arsenal"}, "geometry": {"type": "Point", "coordinates": [-90.2433, 38.6005]}},
    {"type": "Feature", "properties": {"stop_id": "S2", "stop_name": "Jefferson @ Gravois"}, "geometry": {"type": "Point", "coordinates": [-90.2195, 38.6033]}}
  ]
}`

const stopStatsCSV = `stop_id,daily_trips,routes
4401,96,70;94
S2,40,11|30 31
,5,8
`

const vacanciesCSV = `id,address,neighborhood,lat,lon,condition,tax_delinquent_years,violation_count,lot_sq_ft,owner_class,land_use,property_type,nearby_complaints
P1,1234  n market st,1,38.56,-90.25,4,6,3,"4,500",Land Reutilization Authority,Residential,Lot,12
P2,55 Oak Ave,,38.60,-90.26,2,0,0,3000,ACME Holdings LLC,commercial,building,0
P3,No Location,15,,,3,1,1,1000,city,residential,lot,1
`

const complaintsCSV = `id,category,neighborhood,date
C1,Refuse,1,2024-05-01
C2,Streets,15,2024-05-02 14:30:00
C3,Refuse,,2024-05-03T08:00:00Z
C4,Refuse,1,not-a-date
`

const weatherCSV = `date,count,precip_inches,temp_high_f
2024-07-02,150,0.8,80
2024-07-01,100,0,90
`

const crimeJSON = `{"1": 812, "15": 240.0, "02": 19}`

const demographicsJSON = `[
  {"code": 1, "pop_2010": 8661, "pop_2020": 7766},
  {"code": "15", "pop_2010": 7000, "pop_2020": 7300, "pop_change_10_20": 4.3}
]`
