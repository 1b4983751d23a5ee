package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/civic-cli/internal/model"
)

func TestHaversine_ZeroAndSymmetric(t *testing.T) {
	points := [][2]float64{
		{38.6270, -90.1994},
		{38.6359, -90.2845},
		{0, 0},
		{-33.86, 151.21},
	}
	for _, a := range points {
		assert.Equal(t, 0.0, Haversine(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			assert.InDelta(t, Haversine(a[0], a[1], b[0], b[1]), Haversine(b[0], b[1], a[0], a[1]), 1e-9)
		}
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude on a 3959-mile sphere.
	assert.InDelta(t, 69.097, Haversine(0, 0, 1, 0), 0.001)
	// Gateway Arch to the Missouri History Museum in Forest Park.
	assert.InDelta(t, 5.62, Haversine(38.6247, -90.1848, 38.6452, -90.2856), 0.05)
}

func TestPolygonCentroid_UnitSquare(t *testing.T) {
	rings := [][]geom.Coord{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
	c, err := PolygonCentroid(rings)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Lat, 1e-12)
	assert.InDelta(t, 0.5, c.Lon, 1e-12)
}

func TestPolygonCentroid_AxisOrder(t *testing.T) {
	// GeoJSON [lon, lat] in, [lat, lon] out.
	rings := [][]geom.Coord{{{-90.30, 38.60}, {-90.20, 38.60}, {-90.20, 38.70}, {-90.30, 38.70}}}
	c, err := PolygonCentroid(rings)
	require.NoError(t, err)
	assert.InDelta(t, 38.65, c.Lat, 1e-9)
	assert.InDelta(t, -90.25, c.Lon, 1e-9)
}

func TestPolygonCentroid_IgnoresHoles(t *testing.T) {
	rings := [][]geom.Coord{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}},
		{{3, 3}, {3.5, 3}, {3.5, 3.5}, {3, 3.5}},
	}
	c, err := PolygonCentroid(rings)
	require.NoError(t, err)
	assert.Equal(t, model.LatLon{Lat: 2, Lon: 2}, c)
}

func TestPolygonCentroid_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rings [][]geom.Coord
	}{
		{"no rings", nil},
		{"empty outer ring", [][]geom.Coord{{}}},
		{"short coordinate", [][]geom.Coord{{{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PolygonCentroid(tt.rings)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidGeometry))
		})
	}
}

func TestCentroid_Geometries(t *testing.T) {
	square := [][]geom.Coord{{{0, 0}, {2, 0}, {2, 2}, {0, 2}}}
	poly := geom.NewPolygon(geom.XY).MustSetCoords(square)
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{square, {{{10, 10}, {11, 10}, {11, 11}}}})
	pt := geom.NewPointFlat(geom.XY, []float64{-90.2, 38.6})

	c, err := Centroid(poly)
	require.NoError(t, err)
	assert.Equal(t, model.LatLon{Lat: 1, Lon: 1}, c)

	c, err = Centroid(mp)
	require.NoError(t, err)
	assert.Equal(t, model.LatLon{Lat: 1, Lon: 1}, c)

	c, err = Centroid(pt)
	require.NoError(t, err)
	assert.Equal(t, model.LatLon{Lat: 38.6, Lon: -90.2}, c)
}

func TestCentroid_Unsupported(t *testing.T) {
	_, err := Centroid(nil)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))

	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1})
	_, err = Centroid(ls)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))

	_, err = Centroid(geom.NewMultiPolygon(geom.XY))
	assert.True(t, eris.Is(err, ErrInvalidGeometry))
}

func TestStepScore(t *testing.T) {
	bands := []Band{{0.5, 25}, {1, 15}, {2, 5}}
	assert.Equal(t, 25.0, StepScore(0, bands, 0))
	assert.Equal(t, 25.0, StepScore(0.5, bands, 0))
	assert.Equal(t, 15.0, StepScore(0.51, bands, 0))
	assert.Equal(t, 5.0, StepScore(2, bands, 0))
	assert.Equal(t, 0.0, StepScore(2.01, bands, 0))
	assert.Equal(t, 0.0, StepScore(math.Inf(1), bands, 0))
}

type site struct {
	id  int
	loc model.LatLon
}

func siteLoc(s site) model.LatLon { return s.loc }

func randomSites(n int) []site {
	r := rand.New(rand.NewSource(42))
	sites := make([]site, n)
	for i := range sites {
		sites[i] = site{id: i, loc: model.LatLon{
			Lat: 38.53 + r.Float64()*0.25,
			Lon: -90.32 + r.Float64()*0.14,
		}}
	}
	return sites
}

func TestIndex_GridMatchesLinear(t *testing.T) {
	sites := randomSites(400)
	linear := NewLinearIndex(sites, siteLoc)
	grid := NewGridIndex(sites, siteLoc, 0.3)

	centers := randomSites(25)
	for _, c := range centers {
		for _, radius := range []float64{0, 0.25, 0.5, 1, 5, 50} {
			want := linear.Within(c.loc, radius)
			got := grid.Within(c.loc, radius)
			require.Equal(t, len(want), len(got), "radius %v", radius)
			for i := range want {
				assert.Equal(t, want[i].Index, got[i].Index)
				assert.InDelta(t, want[i].Miles, got[i].Miles, 1e-12)
			}
		}

		wantNear, okL := linear.Nearest(c.loc)
		gotNear, okG := grid.Nearest(c.loc)
		require.True(t, okL)
		require.True(t, okG)
		assert.Equal(t, wantNear.Index, gotNear.Index)
	}
}

func TestIndex_WithinInputOrder(t *testing.T) {
	sites := randomSites(200)
	hits := NewGridIndex(sites, siteLoc, 0.1).Within(model.LatLon{Lat: 38.65, Lon: -90.25}, 3)
	require.NotEmpty(t, hits)
	for i := 1; i < len(hits); i++ {
		assert.Less(t, hits[i-1].Index, hits[i].Index)
	}
}

func TestIndex_Empty(t *testing.T) {
	for _, kind := range []string{IndexLinear, IndexGrid} {
		idx := NewIndex[site](kind, nil, siteLoc, 0)
		assert.Equal(t, 0, idx.Len())
		assert.Empty(t, idx.Within(model.LatLon{}, 10))
		_, ok := idx.Nearest(model.LatLon{})
		assert.False(t, ok)
	}
}

func TestIndex_NearestTieGoesFirst(t *testing.T) {
	sites := []site{
		{id: 1, loc: model.LatLon{Lat: 38.6, Lon: -90.2}},
		{id: 2, loc: model.LatLon{Lat: 38.6, Lon: -90.2}},
	}
	hit, ok := NewLinearIndex(sites, siteLoc).Nearest(model.LatLon{Lat: 38.61, Lon: -90.2})
	require.True(t, ok)
	assert.Equal(t, 1, hit.Item.id)
}

func TestNewIndex_Kinds(t *testing.T) {
	sites := randomSites(3)
	_, isGrid := NewIndex(IndexGrid, sites, siteLoc, 0).(*GridIndex[site])
	assert.True(t, isGrid)
	_, isLinear := NewIndex("unknown", sites, siteLoc, 0).(*LinearIndex[site])
	assert.True(t, isLinear)
}
