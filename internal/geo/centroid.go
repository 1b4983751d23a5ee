package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/civic-cli/internal/model"
)

// ErrInvalidGeometry is returned for geometry that cannot produce a centroid.
var ErrInvalidGeometry = eris.New("geo: invalid geometry")

// PolygonCentroid returns the arithmetic mean of the outer ring's vertices.
// Rings hold GeoJSON [lon, lat] coordinates; the result is in [lat, lon]
// order. Holes and any ring after the first are ignored, so the result is
// an approximation that only holds for roughly convex shapes.
func PolygonCentroid(rings [][]geom.Coord) (model.LatLon, error) {
	if len(rings) == 0 {
		return model.LatLon{}, eris.Wrap(ErrInvalidGeometry, "polygon has no rings")
	}
	outer := rings[0]
	if len(outer) == 0 {
		return model.LatLon{}, eris.Wrap(ErrInvalidGeometry, "outer ring is empty")
	}

	var sumLat, sumLon float64
	for _, c := range outer {
		if len(c) < 2 {
			return model.LatLon{}, eris.Wrap(ErrInvalidGeometry, "coordinate has fewer than two axes")
		}
		sumLon += c[0]
		sumLat += c[1]
	}
	n := float64(len(outer))
	return model.LatLon{Lat: sumLat / n, Lon: sumLon / n}, nil
}

// Centroid computes the centroid of a decoded geometry. MultiPolygons use
// their first polygon; points are returned as-is.
func Centroid(g geom.T) (model.LatLon, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		if t == nil {
			break
		}
		return PolygonCentroid(t.Coords())
	case *geom.MultiPolygon:
		if t == nil || t.NumPolygons() == 0 {
			break
		}
		return PolygonCentroid(t.Polygon(0).Coords())
	case *geom.Point:
		if t == nil {
			break
		}
		return PointOf(t)
	}
	return model.LatLon{}, eris.Wrapf(ErrInvalidGeometry, "unsupported geometry %T", g)
}

// PointOf converts a GeoJSON-ordered point to LatLon.
func PointOf(p *geom.Point) (model.LatLon, error) {
	if p == nil || len(p.FlatCoords()) < 2 {
		return model.LatLon{}, eris.Wrap(ErrInvalidGeometry, "empty point")
	}
	return model.LatLon{Lat: p.Y(), Lon: p.X()}, nil
}
