package dataset

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/model"
)

// LoadNeighborhoodsShapefile reads neighborhood boundaries from the city's
// shapefile export. Coordinates must already be WGS84 longitude/latitude.
func LoadNeighborhoodsShapefile(path string) ([]model.Neighborhood, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	attr := func(names ...string) string {
		for _, n := range names {
			if idx, ok := fieldIdx[n]; ok {
				if v := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00")); v != "" {
					return v
				}
			}
		}
		return ""
	}

	out := make([]model.Neighborhood, 0)
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		code, ok := neighborhoodCode(attr("nhd_num", "code"))
		poly, isPoly := shape.(*shp.Polygon)
		if !ok || !isPoly {
			skipped++
			continue
		}
		boundary := polygonToMultiPolygon(poly)
		if boundary == nil {
			skipped++
			continue
		}
		out = append(out, model.Neighborhood{
			Code:     code,
			Name:     normalizeName(attr("nhd_name", "name")),
			Boundary: boundary,
		})
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "dataset: read shapefile %s", path)
	}

	if skipped > 0 {
		zap.L().Warn("dataset: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// polygonToMultiPolygon converts each part of a shapefile polygon into its
// own polygon. The first part is the outer ring the centroid is taken from.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start >= end {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("dataset: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("dataset: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
