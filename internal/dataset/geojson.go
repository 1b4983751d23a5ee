// Package dataset loads the civic datasets from disk into a model.Dataset.
package dataset

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/geo"
	"github.com/sells-group/civic-cli/internal/model"
)

// readFeatures decodes a GeoJSON FeatureCollection file.
func readFeatures(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(data); err != nil {
		return nil, eris.Wrapf(err, "dataset: decode geojson %s", path)
	}
	return fc.Features, nil
}

// LoadNeighborhoodsGeoJSON reads neighborhood boundaries. The code comes
// from the first of NHD_NUM, code or id; the name from NHD_NAME or name.
func LoadNeighborhoodsGeoJSON(path string) ([]model.Neighborhood, error) {
	features, err := readFeatures(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Neighborhood, 0, len(features))
	for i, f := range features {
		code, ok := neighborhoodCode(propString(f.Properties, "NHD_NUM", "code", "id"))
		if !ok {
			zap.L().Warn("dataset: skipping neighborhood without code",
				zap.String("path", path), zap.Int("feature", i))
			continue
		}
		out = append(out, model.Neighborhood{
			Code:     code,
			Name:     normalizeName(propString(f.Properties, "NHD_NAME", "name")),
			Boundary: f.Geometry,
		})
	}
	return out, nil
}

// LoadTractsGeoJSON reads USDA food access atlas tracts.
func LoadTractsGeoJSON(path string) ([]model.FoodDesertTract, error) {
	features, err := readFeatures(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.FoodDesertTract, 0, len(features))
	for _, f := range features {
		p := f.Properties
		out = append(out, model.FoodDesertTract{
			GEOID:             propString(p, "GEOID", "CensusTract", "geoid"),
			Name:              propString(p, "NAMELSAD", "name"),
			LILA:              propBool(p, "LILATracts_1And10", "lila"),
			Population:        int(propFloat(p, "POP2010", "population")),
			PovertyRate:       propFloat(p, "PovertyRate", "poverty_rate"),
			VehicleAccessRate: propFloat(p, "lahunv1share", "vehicle_access_rate"),
			Boundary:          f.Geometry,
		})
	}
	return out, nil
}

// LoadGroceriesGeoJSON reads grocery store points.
func LoadGroceriesGeoJSON(path string) ([]model.GroceryStore, error) {
	features, err := readFeatures(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.GroceryStore, 0, len(features))
	for i, f := range features {
		loc, ok := pointLocation(path, i, f.Geometry)
		if !ok {
			continue
		}
		out = append(out, model.GroceryStore{
			Name:     propString(f.Properties, "name", "Name"),
			Chain:    propString(f.Properties, "chain", "brand"),
			Location: loc,
		})
	}
	return out, nil
}

// LoadStopsGeoJSON reads transit stop points.
func LoadStopsGeoJSON(path string) ([]model.TransitStop, error) {
	features, err := readFeatures(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.TransitStop, 0, len(features))
	for i, f := range features {
		loc, ok := pointLocation(path, i, f.Geometry)
		if !ok {
			continue
		}
		id := propString(f.Properties, "stop_id", "id")
		if id == "" {
			id = f.ID
		}
		out = append(out, model.TransitStop{
			ID:       id,
			Name:     propString(f.Properties, "stop_name", "name"),
			Location: loc,
		})
	}
	return out, nil
}

func pointLocation(path string, i int, g geom.T) (model.LatLon, bool) {
	p, ok := g.(*geom.Point)
	if !ok {
		zap.L().Warn("dataset: skipping non-point feature",
			zap.String("path", path), zap.Int("feature", i))
		return model.LatLon{}, false
	}
	loc, err := geo.PointOf(p)
	if err != nil {
		zap.L().Warn("dataset: skipping empty point",
			zap.String("path", path), zap.Int("feature", i), zap.Error(err))
		return model.LatLon{}, false
	}
	return loc, true
}

// propString returns the first non-empty property among keys, formatted
// as a string.
func propString(props map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := props[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func propFloat(props map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		switch v := props[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func propBool(props map[string]interface{}, keys ...string) bool {
	for _, k := range keys {
		switch v := props[k].(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			return parseBool(v)
		}
	}
	return false
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}
