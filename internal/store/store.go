// Package store persists scoring runs so results can be diffed over time.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/civic-cli/internal/model"
)

// SRID of every stored centroid.
const SRID = 4326

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   model.RunKind `json:"kind,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

// Store defines the persistence interface for scoring runs.
type Store interface {
	// SaveRun stores records as a new run. records must be the slice type
	// the kind's scorer returns.
	SaveRun(ctx context.Context, kind model.RunKind, records any) (*model.Run, error)
	// GetRun returns a run with its payload and per-entity scores.
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns run headers, newest first, without payload or scores.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

// newRun builds the run header, payload and score rows shared by both backends.
func newRun(kind model.RunKind, records any) (*model.Run, error) {
	if !kind.Valid() {
		return nil, eris.Errorf("store: unknown run kind %q", kind)
	}
	scores, err := scoreRows(kind, records)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal payload")
	}
	return &model.Run{
		ID:          uuid.New().String(),
		Kind:        kind,
		RecordCount: len(scores),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		Payload:     payload,
		Scores:      scores,
	}, nil
}

func scoreRows(kind model.RunKind, records any) ([]model.RunScore, error) {
	var out []model.RunScore
	switch rs := records.(type) {
	case []model.EquityGapResult:
		if kind != model.RunEquity {
			break
		}
		out = make([]model.RunScore, 0, len(rs))
		for _, r := range rs {
			out = append(out, model.RunScore{Key: r.GEOID, Score: r.Score, Centroid: r.Centroid})
		}
		return out, nil
	case []model.NeighborhoodMetrics:
		if kind != model.RunMetrics {
			break
		}
		out = make([]model.RunScore, 0, len(rs))
		for _, r := range rs {
			out = append(out, model.RunScore{Key: r.Code, Score: r.CompositeScore, Centroid: r.Centroid})
		}
		return out, nil
	case []model.AffectedScore:
		if kind != model.RunDistress {
			break
		}
		out = make([]model.RunScore, 0, len(rs))
		for _, r := range rs {
			out = append(out, model.RunScore{Key: r.Code, Score: r.Composite, Centroid: r.Centroid})
		}
		return out, nil
	case []model.VacantProperty:
		if kind != model.RunTriage {
			break
		}
		out = make([]model.RunScore, 0, len(rs))
		for _, r := range rs {
			out = append(out, model.RunScore{Key: r.ID, Score: r.TriageScore, Centroid: r.Location})
		}
		return out, nil
	}
	return nil, eris.Errorf("store: records of type %T do not match run kind %q", records, kind)
}

// encodeCentroid returns the EWKB encoding of p as an SRID 4326 point.
// EWKB is x/y, so longitude goes first.
func encodeCentroid(p model.LatLon) ([]byte, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(SRID)
	b, err := ewkb.Marshal(pt, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode centroid")
	}
	return b, nil
}

func decodeCentroid(b []byte) (model.LatLon, error) {
	g, err := ewkb.Unmarshal(b)
	if err != nil {
		return model.LatLon{}, eris.Wrap(err, "store: decode centroid")
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return model.LatLon{}, eris.Errorf("store: centroid is %T, want point", g)
	}
	return model.LatLon{Lat: pt.Y(), Lon: pt.X()}, nil
}
