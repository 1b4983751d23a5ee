package geo

import (
	"math"
	"sort"

	"github.com/sells-group/civic-cli/internal/model"
)

// Index kinds accepted by NewIndex.
const (
	IndexLinear = "linear"
	IndexGrid   = "grid"
)

// DefaultCellMiles is the grid cell edge used when none is configured.
const DefaultCellMiles = 0.5

// Hit is an indexed item found by a query, with its position in the
// original slice and its distance from the query point.
type Hit[T any] struct {
	Item  T
	Index int
	Miles float64
}

// Index answers "nearest neighbors within radius" queries. Implementations
// must return Within hits in input order so callers that stop at the first
// match behave identically regardless of the index used.
type Index[T any] interface {
	Within(center model.LatLon, radiusMiles float64) []Hit[T]
	Nearest(center model.LatLon) (Hit[T], bool)
	Len() int
}

// NewIndex builds an index of the given kind. Unknown kinds fall back to
// the linear index.
func NewIndex[T any](kind string, items []T, loc func(T) model.LatLon, cellMiles float64) Index[T] {
	if kind == IndexGrid {
		return NewGridIndex(items, loc, cellMiles)
	}
	return NewLinearIndex(items, loc)
}

// LinearIndex scans every item on each query.
type LinearIndex[T any] struct {
	items []T
	locs  []model.LatLon
}

// NewLinearIndex creates a brute-force index.
func NewLinearIndex[T any](items []T, loc func(T) model.LatLon) *LinearIndex[T] {
	locs := make([]model.LatLon, len(items))
	for i, it := range items {
		locs[i] = loc(it)
	}
	return &LinearIndex[T]{items: items, locs: locs}
}

// Len returns the number of indexed items.
func (l *LinearIndex[T]) Len() int { return len(l.items) }

// Within returns all items at most radiusMiles from center.
func (l *LinearIndex[T]) Within(center model.LatLon, radiusMiles float64) []Hit[T] {
	var hits []Hit[T]
	for i, p := range l.locs {
		if d := Distance(center, p); d <= radiusMiles {
			hits = append(hits, Hit[T]{Item: l.items[i], Index: i, Miles: d})
		}
	}
	return hits
}

// Nearest returns the closest item. Ties go to the earliest item.
func (l *LinearIndex[T]) Nearest(center model.LatLon) (Hit[T], bool) {
	return nearest(l.items, l.locs, center)
}

type cellKey struct {
	row, col int
}

// GridIndex buckets items into square lat/lon cells so radius queries only
// visit nearby cells.
type GridIndex[T any] struct {
	items   []T
	locs    []model.LatLon
	cellDeg float64
	cells   map[cellKey][]int
}

// NewGridIndex creates a grid index with cells of roughly cellMiles on a side.
func NewGridIndex[T any](items []T, loc func(T) model.LatLon, cellMiles float64) *GridIndex[T] {
	if cellMiles <= 0 {
		cellMiles = DefaultCellMiles
	}
	g := &GridIndex[T]{
		items:   items,
		locs:    make([]model.LatLon, len(items)),
		cellDeg: cellMiles / milesPerDegreeLat,
		cells:   make(map[cellKey][]int),
	}
	for i, it := range items {
		p := loc(it)
		g.locs[i] = p
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *GridIndex[T]) key(p model.LatLon) cellKey {
	return cellKey{
		row: int(math.Floor(p.Lat / g.cellDeg)),
		col: int(math.Floor(p.Lon / g.cellDeg)),
	}
}

// Len returns the number of indexed items.
func (g *GridIndex[T]) Len() int { return len(g.items) }

// Within returns all items at most radiusMiles from center, in input order.
func (g *GridIndex[T]) Within(center model.LatLon, radiusMiles float64) []Hit[T] {
	if len(g.items) == 0 || radiusMiles < 0 || math.IsNaN(radiusMiles) {
		return nil
	}

	latSpan := radiusMiles / milesPerDegreeLat
	cosLat := math.Max(math.Cos(toRad(center.Lat)), 0.01)
	lonSpan := radiusMiles / (milesPerDegreeLat * cosLat)

	lo := g.key(model.LatLon{Lat: center.Lat - latSpan, Lon: center.Lon - lonSpan})
	hi := g.key(model.LatLon{Lat: center.Lat + latSpan, Lon: center.Lon + lonSpan})
	// One cell of slack absorbs the flat-earth error of the box above.
	lo.row--
	lo.col--
	hi.row++
	hi.col++

	var candidates []int
	span := float64(hi.row-lo.row+1) * float64(hi.col-lo.col+1)
	if span > float64(len(g.cells)) {
		for _, idxs := range g.cells {
			candidates = append(candidates, idxs...)
		}
	} else {
		for r := lo.row; r <= hi.row; r++ {
			for c := lo.col; c <= hi.col; c++ {
				candidates = append(candidates, g.cells[cellKey{row: r, col: c}]...)
			}
		}
	}
	sort.Ints(candidates)

	var hits []Hit[T]
	for _, i := range candidates {
		if d := Distance(center, g.locs[i]); d <= radiusMiles {
			hits = append(hits, Hit[T]{Item: g.items[i], Index: i, Miles: d})
		}
	}
	return hits
}

// Nearest returns the closest item. The search is unbounded, so it scans
// every item.
func (g *GridIndex[T]) Nearest(center model.LatLon) (Hit[T], bool) {
	return nearest(g.items, g.locs, center)
}

func nearest[T any](items []T, locs []model.LatLon, center model.LatLon) (Hit[T], bool) {
	best := Hit[T]{Index: -1, Miles: math.Inf(1)}
	for i, p := range locs {
		if d := Distance(center, p); d < best.Miles {
			best = Hit[T]{Item: items[i], Index: i, Miles: d}
		}
	}
	return best, best.Index >= 0
}
