package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/civic-cli/internal/aggregate"
	"github.com/sells-group/civic-cli/internal/breaks"
	"github.com/sells-group/civic-cli/internal/distress"
	"github.com/sells-group/civic-cli/internal/metrics"
	"github.com/sells-group/civic-cli/internal/model"
	"github.com/sells-group/civic-cli/internal/vacancy"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"neighborhoods": len(s.ds.Neighborhoods),
		"tracts":        len(s.ds.Tracts),
		"stops":         len(s.ds.Stops),
		"groceries":     len(s.ds.Groceries),
		"vacancies":     len(s.ds.Vacancies),
	})
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	results := s.analyzer().AnalyzeDataset(s.ds)
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.calculator().ComputeAll())
}

func (s *Server) handleNeighborhoodMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.calculator().Compute(normalizeCode(chi.URLParam(r, "code")))
	if err != nil {
		writeMetricsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a := normalizeCode(r.URL.Query().Get("a"))
	b := normalizeCode(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}
	cmp, err := s.calculator().Compare(a, b)
	if err != nil {
		writeMetricsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleDistress(w http.ResponseWriter, r *http.Request) {
	scores := distress.Score(s.ds)
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}
	writeJSON(w, http.StatusOK, scores)
}

type breaksResponse struct {
	Kind   string    `json:"kind"`
	Source string    `json:"source,omitempty"`
	Breaks []float64 `json:"breaks"`
}

// handleBreaks bins either explicit values or the composite scores of a
// scorer named by source.
func (s *Server) handleBreaks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = "percentile"
	}
	n, err := intParam(r, "buckets", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if n > breaks.MaxBuckets {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("buckets must be at most %d", breaks.MaxBuckets))
		return
	}

	source := q.Get("source")
	var values []float64
	if raw := q.Get("values"); raw != "" {
		if values, err = parseValues(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		source = ""
	} else if source != "" {
		if values, err = s.sourceValues(source); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp := breaksResponse{Kind: kind, Source: source}
	switch kind {
	case "percentile":
		resp.Breaks = breaks.PercentileBreaks(values, n)
	case "dynamic":
		resp.Breaks = breaks.DynamicBreaks(values, n)
	default:
		writeError(w, http.StatusBadRequest, "kind must be percentile or dynamic")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sourceValues(source string) ([]float64, error) {
	var out []float64
	switch source {
	case "equity":
		for _, r := range s.analyzer().AnalyzeDataset(s.ds) {
			out = append(out, r.Score)
		}
	case "metrics":
		for _, m := range s.calculator().ComputeAll() {
			out = append(out, m.CompositeScore)
		}
	case "distress":
		for _, d := range distress.Score(s.ds) {
			out = append(out, d.Composite)
		}
	case "triage":
		for _, p := range s.ds.Vacancies {
			out = append(out, p.TriageScore)
		}
	default:
		return nil, eris.Errorf("unknown source %q", source)
	}
	return out, nil
}

func (s *Server) handleVacancies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := vacancy.Filter{
		LandUse:      q.Get("land_use"),
		Owner:        q.Get("owner"),
		PropertyType: q.Get("type"),
		Neighborhood: q.Get("neighborhood"),
	}
	var err error
	if f.MinScore, err = floatParam(r, "min_score"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Has("max_score") {
		maxScore, err := floatParam(r, "max_score")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f = f.WithMaxScore(maxScore)
	}
	if f.Neighborhood != "" && !strings.EqualFold(f.Neighborhood, vacancy.All) {
		f.Neighborhood = normalizeCode(f.Neighborhood)
	}
	writeJSON(w, http.StatusOK, f.Apply(s.ds.Vacancies))
}

type complaintSummaryResponse struct {
	Summary       aggregate.Summary         `json:"summary"`
	Daily         []aggregate.DayCount      `json:"daily"`
	MovingAverage []*float64                `json:"moving_average"`
	Categories    []aggregate.CategoryCount `json:"categories"`
}

func (s *Server) handleComplaintSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := intParam(r, "days", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var f aggregate.ComplaintFilter
	if days > 0 {
		f = aggregate.LastDays(days, s.now())
	}
	if raw := q.Get("category"); raw != "" {
		f.Categories = strings.Split(raw, ",")
	}
	if n := q.Get("neighborhood"); n != "" && !strings.EqualFold(n, "all") {
		f.Neighborhood = normalizeCode(n)
	}

	matched := aggregate.FilterComplaints(s.ds.ComplaintLog, f)
	daily := aggregate.DailyCounts(matched)
	writeJSON(w, http.StatusOK, complaintSummaryResponse{
		Summary:       aggregate.Summarize(daily),
		Daily:         daily,
		MovingAverage: aggregate.MovingAverage(aggregate.Values(daily), s.opts.MovingAvgWindow),
		Categories:    aggregate.CountByCategory(matched),
	})
}

func (s *Server) handleWeatherCorrelation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, aggregate.WeatherCorrelation(s.ds.Weather, s.opts.Weather))
}

func writeMetricsError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, metrics.ErrUnknownNeighborhood):
		writeError(w, http.StatusNotFound, err.Error())
	case eris.Is(err, metrics.ErrSameNeighborhood):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}

// normalizeCode turns "7" into the "07" join key; non-numeric input passes through.
func normalizeCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return model.NeighborhoodCode(n)
	}
	return raw
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, eris.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("%s must be a finite number", name)
	}
	return v, nil
}

func parseValues(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, eris.Errorf("invalid value %q: values must be finite numbers", p)
		}
		out = append(out, v)
	}
	return out, nil
}
