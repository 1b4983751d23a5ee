// Package api serves the scoring core as a read-only JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/civic-cli/internal/aggregate"
	"github.com/sells-group/civic-cli/internal/config"
	"github.com/sells-group/civic-cli/internal/equity"
	"github.com/sells-group/civic-cli/internal/metrics"
	"github.com/sells-group/civic-cli/internal/model"
)

// Options tunes the scorers and the HTTP surface.
type Options struct {
	IndexKind       string
	CellMiles       float64
	Weather         aggregate.Thresholds
	MovingAvgWindow int
	AllowedOrigins  []string
	RateLimitRPS    float64 // 0 disables limiting
	RateLimitBurst  int
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		IndexKind: cfg.Equity.Index,
		CellMiles: cfg.Equity.GridCellMiles,
		Weather: aggregate.Thresholds{
			RainyInches:     cfg.Weather.RainyInches,
			HotF:            cfg.Weather.HotF,
			HeavyRainInches: cfg.Weather.HeavyRainInches,
		},
		MovingAvgWindow: cfg.Weather.MovingAvgWindow,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimitRPS:    cfg.Server.RateLimitRPS,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	}
}

// Server answers every request by recomputing from a read-only dataset, so
// handlers share it without locking.
type Server struct {
	ds   *model.Dataset
	opts Options
	now  func() time.Time
}

// New creates a Server over ds.
func New(ds *model.Dataset, opts Options) *Server {
	if opts.MovingAvgWindow <= 0 {
		opts.MovingAvgWindow = aggregate.DefaultWindow
	}
	return &Server{ds: ds, opts: opts, now: time.Now}
}

// Handler builds the chi router with CORS, rate limiting and request logging.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.opts.RateLimitRPS > 0 {
		burst := s.opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimitRPS), burst)))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/equity", s.handleEquity)
	r.Route("/neighborhoods", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Get("/compare", s.handleCompare)
		r.Get("/{code}/metrics", s.handleNeighborhoodMetrics)
	})
	r.Get("/distress", s.handleDistress)
	r.Get("/breaks", s.handleBreaks)
	r.Get("/vacancies", s.handleVacancies)
	r.Get("/complaints/summary", s.handleComplaintSummary)
	r.Get("/weather/correlation", s.handleWeatherCorrelation)
	return r
}

func (s *Server) analyzer() *equity.Analyzer {
	return equity.NewAnalyzer(equity.Options{IndexKind: s.opts.IndexKind, CellMiles: s.opts.CellMiles})
}

func (s *Server) calculator() *metrics.Calculator {
	return metrics.NewCalculator(s.ds, metrics.Options{IndexKind: s.opts.IndexKind, CellMiles: s.opts.CellMiles})
}

func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("component", "api"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
