// Package api serves the question pipeline and the direct graph queries over
// HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/coach"
	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/metrics"
)

// Options configures the router.
type Options struct {
	// Timeout bounds one request; 0 disables.
	Timeout time.Duration

	// CounterLimit is used when a counter request has no limit parameter.
	CounterLimit int

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewRouter builds the HTTP handler. svc answers free-text questions and q
// serves the direct query routes.
func NewRouter(svc *coach.Service, q dispatch.Querier, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CounterLimit <= 0 {
		opts.CounterLimit = dispatch.DefaultCounterLimit
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.Timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	h := &handler{svc: svc, q: q, counterLimit: opts.CounterLimit, logger: logger}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", h.Ask)
		r.Post("/classify", h.Classify)
		r.Get("/counters/{champion}", h.Counters)
		r.Get("/mechanics/{mechanic}", h.Mechanics)
		r.Get("/archetypes/{archetype}/counters", h.ArchetypeCounters)
		r.Get("/vocabulary", h.Vocabulary)
	})

	return r
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
