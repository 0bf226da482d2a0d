package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/metrics"
)

// RouterConfig carries the collaborators of the HTTP surface.
type RouterConfig struct {
	Service  *app.QuizService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   logrus.FieldLogger
	// AllowedOrigins defaults to any origin.
	AllowedOrigins []string
}

// NewRouter builds the REST API, the attempt websocket and the ops endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(cfg.Logger), middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(instrument(cfg.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	h := NewHandler(cfg.Service)
	r.Route("/api", func(api chi.Router) {
		api.Route("/quizzes", func(qr chi.Router) {
			qr.Get("/", h.listQuizzes)
			qr.Post("/", h.saveQuiz)
			qr.Route("/{quizID}", func(one chi.Router) {
				one.Get("/", h.getQuiz)
				one.Put("/", h.saveQuiz)
				one.Delete("/", h.deleteQuiz)
				one.Post("/evaluate", h.evaluate)
				one.Get("/stats", h.quizStats)
				one.Post("/attempts", h.startAttempt)
			})
		})
		api.Route("/attempts/{attemptID}", func(ar chi.Router) {
			ar.Get("/", h.getAttempt)
			ar.Post("/navigate", h.navigate)
			ar.Put("/answers/{questionID}", h.recordAnswer)
			ar.Post("/submit", h.submit)
			ar.Post("/exit", h.exit)
		})
		api.Get("/results", h.results)
		api.Get("/stats", h.quizStats)
		api.Get("/dashboard", h.dashboard)
		api.Get("/export", h.export)
		api.Post("/import", h.importSnapshot)
	})

	r.Get("/ws", NewWSHandler(cfg.Service, cfg.Logger).ServeWS)
	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Info("http request")
		})
	}
}

func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
		})
	}
}
