// Package server exposes the screening calculator over HTTP: an HTML form,
// a JSON API, health and metrics endpoints.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/caremetrics/stress-screen/internal/config"
	"github.com/caremetrics/stress-screen/internal/predict"
	"github.com/caremetrics/stress-screen/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Server serves the calculator. Construct one with New; the zero value is not
// usable.
type Server struct {
	schema   *schema.Schema
	pipeline *predict.Pipeline
	baseThr  float64
	metrics  *Metrics
	tmpl     *template.Template
	router   chi.Router
}

// New wires the router, templates, and metrics over a scoring pipeline.
// baseThreshold seeds the form's threshold slider and is the default for API
// requests that omit one.
func New(cfg config.ServerConfig, s *schema.Schema, p *predict.Pipeline, baseThreshold float64) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, eris.Wrap(err, "server: parse templates")
	}

	srv := &Server{
		schema:   s,
		pipeline: p,
		baseThr:  baseThreshold,
		metrics:  NewMetrics(),
		tmpl:     tmpl,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))

	r.Get("/", srv.handleIndex)
	r.Post("/predict", srv.handleFormPredict)
	r.Post("/api/v1/predict", srv.handleAPIPredict)
	r.Get("/health", srv.handleHealth)
	r.Method(http.MethodGet, "/metrics", srv.metrics.Handler())

	srv.router = r
	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) basePage() pageData {
	numeric, categorical := buildFieldViews(s.schema)
	return pageData{
		NumericFields:     numeric,
		CategoricalFields: categorical,
		Threshold:         fmt.Sprintf("%.2f", s.baseThr),
		ShowAttribution:   true,
	}
}
