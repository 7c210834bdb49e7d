// Package web serves the volcano plot pages, the PNG endpoint, and the JSON API.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"volcanoweb/internal/config"
	"volcanoweb/internal/dataset"
	"volcanoweb/internal/render"
	"volcanoweb/internal/session"
)

// Server holds what the handlers share between requests.
type Server struct {
	store      session.Store
	renderer   *render.Renderer
	loadOpts   dataset.Options
	labelCount int
	maxUpload  int64
	title      string
}

// NewRouter wires all dependencies and returns the chi router.
func NewRouter(cfg *config.Config, store session.Store, renderer *render.Renderer) http.Handler {
	s := &Server{
		store:    store,
		renderer: renderer,
		loadOpts: dataset.Options{
			Delimiter: cfg.Loader.Delimiter,
			MaxRows:   cfg.Loader.MaxRows,
		},
		labelCount: cfg.Plot.LabelCount,
		maxUpload:  cfg.Server.MaxUploadBytes,
		title:      cfg.Plot.Title,
	}

	r := chi.NewRouter()
	r.Use(zerologMiddleware)
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	r.Get("/api/health", handleHealth)
	r.Post("/api/validate", s.handleValidate)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(cfg.Session.TTL))
		r.Get("/", s.handleIndex)
		r.Post("/upload", s.handleUpload)
		r.Get("/plot.png", s.handlePlot)
		r.Get("/api/volcano", s.handleVolcano)
	})

	return r
}

// accept is the file input's accept attribute.
func accept() string {
	return strings.Join(append(append([]string{}, dataset.SupportedExtensions...), ".gz"), ",")
}

var startTime = time.Now()
