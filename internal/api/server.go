// Package api exposes the analysis engine over HTTP.
package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medialens/medialens/internal/analysis"
	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/content"
	"github.com/medialens/medialens/internal/httputil"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/sources"
	"github.com/medialens/medialens/internal/version"
)

const defaultPageSize = 25

type Server struct {
	cfg        *config.Config
	ver        version.Info
	store      cache.Store
	selector   *sources.Selector
	generator  *analysis.Generator
	enhancer   *analysis.Enhancer
	aggregator *content.Aggregator
	router     chi.Router
}

func NewServer(cfg *config.Config, ver version.Info, store cache.Store) *Server {
	plex := clients.NewPlex(cfg.PlexURL, cfg.PlexToken, cfg.UpstreamTimeout)
	tautulli := clients.NewTautulli(cfg.TautulliURL, cfg.TautulliKey, cfg.UpstreamTimeout)
	radarr := clients.NewRadarr(cfg.RadarrURL, cfg.RadarrKey, cfg.UpstreamTimeout)
	sonarr := clients.NewSonarr(cfg.SonarrURL, cfg.SonarrKey, cfg.UpstreamTimeout)

	selector := sources.NewSelector(cfg, plex, tautulli)
	generator := analysis.NewGenerator(selector, store, cfg.AnalysisTTL)

	s := &Server{
		cfg:        cfg,
		ver:        ver,
		store:      store,
		selector:   selector,
		generator:  generator,
		enhancer:   analysis.NewEnhancer(generator, store, cfg.EnrichmentTTL),
		aggregator: content.NewAggregator(radarr, sonarr),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httputil.WithRequestID)

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/libraries", s.listLibraries)
		r.Get("/libraries/{id}/analysis", s.libraryAnalysis)
		r.Get("/libraries/{id}/analysis/enhanced", s.enhancedAnalysis)
		r.Get("/content/summary", s.contentSummary)
		r.Post("/cache/clear", s.clearCache)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ──────────────────── Handlers ────────────────────

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"version":        s.ver.Version,
		"build_date":     s.ver.BuildDate,
		"data_source":    string(s.cfg.DataSource),
		"sources":        s.selector.Available(),
		"radarr_enabled": s.cfg.RadarrEnabled(),
		"sonarr_enabled": s.cfg.SonarrEnabled(),
		"cache_enabled":  s.cfg.CacheEnabled,
		"cache_backend":  s.cfg.CacheBackend,
	})
}

func (s *Server) listLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := s.generator.Libraries(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, r, http.StatusOK, libs)
}

func (s *Server) libraryAnalysis(w http.ResponseWriter, r *http.Request) {
	lib, err := s.generator.FindLibrary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	offset, limit := pageParams(r)
	result, err := s.generator.Analyze(r.Context(), lib, offset, limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, r, http.StatusOK, result)
}

func (s *Server) enhancedAnalysis(w http.ResponseWriter, r *http.Request) {
	lib, err := s.generator.FindLibrary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	result, err := s.enhancer.Analyze(r.Context(), lib)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, r, http.StatusOK, result)
}

func (s *Server) contentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.aggregator.Summary(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, r, http.StatusOK, summary)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.store.Clear(r.Context())
	log.Println("api: cache cleared")
	httputil.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// ──────────────────── Helpers ────────────────────

// pageParams reads offset/limit from the query string. "limit=all" maps to
// the all-items sentinel.
func pageParams(r *http.Request) (offset, limit int) {
	limit = defaultPageSize
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	switch v := r.URL.Query().Get("limit"); {
	case v == "all":
		limit = models.LimitAll
	case v != "":
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analysis.ErrLibraryNotFound), errors.Is(err, clients.ErrNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, sources.ErrNoSource), errors.Is(err, clients.ErrNotConfigured):
		httputil.WriteError(w, r, http.StatusServiceUnavailable, "NOT_CONFIGURED", err.Error())
	case errors.Is(err, clients.ErrUnavailable):
		httputil.WriteError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", err.Error())
	default:
		log.Printf("api: %s %s: %v", r.Method, r.URL.Path, err)
		httputil.WriteError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
