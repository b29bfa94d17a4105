package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/middleware"
	"github.com/rexlManu/ClimbChallenge/internal/service"
)

// Server exposes the read-only dashboard API. All mutation happens in
// the poll loop; every endpoint here is a GET over stored state.
type Server struct {
	stats  *service.StatsService
	logger zerolog.Logger
}

func NewServer(stats *service.StatsService, logger zerolog.Logger) *Server {
	return &Server{stats: stats, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(s.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}).Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/champions", s.handleChampions)
		r.Get("/progression", s.handleProgression)
		r.Get("/matches/recent", s.handleRecentMatches)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleChampions(w http.ResponseWriter, r *http.Request) {
	champions, err := s.stats.ChampionStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, champions)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	chart, err := s.stats.RankProgression(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	matches, err := s.stats.RecentMatches(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("request failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
