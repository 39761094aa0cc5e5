package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/logger"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/repository"
	"github.com/freeeve/entangled/internal/tournament"
)

// Controller is the running tournament as seen by HTTP clients.
type Controller interface {
	ID() string
	Summary() *tournament.Summary
	Pause()
	Resume()
}

// TournamentHandler serves tournament status and control endpoints.
// cache and store may be nil; the endpoints that need them then answer 503.
type TournamentHandler struct {
	ctrl  Controller
	cache repository.ProgressCache
	store repository.ResultRepository
}

// NewTournamentHandler creates a TournamentHandler.
func NewTournamentHandler(ctrl Controller, cache repository.ProgressCache, store repository.ResultRepository) *TournamentHandler {
	return &TournamentHandler{ctrl: ctrl, cache: cache, store: store}
}

// Status handles GET /api/v1/tournament.
func (h *TournamentHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Summary())
}

// Pause handles POST /api/v1/tournament/pause.
func (h *TournamentHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Pause()
	h.setStatus(r, model.StatusPaused)
	writeJSON(w, http.StatusAccepted, h.ctrl.Summary().Progress)
}

// Resume handles POST /api/v1/tournament/resume.
func (h *TournamentHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Resume()
	h.setStatus(r, model.StatusRunning)
	writeJSON(w, http.StatusAccepted, h.ctrl.Summary().Progress)
}

func (h *TournamentHandler) setStatus(r *http.Request, status string) {
	if h.store == nil {
		return
	}
	if err := h.store.SetTournamentStatus(r.Context(), h.ctrl.ID(), status); err != nil {
		log := logger.ForRequest(r.Context())
		log.Warn().Err(err).Str("status", status).Msg("Failed to store tournament status")
	}
}

// RecentResults handles GET /api/v1/tournament/results?n=.
func (h *TournamentHandler) RecentResults(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "live cache not configured")
		return
	}
	n := queryInt(r, "n", 20, 1, 200)
	recs, err := h.cache.RecentResults(r.Context(), h.ctrl.ID(), n)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read recent results")
		writeError(w, http.StatusInternalServerError, "failed to read results")
		return
	}
	if recs == nil {
		recs = []model.GameRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Leaderboard handles GET /api/v1/tournament/leaderboard?n=. Without a
// cache it is served from the live rating table.
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	n := queryInt(r, "n", 10, 1, 100)
	if h.cache == nil {
		ratings := h.ctrl.Summary().Ratings
		writeJSON(w, http.StatusOK, ratings[:min(n, len(ratings))])
		return
	}
	rows, err := h.cache.Leaderboard(r.Context(), h.ctrl.ID(), n)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read leaderboard")
		writeError(w, http.StatusInternalServerError, "failed to read leaderboard")
		return
	}
	if rows == nil {
		rows = []model.Rating{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetStored handles GET /api/v1/tournaments/{id}: a stored tournament with
// its ratings.
func (h *TournamentHandler) GetStored(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	id := chi.URLParam(r, "id")
	t, err := h.store.FindTournament(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load tournament")
		writeError(w, http.StatusInternalServerError, "failed to load tournament")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}
	ratings, err := h.store.ListRatings(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", id).Msg("Failed to load ratings")
		writeError(w, http.StatusInternalServerError, "failed to load ratings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tournament": t,
		"ratings":    ratings,
	})
}

// queryInt reads an integer query parameter clamped to [lo, hi].
func queryInt(r *http.Request, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}
