package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freeeve/entangled/internal/auth"
	"github.com/freeeve/entangled/internal/middleware"
)

// Routes bundles the handlers served by NewRouter.
type Routes struct {
	Auth        *AuthHandler
	Tournament  *TournamentHandler
	WS          *WSHandler
	JWT         *auth.JWTManager
	CORSOrigins string
}

// NewRouter builds the HTTP routes.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover, middleware.Logger, middleware.CORS(rt.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/auth/dev", rt.Auth.DevLogin)
	r.Post("/auth/refresh", rt.Auth.RefreshToken)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", rt.WS.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(rt.JWT))

			r.Get("/tournament", rt.Tournament.Status)
			r.Get("/tournament/results", rt.Tournament.RecentResults)
			r.Get("/tournament/leaderboard", rt.Tournament.Leaderboard)
			r.Get("/tournaments/{id}", rt.Tournament.GetStored)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleOperator))
				r.Post("/tournament/pause", rt.Tournament.Pause)
				r.Post("/tournament/resume", rt.Tournament.Resume)
			})
		})
	})
	return r
}
