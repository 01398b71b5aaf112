package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/notifications/stream", h.StreamNotifications)

	// Hooks called by the content service after its own writes succeed.
	r.Route("/events", func(r chi.Router) {
		r.Post("/posts", h.PostCreated)
		r.Post("/likes", h.PostLiked)
		r.Post("/comments", h.PostCommented)
	})

	r.Route("/lookup", func(r chi.Router) {
		r.Get("/followers/{user_id}", h.Followers)
		r.Get("/blocked/{user_id}", h.BlockedUsers)
	})

	r.Get("/users/{user_id}", h.GetUser)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
