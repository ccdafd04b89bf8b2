package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/profiles", func(r chi.Router) {
		r.Use(timeoutMiddleware(30 * time.Second))
		r.Get("/", s.handleProfiles)
		r.Post("/", s.handleCreateProfile)

		r.Route("/{profileID}", func(r chi.Router) {
			r.Use(s.profileMiddleware)
			r.Get("/", s.handleGetProfile)
			r.Delete("/", s.handleDeleteProfile)

			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleCreateCard)
			r.Post("/cards/import", s.handleImportCards)
			r.Get("/imports/{importID}", s.handleImportStatus)
			r.Get("/cards/{cardID}", s.handleGetCard)
			r.Delete("/cards/{cardID}", s.handleDeleteCard)
			r.Post("/cards/{cardID}/review", s.handleReviewCard)
			r.Get("/cards/{cardID}/history", s.handleCardHistory)
			r.Post("/cards/{cardID}/mastered", s.handleSetMastered)

			r.Get("/due", s.handleDue)
			r.Get("/session", s.handleSession)
			r.Get("/stats", s.handleStats)
		})
	})

	return r
}
