package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Liveness (no auth)
	r.Get("/health", s.health)

	// Chat routes
	r.Route("/chat/sessions", func(r chi.Router) {
		r.Use(s.requireOwner)

		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Get("/history", s.getHistory)
			r.Post("/messages", s.sendMessage)
			r.Post("/complete", s.completeSession)
		})
	})

	// Mood routes
	r.Route("/mood", func(r chi.Router) {
		r.Use(s.requireOwner)

		r.Post("/", s.recordMood)
		r.Get("/", s.listMood)
	})
}
