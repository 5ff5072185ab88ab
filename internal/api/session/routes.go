package session

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers survey session routes.
// The websocket route is long-lived and stays outside the request timeout.
func RegisterRoutes(r chi.Router, h *Handler, ws *WSHandler, requestTimeout time.Duration) {
	r.Route("/survey-session", func(r chi.Router) {
		r.Get("/ws", ws.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(requestTimeout))

			r.Post("/", h.StartSession)
			r.Get("/{id}", h.GetSession)
			r.Post("/{id}/messages", h.SubmitMessage)
			r.Get("/{id}/transcript", h.GetTranscript)
			r.Get("/{id}/answers", h.ExportAnswers)
			r.Delete("/{id}", h.DeleteSession)
		})
	})
}
