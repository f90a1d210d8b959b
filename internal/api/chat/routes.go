package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat and suggestion routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat-link", h.CreateChatLink)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/start", h.StartChat)
		r.Post("/{id}/message", h.SubmitAnswer)
		r.Post("/{id}/complete", h.CompleteChat)
	})

	r.Route("/suggestions", func(r chi.Router) {
		r.Get("/{id}", h.GetSuggestions)
		r.Get("/{id}/export", h.ExportSuggestions)
	})
}
