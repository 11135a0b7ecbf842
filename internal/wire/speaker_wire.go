package wire

import (
	"event-registration/internal/adaptor"
	"event-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSpeaker(
	r chi.Router,
	speakerHandler *adaptor.SpeakerHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(verifier, log))

		r.Get("/api/speakers", speakerHandler.GetSpeakers)
		r.Get("/api/speakers/{id}", speakerHandler.GetSpeakerByID)

		// Same visibility as GET /api/events
		r.Get("/api/speakers/{id}/events", speakerHandler.GetSpeakerEvents)
	})

	// ==================== ORGANIZER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Organizer(log))

		r.Post("/api/speakers", speakerHandler.CreateSpeaker)
		r.Put("/api/speakers/{id}", speakerHandler.UpdateSpeaker)
		r.Delete("/api/speakers/{id}", speakerHandler.DeleteSpeaker) // Soft delete
	})
}
