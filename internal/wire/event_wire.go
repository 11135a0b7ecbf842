package wire

import (
	"event-registration/internal/adaptor"
	"event-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Anonymous callers only see published, completed and cancelled events;
	// a token, when sent, widens the listing to the caller's own events.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(verifier, log))

		r.Get("/api/events", eventHandler.GetEvents)
		r.Get("/api/events/{id}", eventHandler.GetEventByID)
		r.Get("/api/events/{id}/seats", eventHandler.GetAvailableSeats)
	})

	// ==================== ORGANIZER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Organizer(log))

		r.Post("/api/events", eventHandler.CreateEvent)
		r.Put("/api/events/{id}", eventHandler.UpdateEvent)
		r.Delete("/api/events/{id}", eventHandler.DeleteEvent)

		// Lifecycle transitions
		r.Post("/api/events/{id}/publish", eventHandler.PublishEvent)
		r.Post("/api/events/{id}/submit", eventHandler.SubmitEvent)
		r.Post("/api/events/{id}/reject", eventHandler.RejectEvent)
		r.Post("/api/events/{id}/cancel", eventHandler.CancelEvent)
		r.Post("/api/events/{id}/complete", eventHandler.CompleteEvent)
	})
}
