package wire

import (
	"event-registration/internal/adaptor"
	"event-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireHall(
	r chi.Router,
	hallHandler *adaptor.HallHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/halls - List halls with filters (public)
	r.Get("/api/halls", hallHandler.GetHalls)

	// GET /api/halls/{id} - Hall details (public)
	r.Get("/api/halls/{id}", hallHandler.GetHallByID)

	// GET /api/halls/{id}/availability - Booked slots on a date
	// Requires query params: ?date=2025-03-01&start_time=09:00&end_time=12:00
	r.Get("/api/halls/{id}/availability", hallHandler.CheckAvailability)

	// ==================== ORGANIZER ROUTES ====================
	r.Group(func(r chi.Router) {
		// Apply middleware chain: Authenticate → Organizer
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Organizer(log))

		r.Post("/api/halls", hallHandler.CreateHall)         // Create hall
		r.Put("/api/halls/{id}", hallHandler.UpdateHall)     // Update hall
		r.Delete("/api/halls/{id}", hallHandler.DeleteHall)  // Soft delete hall
		r.Post("/api/halls/{id}/seats", hallHandler.GenerateSeats)
		r.Get("/api/halls/{id}/seats", hallHandler.GetSeatTemplates)
	})
}
