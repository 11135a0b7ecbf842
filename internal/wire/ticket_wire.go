package wire

import (
	"event-registration/internal/adaptor"
	"event-registration/internal/data/entity"
	"event-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTicket(
	r chi.Router,
	ticketHandler *adaptor.TicketHandler,
	checkinHandler *adaptor.CheckinHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		// POST /api/tickets/{id}/cancel - Ticket owner or organizer
		r.Post("/api/tickets/{id}/cancel", ticketHandler.CancelTicket)

		// GET /api/tickets/{code} - Ticket owner or staff
		r.Get("/api/tickets/{code}", ticketHandler.GetTicketByCode)
		r.Get("/api/tickets/{code}/qr", ticketHandler.GetTicketQR)

		// GET /api/users/me/tickets - Caller's own tickets
		r.Get("/api/users/me/tickets", ticketHandler.GetMyTickets)
	})

	// ==================== STUDENT ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.RequireRole(func(role entity.UserRole) bool {
			return role == entity.RoleStudent
		}, log))

		r.Post("/api/events/{id}/register", ticketHandler.Register)
	})

	// ==================== STAFF ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Staff(log))

		r.Post("/api/tickets/{code}/checkin", checkinHandler.CheckIn)
		r.Get("/api/events/{id}/tickets", ticketHandler.GetEventTickets)
		r.Get("/api/events/{id}/checkins", checkinHandler.GetEventCheckins)
	})
}
