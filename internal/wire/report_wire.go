package wire

import (
	"event-registration/internal/adaptor"
	"event-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReport(
	r chi.Router,
	reportHandler *adaptor.ReportHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// ==================== STAFF ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Staff(log))

		// GET /api/events/{id}/report - Attendance summary of one event
		r.Get("/api/events/{id}/report", reportHandler.EventSummary)
	})

	// ==================== ORGANIZER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))
		r.Use(middleware.Organizer(log))

		// GET /api/reports/system?from=2025-01-01&to=2025-01-31&status=published
		r.Get("/api/reports/system", reportHandler.SystemReport)
	})
}
