// internal/wire/wire.go
package wire

import (
	"net/http"

	"event-registration/internal/adaptor"
	"event-registration/internal/data/repository"
	"event-registration/internal/usecase"
	"event-registration/pkg/middleware"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, config *utils.Config, deps usecase.Deps, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)
	verifier := middleware.NewTokenVerifier(config.Auth)

	router := setupRouter(handler, verifier, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	verifier *middleware.TokenVerifier,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	// Apply routes
	wireHall(r, handler.Hall, verifier, logger)
	wireEvent(r, handler.Event, verifier, logger)
	wireTicket(r, handler.Ticket, handler.Checkin, verifier, logger)
	wireReport(r, handler.Report, verifier, logger)
	wireSpeaker(r, handler.Speaker, verifier, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
