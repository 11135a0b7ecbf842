package adaptor

import (
	"net/http"

	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckinHandler struct {
	service usecase.CheckinService
	log     *zap.Logger
}

func NewCheckinHandler(service usecase.CheckinService, log *zap.Logger) *CheckinHandler {
	return &CheckinHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkin")),
	}
}

// CheckIn handles POST /api/tickets/{code}/checkin (staff)
func (h *CheckinHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CheckIn(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "check in")
		return
	}

	utils.ResponseSuccess(w, result.Result, result)
}

// GetEventCheckins handles GET /api/events/{id}/checkins (staff)
func (h *CheckinHandler) GetEventCheckins(w http.ResponseWriter, r *http.Request) {
	req := paginationFromQuery(r.URL.Query())

	checkins, err := h.service.GetEventCheckins(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "get event check-ins")
		return
	}

	utils.ResponseSuccess(w, "success", checkins)
}

func (h *CheckinHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
