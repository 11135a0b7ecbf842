package adaptor

import (
	"net/http"

	"event-registration/internal/dto/request"
	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReportHandler struct {
	service usecase.ReportService
	log     *zap.Logger
}

func NewReportHandler(service usecase.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log.With(zap.String("handler", "report")),
	}
}

// EventSummary handles GET /api/events/{id}/report (staff)
func (h *ReportHandler) EventSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.EventSummary(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get event report")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}

// SystemReport handles GET /api/reports/system?from=&to=&status= (organizer)
func (h *ReportHandler) SystemReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SystemReportRequest{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Status: query.Get("status"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	report, err := h.service.SystemReport(r.Context(), utils.GetCaller(r.Context()), req)
	if err != nil {
		h.handleServiceError(w, err, "get system report")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}

func (h *ReportHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
