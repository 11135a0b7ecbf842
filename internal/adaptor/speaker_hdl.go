package adaptor

import (
	"encoding/json"
	"net/http"

	"event-registration/internal/dto/request"
	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SpeakerHandler struct {
	service usecase.SpeakerService
	log     *zap.Logger
}

func NewSpeakerHandler(service usecase.SpeakerService, log *zap.Logger) *SpeakerHandler {
	return &SpeakerHandler{
		service: service,
		log:     log.With(zap.String("handler", "speaker")),
	}
}

// GetSpeakers handles GET /api/speakers?search= (public)
func (h *SpeakerHandler) GetSpeakers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SpeakerListRequest{
		PaginatedRequest: paginationFromQuery(query),
		Search:           query.Get("search"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	speakers, err := h.service.GetSpeakers(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "get speakers")
		return
	}

	utils.ResponseSuccess(w, "success", speakers)
}

// GetSpeakerByID handles GET /api/speakers/{id} (public)
func (h *SpeakerHandler) GetSpeakerByID(w http.ResponseWriter, r *http.Request) {
	speaker, err := h.service.GetSpeakerByID(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get speaker by ID")
		return
	}

	utils.ResponseSuccess(w, "success", speaker)
}

// GetSpeakerEvents handles GET /api/speakers/{id}/events (public)
func (h *SpeakerHandler) GetSpeakerEvents(w http.ResponseWriter, r *http.Request) {
	req := paginationFromQuery(r.URL.Query())
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	events, err := h.service.GetSpeakerEvents(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "get speaker events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// CreateSpeaker handles POST /api/speakers (organizer)
func (h *SpeakerHandler) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSpeakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	speaker, err := h.service.CreateSpeaker(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create speaker")
		return
	}

	utils.ResponseCreated(w, "Speaker created", speaker)
}

// UpdateSpeaker handles PUT /api/speakers/{id} (organizer)
func (h *SpeakerHandler) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSpeakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	speaker, err := h.service.UpdateSpeaker(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update speaker")
		return
	}

	utils.ResponseSuccess(w, "Speaker updated", speaker)
}

// DeleteSpeaker handles DELETE /api/speakers/{id} (organizer)
func (h *SpeakerHandler) DeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSpeaker(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete speaker")
		return
	}

	utils.ResponseSuccess(w, "Speaker deleted", nil)
}

func (h *SpeakerHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
