package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"event-registration/internal/data/entity"
	"event-registration/internal/dto/request"
	"event-registration/internal/dto/response"
	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// GetEvents handles GET /api/events (public, organizers also see unpublished events)
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.EventListRequest{
		PaginatedRequest: paginationFromQuery(query),
		Search:           query.Get("search"),
		Status:           query.Get("status"),
		HallID:           query.Get("hall_id"),
		OrganizerID:      query.Get("organizer_id"),
		DateFrom:         query.Get("date_from"),
		DateTo:           query.Get("date_to"),
		Tag:              query.Get("tag"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	events, err := h.service.GetEvents(r.Context(), utils.GetCaller(r.Context()), req)
	if err != nil {
		h.handleServiceError(w, err, "get events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEventByID handles GET /api/events/{id} (public)
func (h *EventHandler) GetEventByID(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEventByID(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get event by ID")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// GetAvailableSeats handles GET /api/events/{id}/seats (public)
func (h *EventHandler) GetAvailableSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.GetAvailableSeats(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get available seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// CreateEvent handles POST /api/events (organizer)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), utils.GetCaller(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err, "create event")
		return
	}

	utils.ResponseCreated(w, "Event created", event)
}

// UpdateEvent handles PUT /api/events/{id} (organizer)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update event")
		return
	}

	utils.ResponseSuccess(w, "Event updated", event)
}

// DeleteEvent handles DELETE /api/events/{id} (organizer)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete event")
		return
	}

	utils.ResponseSuccess(w, "Event deleted", nil)
}

// PublishEvent handles POST /api/events/{id}/publish (organizer)
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "publish event", "Event published", h.service.PublishEvent)
}

// SubmitEvent handles POST /api/events/{id}/submit (organizer)
func (h *EventHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "submit event", "Event submitted for review", h.service.SubmitEvent)
}

// CancelEvent handles POST /api/events/{id}/cancel (organizer)
func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "cancel event", "Event cancelled", h.service.CancelEvent)
}

// CompleteEvent handles POST /api/events/{id}/complete (organizer)
func (h *EventHandler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "complete event", "Event completed", h.service.CompleteEvent)
}

// RejectEvent handles POST /api/events/{id}/reject (organizer)
func (h *EventHandler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	var req request.RejectEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	event, err := h.service.RejectEvent(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "reject event")
		return
	}

	utils.ResponseSuccess(w, "Event rejected", event)
}

type statusChange func(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)

func (h *EventHandler) changeStatus(w http.ResponseWriter, r *http.Request, operation, message string, change statusChange) {
	event, err := change(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, event)
}

func (h *EventHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
