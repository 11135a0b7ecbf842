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

type HallHandler struct {
	service usecase.HallService
	log     *zap.Logger
}

func NewHallHandler(service usecase.HallService, log *zap.Logger) *HallHandler {
	return &HallHandler{
		service: service,
		log:     log.With(zap.String("handler", "hall")),
	}
}

// GetHalls handles GET /api/halls (public)
func (h *HallHandler) GetHalls(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.HallListRequest{
		PaginatedRequest: paginationFromQuery(query),
		Search:           query.Get("search"),
		Status:           query.Get("status"),
	}
	if v := query.Get("min_capacity"); v != "" {
		minCap := utils.ParseInt(v, 0)
		req.MinCapacity = &minCap
	}
	if v := query.Get("max_capacity"); v != "" {
		maxCap := utils.ParseInt(v, 0)
		req.MaxCapacity = &maxCap
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	halls, err := h.service.GetHalls(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "get halls")
		return
	}

	utils.ResponseSuccess(w, "success", halls)
}

// GetHallByID handles GET /api/halls/{id} (public)
func (h *HallHandler) GetHallByID(w http.ResponseWriter, r *http.Request) {
	hall, err := h.service.GetHallByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get hall by ID")
		return
	}

	utils.ResponseSuccess(w, "success", hall)
}

// CheckAvailability handles GET /api/halls/{id}/availability?date=&start_time=&end_time= (public)
func (h *HallHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.HallAvailabilityRequest{
		Date:      query.Get("date"),
		StartTime: query.Get("start_time"),
		EndTime:   query.Get("end_time"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleServiceError(w, err, "check hall availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// CreateHall handles POST /api/halls (organizer)
func (h *HallHandler) CreateHall(w http.ResponseWriter, r *http.Request) {
	var req request.CreateHallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	hall, err := h.service.CreateHall(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create hall")
		return
	}

	utils.ResponseCreated(w, "Hall created", hall)
}

// UpdateHall handles PUT /api/halls/{id} (organizer)
func (h *HallHandler) UpdateHall(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateHallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	hall, err := h.service.UpdateHall(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update hall")
		return
	}

	utils.ResponseSuccess(w, "Hall updated", hall)
}

// DeleteHall handles DELETE /api/halls/{id} (organizer)
func (h *HallHandler) DeleteHall(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteHall(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete hall")
		return
	}

	utils.ResponseSuccess(w, "Hall deleted", nil)
}

// GenerateSeats handles POST /api/halls/{id}/seats (organizer)
func (h *HallHandler) GenerateSeats(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	seats, err := h.service.GenerateSeats(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "generate seats")
		return
	}

	utils.ResponseCreated(w, "Seats generated", seats)
}

// GetSeatTemplates handles GET /api/halls/{id}/seats (organizer)
func (h *HallHandler) GetSeatTemplates(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.GetSeatTemplates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get seat templates")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

func (h *HallHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
