package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"event-registration/internal/dto/request"
	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// Register handles POST /api/events/{id}/register (student). The body is optional.
func (h *TicketHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ticket, err := h.service.Register(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", ticket)
}

// CancelTicket handles POST /api/tickets/{id}/cancel. The body is optional.
func (h *TicketHandler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	var req request.CancelTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ticket, err := h.service.CancelTicket(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "cancel ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket cancelled", ticket)
}

// GetTicketByCode handles GET /api/tickets/{code}
func (h *TicketHandler) GetTicketByCode(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.GetTicketByCode(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// GetTicketQR handles GET /api/tickets/{code}/qr and answers with a PNG.
func (h *TicketHandler) GetTicketQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.GetTicketQR(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "get ticket qr")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Warn("Failed to write qr code", zap.Error(err))
	}
}

// GetMyTickets handles GET /api/users/me/tickets
func (h *TicketHandler) GetMyTickets(w http.ResponseWriter, r *http.Request) {
	req := paginationFromQuery(r.URL.Query())

	tickets, err := h.service.GetMyTickets(r.Context(), utils.GetCaller(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err, "get my tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// GetEventTickets handles GET /api/events/{id}/tickets (staff)
func (h *TicketHandler) GetEventTickets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.TicketListRequest{
		PaginatedRequest: paginationFromQuery(query),
		Status:           query.Get("status"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	tickets, err := h.service.GetEventTickets(r.Context(), utils.GetCaller(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleServiceError(w, err, "get event tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

func (h *TicketHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	respondServiceError(h.log, w, err, operation)
}
