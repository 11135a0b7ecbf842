package adaptor

import (
	"net/url"

	"event-registration/internal/dto/request"
	"event-registration/internal/usecase"
	"event-registration/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Hall    *HallHandler
	Event   *EventHandler
	Ticket  *TicketHandler
	Checkin *CheckinHandler
	Report  *ReportHandler
	Speaker *SpeakerHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Hall:    NewHallHandler(service.Hall, log),
		Event:   NewEventHandler(service.Event, log),
		Ticket:  NewTicketHandler(service.Ticket, log),
		Checkin: NewCheckinHandler(service.Checkin, log),
		Report:  NewReportHandler(service.Report, log),
		Speaker: NewSpeakerHandler(service.Speaker, log),
	}
}

// paginationFromQuery reads page and per_page, defaulting to 1 and 10.
func paginationFromQuery(query url.Values) request.PaginatedRequest {
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
