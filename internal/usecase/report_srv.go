package usecase

import (
	"context"
	"fmt"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/internal/data/repository"
	"event-registration/internal/dto/request"
	"event-registration/internal/dto/response"
	"event-registration/pkg/clock"
	"event-registration/pkg/utils"

	"go.uber.org/zap"
)

// ReportService only reads; none of its methods change state.
type ReportService interface {
	EventSummary(ctx context.Context, caller entity.Caller, eventID string) (*response.EventReportResponse, error)
	SystemReport(ctx context.Context, caller entity.Caller, req *request.SystemReportRequest) (*response.SystemReportResponse, error)
}

type reportService struct {
	repo  *repository.Repository
	clock clock.Clock
	loc   *time.Location
	log   *zap.Logger
}

func NewReportService(repo *repository.Repository, clk clock.Clock, loc *time.Location, log *zap.Logger) ReportService {
	return &reportService{
		repo:  repo,
		clock: clk,
		loc:   loc,
		log:   log.With(zap.String("service", "report")),
	}
}

func (s *reportService) EventSummary(ctx context.Context, caller entity.Caller, eventID string) (*response.EventReportResponse, error) {
	if !caller.Role.CanCheckIn() {
		return nil, errForbidden("only staff can read event reports")
	}

	id, err := parseID(eventID, "event")
	if err != nil {
		return nil, err
	}
	event, err := s.repo.Event.FindByID(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, errNotFound("event not found")
	}

	counts, err := s.repo.Report.TicketCounts(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	failed, err := s.repo.Report.FailedCheckins(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count failed check-ins: %w", err)
	}
	hourly, err := s.repo.Report.CheckinsByHour(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("group check-ins: %w", err)
	}

	summary := &entity.EventSummary{
		Event:            event,
		ActiveTickets:    counts[entity.TicketStatusActive],
		UsedTickets:      counts[entity.TicketStatusUsed],
		CancelledTickets: counts[entity.TicketStatusCancelled],
		FailedCheckins:   failed,
		CheckinsByHour:   hourly,
	}

	resp := response.EventSummaryToResponse(summary, s.clock.Now(), s.loc)
	return &resp, nil
}

func (s *reportService) SystemReport(ctx context.Context, caller entity.Caller, req *request.SystemReportRequest) (*response.SystemReportResponse, error) {
	if !caller.Role.CanOrganize() {
		return nil, errForbidden("only organizers can read system reports")
	}

	from, err := utils.ParseDate(req.From, s.loc)
	if err != nil {
		return nil, errValidation("invalid from date")
	}
	to, err := utils.ParseDate(req.To, s.loc)
	if err != nil {
		return nil, errValidation("invalid to date")
	}
	if to.Before(from) {
		return nil, errValidation("to date must not be before from date")
	}

	var status *entity.EventStatus
	if req.Status != "" {
		st := entity.EventStatus(req.Status)
		if !st.Valid() {
			return nil, errValidation("invalid status %q", req.Status)
		}
		status = &st
	}

	summary, err := s.repo.Report.SystemSummary(ctx, from, to.AddDate(0, 0, 1), status)
	if err != nil {
		s.log.Error("Failed to build system report", zap.Error(err))
		return nil, fmt.Errorf("system report: %w", err)
	}
	summary.To = to

	resp := response.SystemSummaryToResponse(summary)
	return &resp, nil
}
