package usecase

import (
	"context"
	"errors"
	"fmt"

	"event-registration/internal/data/entity"
	"event-registration/internal/data/repository"
	"event-registration/internal/dto/message"
	"event-registration/internal/dto/request"
	"event-registration/internal/dto/response"
	"event-registration/pkg/broker"
	"event-registration/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckinResultValid is returned to the scanner on a successful check-in.
const CheckinResultValid = "Valid"

type CheckinService interface {
	CheckIn(ctx context.Context, caller entity.Caller, code string) (*response.CheckinResponse, error)
	GetEventCheckins(ctx context.Context, caller entity.Caller, eventID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CheckinLogResponse], error)
}

type checkinService struct {
	repo      *repository.Repository
	publisher broker.Publisher
	clock     clock.Clock
	log       *zap.Logger
}

func NewCheckinService(
	repo *repository.Repository,
	publisher broker.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) CheckinService {
	return &checkinService{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		log:       log.With(zap.String("service", "checkin")),
	}
}

func (s *checkinService) CheckIn(ctx context.Context, caller entity.Caller, code string) (*response.CheckinResponse, error) {
	if !caller.Role.CanCheckIn() {
		return nil, errForbidden("only staff can check tickets in")
	}

	code = normalizeCode(code)
	detail, err := s.repo.Ticket.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if detail == nil {
		s.recordFailure(ctx, caller, nil, code, "ticket not found: "+code)
		return nil, errNotFound("ticket not found")
	}

	if detail.Status != entity.TicketStatusActive {
		return nil, s.refuse(ctx, caller, detail.ID, code, detail.Status)
	}

	now := s.clock.Now()
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Ticket.MarkUsed(ctx, detail.ID, now); err != nil {
			return err
		}
		if err := s.repo.Event.IncrementCheckedIn(ctx, detail.EventID); err != nil {
			return err
		}
		if detail.SeatID != nil {
			if err := s.repo.Seat.Occupy(ctx, *detail.SeatID); err != nil {
				return err
			}
		}
		return s.repo.Checkin.Create(ctx, &entity.TicketCheckin{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			TicketID:    &detail.ID,
			TicketCode:  code,
			StaffID:     caller.ID,
			CheckinTime: now,
			Status:      entity.CheckinStatusSuccess,
		})
	})
	if errors.Is(err, repository.ErrTicketNotActive) {
		// Another request moved the ticket first; report what it became.
		status := entity.TicketStatusUsed
		current, findErr := s.repo.Ticket.FindByID(ctx, detail.ID, true)
		if findErr != nil {
			s.log.Warn("Failed to reload ticket", zap.Error(findErr), zap.String("ticket_id", detail.ID.String()))
		} else if current != nil {
			status = current.Status
		}
		return nil, s.refuse(ctx, caller, detail.ID, code, status)
	}
	if err != nil {
		s.log.Error("Failed to check in ticket", zap.Error(err), zap.String("ticket_id", detail.ID.String()))
		return nil, fmt.Errorf("check in: %w", err)
	}

	detail.Status = entity.TicketStatusUsed
	detail.CheckInTime = &now

	s.log.Info("Ticket checked in",
		zap.String("ticket_id", detail.ID.String()),
		zap.String("event_id", detail.EventID.String()),
		zap.String("staff_id", caller.ID.String()),
	)
	publish(ctx, s.publisher, s.log, message.TicketCheckedIn, message.TicketMessage{
		TicketID:   detail.ID.String(),
		TicketCode: detail.TicketCode,
		EventID:    detail.EventID.String(),
		StudentID:  detail.StudentID.String(),
		SeatNumber: detail.SeatNumber,
		OccurredAt: now,
	})

	return &response.CheckinResponse{
		Result: CheckinResultValid,
		Ticket: response.TicketDetailToResponse(detail),
	}, nil
}

func (s *checkinService) GetEventCheckins(ctx context.Context, caller entity.Caller, eventID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CheckinLogResponse], error) {
	if !caller.Role.CanCheckIn() {
		return nil, errForbidden("only staff can read the check-in log")
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

	checkins, err := s.repo.Checkin.FindByEvent(ctx, event.ID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get check-ins", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("get check-ins: %w", err)
	}

	total, err := s.repo.Checkin.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count check-ins: %w", err)
	}

	logs := make([]response.CheckinLogResponse, len(checkins))
	for i, c := range checkins {
		logs[i] = response.CheckinToResponse(c)
	}

	return response.NewPaginatedResponse(logs, req.Page, req.Limit(), total), nil
}

// refuse logs a failed attempt for a ticket that is no longer active.
func (s *checkinService) refuse(ctx context.Context, caller entity.Caller, ticketID uuid.UUID, code string, status entity.TicketStatus) error {
	if status == entity.TicketStatusCancelled {
		s.recordFailure(ctx, caller, &ticketID, code, "ticket cancelled")
		return errInvalidState("ticket has been cancelled")
	}
	s.recordFailure(ctx, caller, &ticketID, code, "already checked in")
	return errInvalidState("already checked in")
}

// recordFailure appends a failed attempt outside any transaction so it survives the refusal.
func (s *checkinService) recordFailure(ctx context.Context, caller entity.Caller, ticketID *uuid.UUID, code, notes string) {
	now := s.clock.Now()
	err := s.repo.Checkin.Create(ctx, &entity.TicketCheckin{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		TicketID:    ticketID,
		TicketCode:  code,
		StaffID:     caller.ID,
		CheckinTime: now,
		Status:      entity.CheckinStatusFailed,
		Notes:       notes,
	})
	if err != nil {
		s.log.Error("Failed to record failed check-in", zap.Error(err), zap.String("ticket_code", code))
		return
	}

	s.log.Warn("Check-in refused",
		zap.String("ticket_code", code),
		zap.String("staff_id", caller.ID.String()),
		zap.String("reason", notes),
	)
}
