package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"event-registration/internal/data/entity"
	"event-registration/internal/data/repository"
	"event-registration/internal/dto/message"
	"event-registration/internal/dto/request"
	"event-registration/internal/dto/response"
	"event-registration/pkg/broker"
	"event-registration/pkg/clock"
	"event-registration/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const qrCodeSize = 256

type TicketService interface {
	// Student endpoints
	Register(ctx context.Context, caller entity.Caller, eventID string, req *request.RegisterRequest) (*response.TicketResponse, error)
	GetMyTickets(ctx context.Context, caller entity.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)

	// Owner, staff or organizer
	CancelTicket(ctx context.Context, caller entity.Caller, ticketID string, req *request.CancelTicketRequest) (*response.TicketResponse, error)
	GetTicketByCode(ctx context.Context, caller entity.Caller, code string) (*response.TicketResponse, error)
	GetTicketQR(ctx context.Context, caller entity.Caller, code string) ([]byte, error)

	// Staff endpoints
	GetEventTickets(ctx context.Context, caller entity.Caller, eventID string, req *request.TicketListRequest) (*response.PaginatedResponse[response.TicketResponse], error)
}

type ticketService struct {
	repo      *repository.Repository
	seats     *seatCache
	publisher broker.Publisher
	clock     clock.Clock
	log       *zap.Logger
}

func NewTicketService(
	repo *repository.Repository,
	seats *seatCache,
	publisher broker.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) TicketService {
	return &ticketService{
		repo:      repo,
		seats:     seats,
		publisher: publisher,
		clock:     clk,
		log:       log.With(zap.String("service", "ticket")),
	}
}

func (s *ticketService) Register(ctx context.Context, caller entity.Caller, eventID string, req *request.RegisterRequest) (*response.TicketResponse, error) {
	if caller.Role != entity.RoleStudent || caller.Anonymous() {
		return nil, errForbidden("only students can register for events")
	}

	id, err := parseID(eventID, "event")
	if err != nil {
		return nil, err
	}
	event, err := s.repo.Event.FindByID(ctx, id, false)
	if err != nil {
		s.log.Error("Failed to find event", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("find event: %w", err)
	}
	now := s.clock.Now()
	if event == nil || !event.VisibleTo(caller, now) {
		return nil, errNotFound("event not found")
	}

	if event.ObservedStatus(now) != entity.EventStatusPublished {
		return nil, errInvalidState("event not published")
	}
	started, ended := event.RegistrationOpen(now)
	if !started {
		return nil, errInvalidState("registration has not started")
	}
	if ended {
		return nil, errInvalidState("registration window closed")
	}

	var seatID *uuid.UUID
	if req.SeatID != nil {
		if !event.Seated() {
			return nil, errValidation("event has no seat map")
		}
		parsed, err := uuid.Parse(*req.SeatID)
		if err != nil {
			return nil, errValidation("invalid seat_id")
		}
		seatID = &parsed
	}

	ticket := &entity.Ticket{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		EventID:      event.ID,
		StudentID:    caller.ID,
		TicketCode:   utils.GenerateTicketCode(),
		Status:       entity.TicketStatusActive,
		RegisteredAt: now,
	}
	var seat *entity.Seat

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Ticket.LockStudent(ctx, caller.ID); err != nil {
			return err
		}

		if err := s.repo.Event.IncrementRegistered(ctx, event.ID); err != nil {
			if errors.Is(err, repository.ErrEventFull) {
				return errConflict("event is full")
			}
			return err
		}

		existing, err := s.repo.Ticket.FindActive(ctx, event.ID, caller.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errConflict("already registered for this event")
		}

		overlapping, err := s.repo.Event.FindOverlappingForStudent(ctx, caller.ID, event.StartsAt, event.EndsAt, event.ID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return errConflict("time overlaps with %q which you are already registered for", overlapping[0].Title)
		}

		if event.Seated() {
			if seatID != nil {
				seat, err = s.repo.Seat.Claim(ctx, event.ID, *seatID)
			} else {
				seat, err = s.repo.Seat.ClaimFirstAvailable(ctx, event.ID)
			}
			if errors.Is(err, repository.ErrSeatUnavailable) {
				return errConflict("seat unavailable")
			}
			if err != nil {
				return err
			}
			ticket.SeatID = &seat.ID
		}

		if err := s.repo.Ticket.Create(ctx, ticket); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateTicket):
				return errConflict("already registered for this event")
			case errors.Is(err, repository.ErrSeatUnavailable):
				return errConflict("seat unavailable")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != "" {
			s.log.Info("Registration refused",
				zap.String("event_id", event.ID.String()),
				zap.String("student_id", caller.ID.String()),
				zap.String("reason", err.Error()),
			)
			return nil, err
		}
		s.log.Error("Failed to register", zap.Error(err), zap.String("event_id", event.ID.String()))
		return nil, fmt.Errorf("register: %w", err)
	}

	detail := &entity.TicketDetail{
		Ticket:        *ticket,
		EventTitle:    event.Title,
		EventStartsAt: event.StartsAt,
		EventEndsAt:   event.EndsAt,
	}
	if seat != nil {
		s.seats.invalidate(ctx, event.ID)
		detail.SeatNumber = &seat.SeatNumber
	}

	s.log.Info("Ticket registered",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("student_id", caller.ID.String()),
	)
	publish(ctx, s.publisher, s.log, message.TicketRegistered, s.ticketMessage(detail, ""))

	resp := response.TicketDetailToResponse(detail)
	return &resp, nil
}

func (s *ticketService) GetMyTickets(ctx context.Context, caller entity.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	tickets, err := s.repo.Ticket.FindByStudent(ctx, caller.ID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get student tickets", zap.Error(err), zap.String("student_id", caller.ID.String()))
		return nil, fmt.Errorf("get tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByStudent(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	return response.NewPaginatedResponse(response.TicketDetailsToResponse(tickets), req.Page, req.Limit(), total), nil
}

func (s *ticketService) CancelTicket(ctx context.Context, caller entity.Caller, ticketID string, req *request.CancelTicketRequest) (*response.TicketResponse, error) {
	id, err := parseID(ticketID, "ticket")
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.Ticket.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, errNotFound("ticket not found")
	}

	asOrganizer := caller.Role.CanOrganize()
	if !asOrganizer && ticket.StudentID != caller.ID {
		return nil, errForbidden("you cannot cancel this ticket")
	}
	switch ticket.Status {
	case entity.TicketStatusUsed:
		return nil, errInvalidState("ticket already used")
	case entity.TicketStatusCancelled:
		return nil, errInvalidState("ticket already cancelled")
	}

	event, err := s.repo.Event.FindByID(ctx, ticket.EventID, true)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, errNotFound("event not found")
	}

	now := s.clock.Now()
	if !asOrganizer && event.StartsAt.Sub(now) < entity.StudentCancelNotice {
		return nil, errInvalidState("tickets can only be cancelled at least %d hours before the event", int(entity.StudentCancelNotice.Hours()))
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Cancelled by student"
		if asOrganizer {
			reason = "Cancelled by organizer"
		}
	}

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Ticket.Cancel(ctx, ticket.ID, now, reason); err != nil {
			if errors.Is(err, repository.ErrTicketNotActive) {
				return errInvalidState("ticket is no longer active")
			}
			return err
		}
		if ticket.SeatID != nil {
			if err := s.repo.Seat.Release(ctx, *ticket.SeatID); err != nil {
				return err
			}
		}
		return s.repo.Event.DecrementRegistered(ctx, ticket.EventID)
	})
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		s.log.Error("Failed to cancel ticket", zap.Error(err), zap.String("ticket_id", ticket.ID.String()))
		return nil, fmt.Errorf("cancel ticket: %w", err)
	}

	if ticket.SeatID != nil {
		s.seats.invalidate(ctx, ticket.EventID)
	}

	ticket.Status = entity.TicketStatusCancelled
	ticket.CancelledAt = &now
	ticket.CancelReason = &reason

	s.log.Info("Ticket cancelled",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("cancelled_by", caller.ID.String()),
	)

	detail := &entity.TicketDetail{
		Ticket:        *ticket,
		EventTitle:    event.Title,
		EventStartsAt: event.StartsAt,
		EventEndsAt:   event.EndsAt,
	}
	publish(ctx, s.publisher, s.log, message.TicketCancelled, s.ticketMessage(detail, reason))

	resp := response.TicketDetailToResponse(detail)
	return &resp, nil
}

func (s *ticketService) GetTicketByCode(ctx context.Context, caller entity.Caller, code string) (*response.TicketResponse, error) {
	detail, err := s.findReadable(ctx, caller, code)
	if err != nil {
		return nil, err
	}

	resp := response.TicketDetailToResponse(detail)
	return &resp, nil
}

func (s *ticketService) GetTicketQR(ctx context.Context, caller entity.Caller, code string) ([]byte, error) {
	detail, err := s.findReadable(ctx, caller, code)
	if err != nil {
		return nil, err
	}

	png, err := utils.GenerateQRCode(detail.TicketCode, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func (s *ticketService) GetEventTickets(ctx context.Context, caller entity.Caller, eventID string, req *request.TicketListRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	if !caller.Role.CanCheckIn() {
		return nil, errForbidden("only staff can list event tickets")
	}

	id, err := parseID(eventID, "event")
	if err != nil {
		return nil, err
	}
	event, err := s.repo.Event.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, errNotFound("event not found")
	}

	var status *entity.TicketStatus
	if req.Status != "" {
		st := entity.TicketStatus(req.Status)
		status = &st
	}

	tickets, err := s.repo.Ticket.FindByEvent(ctx, event.ID, status, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get event tickets", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("get event tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByEvent(ctx, event.ID, status)
	if err != nil {
		return nil, fmt.Errorf("count event tickets: %w", err)
	}

	return response.NewPaginatedResponse(response.TicketDetailsToResponse(tickets), req.Page, req.Limit(), total), nil
}

// findReadable returns the ticket when the caller owns it or works the door.
func (s *ticketService) findReadable(ctx context.Context, caller entity.Caller, code string) (*entity.TicketDetail, error) {
	detail, err := s.repo.Ticket.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if detail == nil {
		return nil, errNotFound("ticket not found")
	}
	if detail.StudentID != caller.ID && !caller.Role.CanCheckIn() {
		return nil, errForbidden("you cannot view this ticket")
	}
	return detail, nil
}

func (s *ticketService) ticketMessage(detail *entity.TicketDetail, reason string) message.TicketMessage {
	return message.TicketMessage{
		TicketID:   detail.ID.String(),
		TicketCode: detail.TicketCode,
		EventID:    detail.EventID.String(),
		StudentID:  detail.StudentID.String(),
		SeatNumber: detail.SeatNumber,
		Reason:     reason,
		OccurredAt: s.clock.Now(),
	}
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
