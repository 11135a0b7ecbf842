package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

type EventService interface {
	// Public endpoints
	GetEvents(ctx context.Context, caller entity.Caller, req *request.EventListRequest) (*response.PaginatedResponse[response.EventResponse], error)
	GetEventByID(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)
	GetAvailableSeats(ctx context.Context, caller entity.Caller, eventID string) ([]response.SeatResponse, error)

	// Organizer endpoints
	CreateEvent(ctx context.Context, caller entity.Caller, req *request.CreateEventRequest) (*response.EventResponse, error)
	UpdateEvent(ctx context.Context, caller entity.Caller, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error)
	DeleteEvent(ctx context.Context, caller entity.Caller, eventID string) error
	PublishEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)
	SubmitEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)
	RejectEvent(ctx context.Context, caller entity.Caller, eventID string, req *request.RejectEventRequest) (*response.EventResponse, error)
	CancelEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)
	CompleteEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error)

	// SweepStatuses persists observed statuses; run by the scheduler.
	SweepStatuses(ctx context.Context) (int64, error)
}

type eventService struct {
	repo      *repository.Repository
	seats     *seatCache
	publisher broker.Publisher
	clock     clock.Clock
	loc       *time.Location
	log       *zap.Logger
}

func NewEventService(
	repo *repository.Repository,
	seats *seatCache,
	publisher broker.Publisher,
	clk clock.Clock,
	loc *time.Location,
	log *zap.Logger,
) EventService {
	return &eventService{
		repo:      repo,
		seats:     seats,
		publisher: publisher,
		clock:     clk,
		loc:       loc,
		log:       log.With(zap.String("service", "event")),
	}
}

func (s *eventService) GetEvents(ctx context.Context, caller entity.Caller, req *request.EventListRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	now := s.clock.Now()
	filter := repository.EventFilter{
		Search: strings.TrimSpace(req.Search),
		Tag:    strings.ToLower(strings.TrimSpace(req.Tag)),
		Now:    now,
	}
	if req.Status != "" {
		status := entity.EventStatus(req.Status)
		filter.Status = &status
	}
	if req.HallID != "" {
		hallID, err := uuid.Parse(req.HallID)
		if err != nil {
			return nil, errValidation("invalid hall_id")
		}
		filter.HallID = &hallID
	}
	if req.OrganizerID != "" {
		organizerID, err := uuid.Parse(req.OrganizerID)
		if err != nil {
			return nil, errValidation("invalid organizer_id")
		}
		filter.OrganizerID = &organizerID
	}
	if req.DateFrom != "" {
		from, err := utils.ParseDate(req.DateFrom, s.loc)
		if err != nil {
			return nil, errValidation("invalid date_from")
		}
		filter.From = &from
	}
	if req.DateTo != "" {
		to, err := utils.ParseDate(req.DateTo, s.loc)
		if err != nil {
			return nil, errValidation("invalid date_to")
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	restrictToVisible(&filter, caller)

	events, err := s.repo.Event.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get events", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get events: %w", err)
	}

	total, err := s.repo.Event.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count events", zap.Error(err))
		return nil, fmt.Errorf("count events: %w", err)
	}

	return response.NewPaginatedResponse(response.EventsToResponse(events, now, s.loc), req.Page, req.Limit(), total), nil
}

func (s *eventService) GetEventByID(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error) {
	event, err := s.findVisible(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	return s.detailResponse(ctx, event)
}

func (s *eventService) GetAvailableSeats(ctx context.Context, caller entity.Caller, eventID string) ([]response.SeatResponse, error) {
	event, err := s.findVisible(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if event.HallID == nil {
		return nil, errInvalidState("event has no seat map")
	}

	cached, version, ok := s.seats.get(ctx, event.ID)
	if ok {
		return cached, nil
	}

	available := entity.SeatStatusAvailable
	seats, err := s.repo.Seat.FindByEvent(ctx, event.ID, &available)
	if err != nil {
		return nil, fmt.Errorf("get available seats: %w", err)
	}

	resp := response.SeatsToResponse(seats)
	s.seats.set(ctx, event.ID, version, resp)
	return resp, nil
}

func (s *eventService) CreateEvent(ctx context.Context, caller entity.Caller, req *request.CreateEventRequest) (*response.EventResponse, error) {
	now := s.clock.Now()

	start, end, err := eventWindow(req.Date, req.StartTime, req.EndTime, s.loc)
	if err != nil {
		return nil, err
	}
	if err := s.checkNotPast(start, now); err != nil {
		return nil, err
	}
	if err := checkRegistrationWindow(req.RegistrationStart, req.RegistrationEnd, end); err != nil {
		return nil, err
	}

	var hall *entity.Hall
	if req.HallID != nil {
		hall, err = s.findActiveHall(ctx, *req.HallID)
		if err != nil {
			return nil, err
		}
	}

	rows, cols, total, err := resolveGeometry(hall, req.NumberOfRows, req.SeatsPerRow, req.TotalSeats)
	if err != nil {
		return nil, err
	}

	speakers, err := s.resolveSpeakers(ctx, req.SpeakerIDs, now)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	event := &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		ImageURL:          req.ImageURL,
		StartsAt:          start,
		EndsAt:            end,
		OrganizerID:       caller.ID,
		TotalSeats:        total,
		NumberOfRows:      rows,
		SeatsPerRow:       cols,
		Status:            entity.EventStatusDraft,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		MaxTicketsPerUser: 1,
		Tags:              tags,
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if hall != nil {
		event.HallID = &hall.ID
		if event.Location == "" {
			event.Location = hall.Address
		}
	}
	if req.MaxTicketsPerUser != nil {
		event.MaxTicketsPerUser = *req.MaxTicketsPerUser
	}

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if hall != nil {
			if err := s.repo.Hall.LockSchedule(ctx, hall.ID); err != nil {
				return err
			}
			if err := s.checkHallSchedule(ctx, hall.ID, start, end, nil); err != nil {
				return err
			}
		}
		if err := s.repo.Event.Create(ctx, event); err != nil {
			return err
		}
		if len(speakers) > 0 {
			if err := s.repo.Speaker.ReplaceForEvent(ctx, event.ID, speakers); err != nil {
				return err
			}
		}
		return s.materializeSeats(ctx, event, now)
	})
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		s.log.Error("Failed to create event", zap.Error(err), zap.String("title", event.Title))
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("organizer_id", caller.ID.String()),
		zap.Int("total_seats", event.TotalSeats),
	)

	return s.detailResponse(ctx, event)
}

func (s *eventService) UpdateEvent(ctx context.Context, caller entity.Caller, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	now := s.clock.Now()

	event, err := s.findManaged(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}
	if observed := event.ObservedStatus(now); observed.Terminal() {
		return nil, errInvalidState("cannot update a %s event", observed)
	}

	date := event.StartsAt.In(s.loc).Format(utils.DateLayout)
	startTime := event.StartsAt.In(s.loc).Format(utils.TimeLayout)
	endTime := event.EndsAt.In(s.loc).Format(utils.TimeLayout)
	if req.Date != nil {
		date = *req.Date
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	start, end, err := eventWindow(date, startTime, endTime, s.loc)
	if err != nil {
		return nil, err
	}
	timeChanged := !start.Equal(event.StartsAt) || !end.Equal(event.EndsAt)
	if timeChanged {
		if err := s.checkNotPast(start, now); err != nil {
			return nil, err
		}
	}

	regStart, regEnd := event.RegistrationStart, event.RegistrationEnd
	if req.RegistrationStart != nil {
		regStart = req.RegistrationStart
	}
	if req.RegistrationEnd != nil {
		regEnd = req.RegistrationEnd
	}
	if err := checkRegistrationWindow(regStart, regEnd, end); err != nil {
		return nil, err
	}

	hallChanged := false
	var hall *entity.Hall
	if req.HallID != nil && (event.HallID == nil || *req.HallID != event.HallID.String()) {
		hall, err = s.findActiveHall(ctx, *req.HallID)
		if err != nil {
			return nil, err
		}
		hallChanged = true
	} else if event.HallID != nil {
		hall, err = s.repo.Hall.FindByID(ctx, *event.HallID, true)
		if err != nil {
			return nil, fmt.Errorf("find hall: %w", err)
		}
		if hall == nil {
			return nil, errNotFound("hall not found")
		}
	}

	reqRows, reqCols, reqTotal := req.NumberOfRows, req.SeatsPerRow, req.TotalSeats
	if !hallChanged {
		if reqRows == nil && reqCols == nil && event.Seated() {
			rows, cols := event.NumberOfRows, event.SeatsPerRow
			reqRows, reqCols = &rows, &cols
		}
		if reqTotal == nil && hall == nil {
			total := event.TotalSeats
			reqTotal = &total
		}
	}
	rows, cols, total, err := resolveGeometry(hall, reqRows, reqCols, reqTotal)
	if err != nil {
		return nil, err
	}
	if total < event.RegisteredCount {
		return nil, errValidation("total seats %d cannot be below the %d registered", total, event.RegisteredCount)
	}
	geometryChanged := hallChanged || rows != event.NumberOfRows || cols != event.SeatsPerRow

	var speakers []*entity.EventSpeaker
	if req.SpeakerIDs != nil {
		speakers, err = s.resolveSpeakers(ctx, req.SpeakerIDs, now)
		if err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		tags, err := normalizeTags(req.Tags)
		if err != nil {
			return nil, err
		}
		event.Tags = tags
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}
	if req.MaxTicketsPerUser != nil {
		event.MaxTicketsPerUser = *req.MaxTicketsPerUser
	}
	switch {
	case req.Location != nil:
		event.Location = strings.TrimSpace(*req.Location)
	case hallChanged:
		event.Location = hall.Address
	}
	if event.Location == "" && hall != nil {
		event.Location = hall.Address
	}
	event.StartsAt, event.EndsAt = start, end
	event.RegistrationStart, event.RegistrationEnd = regStart, regEnd
	event.TotalSeats, event.NumberOfRows, event.SeatsPerRow = total, rows, cols
	if hall != nil {
		event.HallID = &hall.ID
	}
	event.UpdatedAt = now

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if hall != nil && (timeChanged || hallChanged) {
			if err := s.repo.Hall.LockSchedule(ctx, hall.ID); err != nil {
				return err
			}
			if err := s.checkHallSchedule(ctx, hall.ID, start, end, &event.ID); err != nil {
				return err
			}
		}
		if geometryChanged {
			seated, err := s.repo.Ticket.CountSeated(ctx, event.ID)
			if err != nil {
				return err
			}
			if seated > 0 {
				return errConflict("%d seats are already held by tickets; cancel them before changing the layout", seated)
			}
			if err := s.repo.Seat.DeleteByEvent(ctx, event.ID); err != nil {
				return err
			}
		}
		if err := s.repo.Event.Update(ctx, event); err != nil {
			return err
		}
		if req.SpeakerIDs != nil {
			if err := s.repo.Speaker.ReplaceForEvent(ctx, event.ID, speakers); err != nil {
				return err
			}
		}
		if geometryChanged {
			return s.materializeSeats(ctx, event, now)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		if errors.Is(err, repository.ErrBelowRegistered) {
			return nil, errConflict("total seats cannot be below the registered count")
		}
		s.log.Error("Failed to update event", zap.Error(err), zap.String("event_id", event.ID.String()))
		return nil, fmt.Errorf("update event: %w", err)
	}

	if geometryChanged {
		s.seats.invalidate(ctx, event.ID)
	}

	s.log.Info("Event updated",
		zap.String("event_id", event.ID.String()),
		zap.Bool("geometry_changed", geometryChanged),
	)

	return s.detailResponse(ctx, event)
}

func (s *eventService) DeleteEvent(ctx context.Context, caller entity.Caller, eventID string) error {
	event, err := s.findManaged(ctx, caller, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Event.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("event not found")
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.seats.invalidate(ctx, event.ID)

	s.log.Info("Event deleted", zap.String("event_id", event.ID.String()))
	return nil
}

func (s *eventService) PublishEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanOrganize() {
		return nil, errForbidden("only organizers can publish events")
	}

	now := s.clock.Now()
	if started, _ := event.RegistrationOpen(now); !started {
		return nil, errInvalidState("registration has not started")
	}

	updated, err := s.transition(ctx, event, entity.EventStatusPublished, nil,
		entity.EventStatusDraft, entity.EventStatusPending, entity.EventStatusPublished)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.log, message.EventPublished, s.eventMessage(updated))
	return s.toResponse(updated), nil
}

func (s *eventService) SubmitEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error) {
	event, err := s.findManaged(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, event, entity.EventStatusPending, nil, entity.EventStatusDraft)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

func (s *eventService) RejectEvent(ctx context.Context, caller entity.Caller, eventID string, req *request.RejectEventRequest) (*response.EventResponse, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanOrganize() {
		return nil, errForbidden("only organizers can reject events")
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, errValidation("rejection reason is required")
	}

	updated, err := s.transition(ctx, event, entity.EventStatusRejected, &reason,
		entity.EventStatusDraft, entity.EventStatusPending)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

func (s *eventService) CancelEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error) {
	event, err := s.findManaged(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if observed := event.ObservedStatus(now); !observed.CanTransitionTo(entity.EventStatusCancelled) {
		return nil, errInvalidState("cannot cancel a %s event", observed)
	}
	if !now.Before(event.StartsAt.Add(-entity.CancelNotice)) {
		return nil, errInvalidState("events can only be cancelled more than %d hours before they start", int(entity.CancelNotice.Hours()))
	}

	err = s.repo.Event.CancelIfUnderHalf(ctx, event.ID,
		[]entity.EventStatus{entity.EventStatusDraft, entity.EventStatusPending, entity.EventStatusPublished})
	switch {
	case errors.Is(err, repository.ErrTooManyRegistrations):
		return nil, errInvalidState("more than half of the seats are registered")
	case errors.Is(err, repository.ErrStatusChanged):
		return nil, errConflict("event status changed, please retry")
	case errors.Is(err, repository.ErrNotFound):
		return nil, errNotFound("event not found")
	case err != nil:
		return nil, fmt.Errorf("cancel event: %w", err)
	}

	s.log.Info("Event cancelled",
		zap.String("event_id", event.ID.String()),
		zap.Int("registered_count", event.RegisteredCount),
	)

	event.Status = entity.EventStatusCancelled
	publish(ctx, s.publisher, s.log, message.EventCancelled, s.eventMessage(event))
	return s.toResponse(event), nil
}

func (s *eventService) CompleteEvent(ctx context.Context, caller entity.Caller, eventID string) (*response.EventResponse, error) {
	event, err := s.findManaged(ctx, caller, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, event, entity.EventStatusCompleted, nil,
		entity.EventStatusDraft, entity.EventStatusPending, entity.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

func (s *eventService) SweepStatuses(ctx context.Context) (int64, error) {
	changed, err := s.repo.Event.SweepStatuses(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep event statuses: %w", err)
	}
	if changed > 0 {
		s.log.Info("Event statuses swept", zap.Int64("changed", changed))
	}
	return changed, nil
}

// transition moves event from its observed status to next with a conditional update.
func (s *eventService) transition(ctx context.Context, event *entity.Event, next entity.EventStatus, reason *string, from ...entity.EventStatus) (*entity.Event, error) {
	observed := event.ObservedStatus(s.clock.Now())
	if !observed.CanTransitionTo(next) {
		return nil, errInvalidState("cannot move a %s event to %s", observed, next)
	}

	err := s.repo.Event.UpdateStatus(ctx, event.ID, from, next, reason)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, errConflict("event status changed, please retry")
	}
	if err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}

	s.log.Info("Event status changed",
		zap.String("event_id", event.ID.String()),
		zap.String("from", string(observed)),
		zap.String("to", string(next)),
	)

	event.Status = next
	if reason != nil {
		event.RejectionReason = reason
	}
	return event, nil
}

func (s *eventService) findEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	id, err := parseID(eventID, "event")
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, id, false)
	if err != nil {
		s.log.Error("Failed to find event", zap.Error(err), zap.String("event_id", eventID))
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, errNotFound("event not found")
	}
	return event, nil
}

// findVisible hides events the caller may not see behind NotFound.
func (s *eventService) findVisible(ctx context.Context, caller entity.Caller, eventID string) (*entity.Event, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.VisibleTo(caller, s.clock.Now()) {
		return nil, errNotFound("event not found")
	}
	return event, nil
}

// findManaged loads an event the caller owns; admins manage every event.
func (s *eventService) findManaged(ctx context.Context, caller entity.Caller, eventID string) (*entity.Event, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, event) {
		return nil, errForbidden("you do not manage this event")
	}
	return event, nil
}

func normalizeTags(raw []string) ([]string, error) {
	tags := entity.NormalizeTags(raw)
	if len(tags) > entity.MaxEventTags {
		return nil, errValidation("an event can carry at most %d tags", entity.MaxEventTags)
	}
	return tags, nil
}

// restrictToVisible limits a listing to public events plus the caller's own, unless the caller organizes.
func restrictToVisible(filter *repository.EventFilter, caller entity.Caller) {
	if caller.Role.CanOrganize() {
		return
	}
	filter.VisibleStatuses = entity.PublicEventStatuses
	if !caller.Anonymous() {
		filter.VisibleOwner = &caller.ID
	}
}

func canManage(caller entity.Caller, event *entity.Event) bool {
	if caller.Role == entity.RoleAdmin {
		return true
	}
	return caller.Role.CanOrganize() && event.OwnedBy(caller.ID)
}

func (s *eventService) findActiveHall(ctx context.Context, hallID string) (*entity.Hall, error) {
	id, err := uuid.Parse(hallID)
	if err != nil {
		return nil, errValidation("invalid hall_id")
	}

	hall, err := s.repo.Hall.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find hall: %w", err)
	}
	if hall == nil {
		return nil, errNotFound("hall not found")
	}
	if hall.Status != entity.HallStatusActive {
		return nil, errInvalidState("hall is %s", hall.Status)
	}
	return hall, nil
}

// checkHallSchedule rejects overlaps and gaps shorter than MinHallGap on the same calendar day.
func (s *eventService) checkHallSchedule(ctx context.Context, hallID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	dayStart, dayEnd := utils.DayBounds(start, s.loc)
	sameDay, err := s.repo.Event.FindInHall(ctx, hallID, dayStart, dayEnd, excludeID)
	if err != nil {
		return err
	}

	for _, other := range sameDay {
		if other.Overlaps(start, end) {
			return errConflict("hall is already booked from %s to %s",
				other.StartsAt.In(s.loc).Format(utils.TimeLayout), other.EndsAt.In(s.loc).Format(utils.TimeLayout))
		}
		if other.GapViolation(start, end) {
			return errConflict("hall needs at least %d hours between events; %q runs %s to %s",
				int(entity.MinHallGap.Hours()), other.Title,
				other.StartsAt.In(s.loc).Format(utils.TimeLayout), other.EndsAt.In(s.loc).Format(utils.TimeLayout))
		}
	}
	return nil
}

func (s *eventService) checkNotPast(start, now time.Time) error {
	today, _ := utils.DayBounds(now, s.loc)
	if start.Before(today) {
		return errValidation("event date cannot be in the past")
	}
	return nil
}

func (s *eventService) materializeSeats(ctx context.Context, event *entity.Event, now time.Time) error {
	if !event.Seated() {
		return nil
	}
	grid := entity.SeatGrid{
		HallID:  *event.HallID,
		EventID: &event.ID,
		Rows:    event.NumberOfRows,
		Cols:    event.SeatsPerRow,
	}
	return s.repo.Seat.CreateBatch(ctx, grid.Build(now))
}

func (s *eventService) toResponse(event *entity.Event) *response.EventResponse {
	resp := response.EventToResponse(event, s.clock.Now(), s.loc)
	return &resp
}

// detailResponse is toResponse plus the event's speakers.
func (s *eventService) detailResponse(ctx context.Context, event *entity.Event) (*response.EventResponse, error) {
	links, err := s.repo.Speaker.FindByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("find event speakers: %w", err)
	}
	resp := s.toResponse(event)
	resp.Speakers = response.EventSpeakersToResponse(links)
	return resp, nil
}

// resolveSpeakers turns speaker ids into links ordered as sent. Every id must name a live speaker.
func (s *eventService) resolveSpeakers(ctx context.Context, raw []string, now time.Time) ([]*entity.EventSpeaker, error) {
	if len(raw) > entity.MaxEventSpeakers {
		return nil, errValidation("an event can list at most %d speakers", entity.MaxEventSpeakers)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errValidation("invalid speaker id %q", v)
		}
		if _, dup := seen[id]; dup {
			return nil, errValidation("speaker %s is listed twice", id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found, err := s.repo.Speaker.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find speakers: %w", err)
	}
	live := make(map[uuid.UUID]struct{}, len(found))
	for _, speaker := range found {
		live[speaker.ID] = struct{}{}
	}

	links := make([]*entity.EventSpeaker, len(ids))
	for i, id := range ids {
		if _, ok := live[id]; !ok {
			return nil, errValidation("speaker %s not found", id)
		}
		links[i] = &entity.EventSpeaker{SpeakerID: id, DisplayOrder: i, CreatedAt: now}
	}
	return links, nil
}

func (s *eventService) eventMessage(event *entity.Event) message.EventMessage {
	return message.EventMessage{
		EventID:         event.ID.String(),
		Title:           event.Title,
		StartsAt:        event.StartsAt,
		RegisteredCount: event.RegisteredCount,
		OccurredAt:      s.clock.Now(),
	}
}

func checkRegistrationWindow(start, end *time.Time, eventEnd time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return errValidation("registration_end must be after registration_start")
	}
	if start != nil && !start.Before(eventEnd) {
		return errValidation("registration_start must be before the event ends")
	}
	return nil
}

// resolveGeometry picks the seat layout. Without a hall the event is unseated and needs an
// explicit total; with a hall the layout defaults to the hall's default grid.
func resolveGeometry(hall *entity.Hall, rows, cols, total *int) (int, int, int, error) {
	if hall == nil {
		if rows != nil || cols != nil {
			return 0, 0, 0, errValidation("a seat layout requires a hall")
		}
		if total == nil || *total < 1 {
			return 0, 0, 0, errValidation("total_seats is required for an event without a hall")
		}
		return 0, 0, *total, nil
	}

	if (rows == nil) != (cols == nil) {
		return 0, 0, 0, errValidation("number_of_rows and seats_per_row must be set together")
	}

	r, c := hall.DefaultGrid()
	if rows != nil {
		r, c = *rows, *cols
	}
	if total != nil && *total != r*c {
		return 0, 0, 0, errValidation("total_seats %d must equal number_of_rows x seats_per_row (%d)", *total, r*c)
	}
	if r < 1 || c < 1 || !hall.FitsGrid(r, c) {
		return 0, 0, 0, errValidation("layout %dx%d does not fit hall limits %dx%d with capacity %d",
			r, c, hall.MaxRows, hall.MaxSeatsPerRow, hall.Capacity)
	}
	return r, c, r * c, nil
}
