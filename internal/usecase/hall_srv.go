package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/internal/data/repository"
	"event-registration/internal/dto/request"
	"event-registration/internal/dto/response"
	"event-registration/pkg/clock"
	"event-registration/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HallService interface {
	// Public endpoints
	GetHalls(ctx context.Context, req *request.HallListRequest) (*response.PaginatedResponse[response.HallResponse], error)
	GetHallByID(ctx context.Context, hallID string) (*response.HallResponse, error)
	CheckAvailability(ctx context.Context, hallID string, req *request.HallAvailabilityRequest) (*response.HallAvailabilityResponse, error)

	// Organizer endpoints
	CreateHall(ctx context.Context, req *request.CreateHallRequest) (*response.HallResponse, error)
	UpdateHall(ctx context.Context, hallID string, req *request.UpdateHallRequest) (*response.HallResponse, error)
	DeleteHall(ctx context.Context, hallID string) error
	GenerateSeats(ctx context.Context, hallID string, req *request.GenerateSeatsRequest) ([]response.SeatResponse, error)
	GetSeatTemplates(ctx context.Context, hallID string) ([]response.SeatResponse, error)
}

type hallService struct {
	repo  *repository.Repository
	clock clock.Clock
	loc   *time.Location
	log   *zap.Logger
}

func NewHallService(repo *repository.Repository, clk clock.Clock, loc *time.Location, log *zap.Logger) HallService {
	return &hallService{
		repo:  repo,
		clock: clk,
		loc:   loc,
		log:   log.With(zap.String("service", "hall")),
	}
}

func (s *hallService) GetHalls(ctx context.Context, req *request.HallListRequest) (*response.PaginatedResponse[response.HallResponse], error) {
	filter := repository.HallFilter{
		Search:      strings.TrimSpace(req.Search),
		MinCapacity: req.MinCapacity,
		MaxCapacity: req.MaxCapacity,
	}
	if req.Status != "" {
		status := entity.HallStatus(req.Status)
		filter.Status = &status
	}

	halls, err := s.repo.Hall.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get halls", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get halls: %w", err)
	}

	total, err := s.repo.Hall.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count halls", zap.Error(err))
		return nil, fmt.Errorf("count halls: %w", err)
	}

	hallResponses := make([]response.HallResponse, len(halls))
	for i, hall := range halls {
		hallResponses[i] = response.HallToResponse(hall)
	}

	return response.NewPaginatedResponse(hallResponses, req.Page, req.Limit(), total), nil
}

func (s *hallService) GetHallByID(ctx context.Context, hallID string) (*response.HallResponse, error) {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	resp := response.HallToResponse(hall)
	return &resp, nil
}

func (s *hallService) CheckAvailability(ctx context.Context, hallID string, req *request.HallAvailabilityRequest) (*response.HallAvailabilityResponse, error) {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	start, end, err := eventWindow(req.Date, req.StartTime, req.EndTime, s.loc)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.repo.Event.FindInHall(ctx, hall.ID, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("check hall availability: %w", err)
	}

	return &response.HallAvailabilityResponse{
		HallID:      hall.ID.String(),
		StartsAt:    start,
		EndsAt:      end,
		IsAvailable: len(conflicts) == 0,
		Conflicts:   response.EventsToResponse(conflicts, s.clock.Now(), s.loc),
	}, nil
}

func (s *hallService) CreateHall(ctx context.Context, req *request.CreateHallRequest) (*response.HallResponse, error) {
	now := s.clock.Now()
	hall := &entity.Hall{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           strings.TrimSpace(req.Name),
		Address:        strings.TrimSpace(req.Address),
		Capacity:       req.Capacity,
		MaxRows:        req.MaxRows,
		MaxSeatsPerRow: req.MaxSeatsPerRow,
		Status:         entity.HallStatusActive,
	}
	if hall.MaxRows == 0 {
		hall.MaxRows = entity.DefaultMaxRows
	}
	if hall.MaxSeatsPerRow == 0 {
		hall.MaxSeatsPerRow = entity.DefaultMaxSeatsPerRow
	}
	if hall.Name == "" {
		return nil, errValidation("hall name is required")
	}
	if hall.Capacity < 1 || hall.Capacity > entity.MaxHallCapacity {
		return nil, errValidation("capacity must be between 1 and %d", entity.MaxHallCapacity)
	}

	if err := s.repo.Hall.Create(ctx, hall); err != nil {
		return nil, fmt.Errorf("create hall: %w", err)
	}

	s.log.Info("Hall created",
		zap.String("hall_id", hall.ID.String()),
		zap.String("name", hall.Name),
		zap.Int("capacity", hall.Capacity),
	)

	resp := response.HallToResponse(hall)
	return &resp, nil
}

func (s *hallService) UpdateHall(ctx context.Context, hallID string, req *request.UpdateHallRequest) (*response.HallResponse, error) {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errValidation("hall name is required")
		}
		hall.Name = name
	}
	if req.Address != nil {
		hall.Address = strings.TrimSpace(*req.Address)
	}
	if req.MaxRows != nil {
		hall.MaxRows = *req.MaxRows
	}
	if req.MaxSeatsPerRow != nil {
		hall.MaxSeatsPerRow = *req.MaxSeatsPerRow
	}
	if req.Status != nil {
		status := entity.HallStatus(*req.Status)
		if !status.Valid() {
			return nil, errValidation("invalid hall status %q", *req.Status)
		}
		hall.Status = status
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 || *req.Capacity > entity.MaxHallCapacity {
			return nil, errValidation("capacity must be between 1 and %d", entity.MaxHallCapacity)
		}
		templates, err := s.repo.Seat.CountTemplates(ctx, hall.ID)
		if err != nil {
			return nil, fmt.Errorf("count seat templates: %w", err)
		}
		if *req.Capacity < templates {
			return nil, errValidation("capacity %d is below the %d seats already laid out", *req.Capacity, templates)
		}
		hall.Capacity = *req.Capacity
	}
	hall.UpdatedAt = s.clock.Now()

	if err := s.repo.Hall.Update(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNotFound("hall not found")
		}
		return nil, fmt.Errorf("update hall: %w", err)
	}

	s.log.Info("Hall updated", zap.String("hall_id", hall.ID.String()))

	resp := response.HallToResponse(hall)
	return &resp, nil
}

func (s *hallService) DeleteHall(ctx context.Context, hallID string) error {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return err
	}

	open, err := s.repo.Event.CountOpenByHall(ctx, hall.ID)
	if err != nil {
		return fmt.Errorf("count hall events: %w", err)
	}
	if open > 0 {
		return errConflict("hall still has %d upcoming events", open)
	}

	if err := s.repo.Hall.Delete(ctx, hall.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("hall not found")
		}
		return fmt.Errorf("delete hall: %w", err)
	}

	s.log.Info("Hall deleted", zap.String("hall_id", hall.ID.String()))
	return nil
}

func (s *hallService) GenerateSeats(ctx context.Context, hallID string, req *request.GenerateSeatsRequest) ([]response.SeatResponse, error) {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	if !hall.FitsGrid(req.Rows, req.SeatsPerRow) {
		return nil, errValidation("layout %dx%d does not fit hall limits %dx%d with capacity %d",
			req.Rows, req.SeatsPerRow, hall.MaxRows, hall.MaxSeatsPerRow, hall.Capacity)
	}

	grid := entity.SeatGrid{
		HallID:  hall.ID,
		Rows:    req.Rows,
		Cols:    req.SeatsPerRow,
		Prefix:  strings.TrimSpace(req.Prefix),
		Section: strings.TrimSpace(req.SeatType),
	}
	seats := grid.Build(s.clock.Now())

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Seat.DeleteTemplates(ctx, hall.ID); err != nil {
			return err
		}
		return s.repo.Seat.CreateBatch(ctx, seats)
	})
	if err != nil {
		s.log.Error("Failed to generate seat templates", zap.Error(err), zap.String("hall_id", hall.ID.String()))
		return nil, fmt.Errorf("generate seats: %w", err)
	}

	s.log.Info("Seat templates generated",
		zap.String("hall_id", hall.ID.String()),
		zap.Int("rows", req.Rows),
		zap.Int("seats_per_row", req.SeatsPerRow),
	)

	return response.SeatsToResponse(seats), nil
}

func (s *hallService) GetSeatTemplates(ctx context.Context, hallID string) ([]response.SeatResponse, error) {
	hall, err := s.findHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.Seat.FindTemplates(ctx, hall.ID)
	if err != nil {
		return nil, fmt.Errorf("get seat templates: %w", err)
	}

	return response.SeatsToResponse(seats), nil
}

func (s *hallService) findHall(ctx context.Context, hallID string) (*entity.Hall, error) {
	id, err := parseID(hallID, "hall")
	if err != nil {
		return nil, err
	}

	hall, err := s.repo.Hall.FindByID(ctx, id, false)
	if err != nil {
		s.log.Error("Failed to find hall", zap.Error(err), zap.String("hall_id", hallID))
		return nil, fmt.Errorf("find hall: %w", err)
	}
	if hall == nil {
		return nil, errNotFound("hall not found")
	}
	return hall, nil
}

// eventWindow resolves a date and two HH:MM times into an interval on that day.
func eventWindow(date, startTime, endTime string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := utils.CombineDateTime(date, startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errValidation("invalid start time")
	}
	end, err := utils.CombineDateTime(date, endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errValidation("invalid end time")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errValidation("end time must be after start time")
	}
	return start, end, nil
}
