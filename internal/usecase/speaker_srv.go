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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SpeakerService interface {
	// Public endpoints
	GetSpeakers(ctx context.Context, req *request.SpeakerListRequest) (*response.PaginatedResponse[response.SpeakerResponse], error)
	GetSpeakerByID(ctx context.Context, caller entity.Caller, speakerID string) (*response.SpeakerDetailResponse, error)
	GetSpeakerEvents(ctx context.Context, caller entity.Caller, speakerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)

	// Organizer endpoints
	CreateSpeaker(ctx context.Context, req *request.CreateSpeakerRequest) (*response.SpeakerResponse, error)
	UpdateSpeaker(ctx context.Context, speakerID string, req *request.UpdateSpeakerRequest) (*response.SpeakerResponse, error)
	DeleteSpeaker(ctx context.Context, speakerID string) error
}

type speakerService struct {
	repo  *repository.Repository
	clock clock.Clock
	loc   *time.Location
	log   *zap.Logger
}

func NewSpeakerService(repo *repository.Repository, clk clock.Clock, loc *time.Location, log *zap.Logger) SpeakerService {
	return &speakerService{
		repo:  repo,
		clock: clk,
		loc:   loc,
		log:   log.With(zap.String("service", "speaker")),
	}
}

func (s *speakerService) GetSpeakers(ctx context.Context, req *request.SpeakerListRequest) (*response.PaginatedResponse[response.SpeakerResponse], error) {
	filter := repository.SpeakerFilter{Search: strings.TrimSpace(req.Search)}

	speakers, err := s.repo.Speaker.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get speakers", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get speakers: %w", err)
	}

	total, err := s.repo.Speaker.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count speakers", zap.Error(err))
		return nil, fmt.Errorf("count speakers: %w", err)
	}

	out := make([]response.SpeakerResponse, len(speakers))
	for i, speaker := range speakers {
		out[i] = response.SpeakerToResponse(speaker)
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *speakerService) GetSpeakerByID(ctx context.Context, caller entity.Caller, speakerID string) (*response.SpeakerDetailResponse, error) {
	speaker, err := s.findSpeaker(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Event.Count(ctx, s.eventFilter(caller, speaker.ID))
	if err != nil {
		return nil, fmt.Errorf("count speaker events: %w", err)
	}

	return &response.SpeakerDetailResponse{
		SpeakerResponse: response.SpeakerToResponse(speaker),
		TotalEvents:     total,
	}, nil
}

// GetSpeakerEvents applies the same visibility as the event listing.
func (s *speakerService) GetSpeakerEvents(ctx context.Context, caller entity.Caller, speakerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	speaker, err := s.findSpeaker(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	filter := s.eventFilter(caller, speaker.ID)
	events, err := s.repo.Event.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get speaker events", zap.Error(err), zap.String("speaker_id", speaker.ID.String()))
		return nil, fmt.Errorf("get speaker events: %w", err)
	}

	total, err := s.repo.Event.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count speaker events: %w", err)
	}

	return response.NewPaginatedResponse(response.EventsToResponse(events, filter.Now, s.loc), req.Page, req.Limit(), total), nil
}

func (s *speakerService) CreateSpeaker(ctx context.Context, req *request.CreateSpeakerRequest) (*response.SpeakerResponse, error) {
	now := s.clock.Now()
	speaker := &entity.Speaker{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        strings.TrimSpace(req.Name),
		Title:       optionalText(req.Title),
		Company:     optionalText(req.Company),
		Bio:         optionalText(req.Bio),
		Email:       optionalText(req.Email),
		Phone:       optionalText(req.Phone),
		LinkedinURL: optionalText(req.LinkedinURL),
		AvatarURL:   optionalText(req.AvatarURL),
	}
	if speaker.Name == "" {
		return nil, errValidation("speaker name is required")
	}
	if err := s.checkEmailFree(ctx, speaker.Email, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Speaker.Create(ctx, speaker); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, errConflict("email is already used by another speaker")
		}
		return nil, fmt.Errorf("create speaker: %w", err)
	}

	s.log.Info("Speaker created",
		zap.String("speaker_id", speaker.ID.String()),
		zap.String("name", speaker.Name),
	)

	resp := response.SpeakerToResponse(speaker)
	return &resp, nil
}

func (s *speakerService) UpdateSpeaker(ctx context.Context, speakerID string, req *request.UpdateSpeakerRequest) (*response.SpeakerResponse, error) {
	speaker, err := s.findSpeaker(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errValidation("speaker name is required")
		}
		speaker.Name = name
	}
	if req.Email != nil {
		email := optionalText(req.Email)
		if err := s.checkEmailFree(ctx, email, speaker.ID); err != nil {
			return nil, err
		}
		speaker.Email = email
	}
	for _, field := range []struct {
		dst **string
		src *string
	}{
		{&speaker.Title, req.Title},
		{&speaker.Company, req.Company},
		{&speaker.Bio, req.Bio},
		{&speaker.Phone, req.Phone},
		{&speaker.LinkedinURL, req.LinkedinURL},
		{&speaker.AvatarURL, req.AvatarURL},
	} {
		if field.src != nil {
			*field.dst = optionalText(field.src)
		}
	}
	speaker.UpdatedAt = s.clock.Now()

	if err := s.repo.Speaker.Update(ctx, speaker); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errNotFound("speaker not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, errConflict("email is already used by another speaker")
		}
		return nil, fmt.Errorf("update speaker: %w", err)
	}

	s.log.Info("Speaker updated", zap.String("speaker_id", speaker.ID.String()))

	resp := response.SpeakerToResponse(speaker)
	return &resp, nil
}

// DeleteSpeaker soft-deletes the speaker. Event links stay but are no longer listed.
func (s *speakerService) DeleteSpeaker(ctx context.Context, speakerID string) error {
	speaker, err := s.findSpeaker(ctx, speakerID)
	if err != nil {
		return err
	}

	if err := s.repo.Speaker.Delete(ctx, speaker.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("speaker not found")
		}
		return fmt.Errorf("delete speaker: %w", err)
	}

	s.log.Info("Speaker deleted", zap.String("speaker_id", speaker.ID.String()))
	return nil
}

func (s *speakerService) findSpeaker(ctx context.Context, speakerID string) (*entity.Speaker, error) {
	id, err := parseID(speakerID, "speaker")
	if err != nil {
		return nil, err
	}

	speaker, err := s.repo.Speaker.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find speaker: %w", err)
	}
	if speaker == nil {
		return nil, errNotFound("speaker not found")
	}
	return speaker, nil
}

func (s *speakerService) checkEmailFree(ctx context.Context, email *string, self uuid.UUID) error {
	if email == nil {
		return nil
	}
	existing, err := s.repo.Speaker.FindByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("find speaker by email: %w", err)
	}
	if existing != nil && existing.ID != self {
		return errConflict("email is already used by another speaker")
	}
	return nil
}

func (s *speakerService) eventFilter(caller entity.Caller, speakerID uuid.UUID) repository.EventFilter {
	filter := repository.EventFilter{
		SpeakerID: &speakerID,
		Now:       s.clock.Now(),
	}
	restrictToVisible(&filter, caller)
	return filter
}

// optionalText trims v and maps blank to nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
