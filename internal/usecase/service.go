package usecase

import (
	"context"

	"event-registration/internal/data/repository"
	"event-registration/pkg/broker"
	"event-registration/pkg/cache"
	"event-registration/pkg/clock"
	"event-registration/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Hall    HallService
	Event   EventService
	Ticket  TicketService
	Checkin CheckinService
	Report  ReportService
	Speaker SpeakerService
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Cache     cache.Cache
	Publisher broker.Publisher
	Clock     clock.Clock
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	loc := config.App.Location()
	seatCache := newSeatCache(deps.Cache, config.Redis.SeatCacheTTL, log)

	return &Service{
		Hall:    NewHallService(repo, deps.Clock, loc, log),
		Event:   NewEventService(repo, seatCache, deps.Publisher, deps.Clock, loc, log),
		Ticket:  NewTicketService(repo, seatCache, deps.Publisher, deps.Clock, log),
		Checkin: NewCheckinService(repo, deps.Publisher, deps.Clock, log),
		Report:  NewReportService(repo, deps.Clock, loc, log),
		Speaker: NewSpeakerService(repo, deps.Clock, loc, log),
	}
}

// parseID turns a path parameter into an id; a malformed id cannot match any record.
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errNotFound("%s not found", what)
	}
	return id, nil
}

// publish sends a domain message after commit. Delivery failures never undo the commit.
func publish(ctx context.Context, pub broker.Publisher, log *zap.Logger, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("Failed to publish message",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
