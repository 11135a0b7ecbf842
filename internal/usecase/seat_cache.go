package usecase

import (
	"context"
	"encoding/json"
	"time"

	"event-registration/internal/dto/response"
	"event-registration/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// seatVersionTTL outlives any seat list entry so a bumped version is never
// forgotten while data written under the previous one can still be read.
const seatVersionTTL = 24 * time.Hour

// seatCache keeps the available-seat list of an event for a short TTL.
//
// Entries are stored under a per-event version. invalidate writes a fresh
// version, so a list loaded before the bump and written after it lands under
// a key no reader asks for.
type seatCache struct {
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func newSeatCache(c cache.Cache, ttl time.Duration, log *zap.Logger) *seatCache {
	if c == nil {
		c = cache.NewNoop()
	}
	return &seatCache{cache: c, ttl: ttl, log: log.With(zap.String("service", "seat_cache"))}
}

func seatVersionKey(eventID uuid.UUID) string {
	return "seats:version:" + eventID.String()
}

func seatCacheKey(eventID uuid.UUID, version string) string {
	return "seats:available:" + eventID.String() + ":" + version
}

// version returns the current cache generation of an event, "0" before the first invalidation.
func (c *seatCache) version(ctx context.Context, eventID uuid.UUID) string {
	raw, ok := c.cache.Get(ctx, seatVersionKey(eventID))
	if !ok || len(raw) == 0 {
		return "0"
	}
	return string(raw)
}

// get returns the cached list along with the version it was looked up under.
// Callers that miss pass that version back to set.
func (c *seatCache) get(ctx context.Context, eventID uuid.UUID) ([]response.SeatResponse, string, bool) {
	version := c.version(ctx, eventID)
	key := seatCacheKey(eventID, version)
	raw, ok := c.cache.Get(ctx, key)
	if !ok {
		return nil, version, false
	}
	var seats []response.SeatResponse
	if err := json.Unmarshal(raw, &seats); err != nil {
		c.log.Warn("Dropping unreadable seat cache entry", zap.String("event_id", eventID.String()), zap.Error(err))
		c.cache.Delete(ctx, key)
		return nil, version, false
	}
	return seats, version, true
}

func (c *seatCache) set(ctx context.Context, eventID uuid.UUID, version string, seats []response.SeatResponse) {
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(seats)
	if err != nil {
		return
	}
	c.cache.Set(ctx, seatCacheKey(eventID, version), raw, c.ttl)
}

func (c *seatCache) invalidate(ctx context.Context, eventIDs ...uuid.UUID) {
	for _, id := range eventIDs {
		c.cache.Set(ctx, seatVersionKey(id), []byte(uuid.NewString()), seatVersionTTL)
	}
}
