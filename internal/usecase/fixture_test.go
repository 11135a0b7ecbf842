package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var fixtureNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{key: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.sent))
	for i, m := range p.sent {
		keys[i] = m.key
	}
	return keys
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *mapCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

type fixture struct {
	store *memStore
	svc   *Service
	clock *testClock
	pub   *recordingPublisher
	cache *mapCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	clk := &testClock{now: fixtureNow}
	pub := &recordingPublisher{}
	cache := &mapCache{data: map[string][]byte{}}

	config := &utils.Config{
		App:   utils.AppConfig{Timezone: "UTC"},
		Redis: utils.RedisConfig{SeatCacheTTL: time.Minute},
	}
	svc := NewService(store.repository(), config, Deps{Cache: cache, Publisher: pub, Clock: clk}, zap.NewNop())

	return &fixture{store: store, svc: svc, clock: clk, pub: pub, cache: cache}
}

var ctx = context.Background()

func organizer() entity.Caller { return entity.Caller{ID: uuid.New(), Role: entity.RoleOrganizer} }
func student() entity.Caller { return entity.Caller{ID: uuid.New(), Role: entity.RoleStudent} }
func staff() entity.Caller { return entity.Caller{ID: uuid.New(), Role: entity.RoleStaff} }
func admin() entity.Caller { return entity.Caller{ID: uuid.New(), Role: entity.RoleAdmin} }

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func (f *fixture) seedHall(t *testing.T, capacity, maxRows, maxCols int) *entity.Hall {
	t.Helper()
	hall := &entity.Hall{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: fixtureNow, UpdatedAt: fixtureNow},
		Name:           "Hall " + uuid.NewString()[:8],
		Capacity:       capacity,
		MaxRows:        maxRows,
		MaxSeatsPerRow: maxCols,
		Status:         entity.HallStatusActive,
	}
	if err := f.store.repository().Hall.Create(ctx, hall); err != nil {
		t.Fatalf("seed hall: %v", err)
	}
	return hall
}

type eventSeed struct {
	hall       *entity.Hall
	owner      uuid.UUID
	start      time.Time
	duration   time.Duration
	total      int
	rows       int
	cols       int
	status     entity.EventStatus
	regStart   *time.Time
	regEnd     *time.Time
	registered int
}

// seedEvent writes an event straight into the store, materializing seats when it has a hall.
func (f *fixture) seedEvent(t *testing.T, s eventSeed) *entity.Event {
	t.Helper()
	if s.duration == 0 {
		s.duration = 2 * time.Hour
	}
	if s.status == "" {
		s.status = entity.EventStatusPublished
	}
	if s.owner == uuid.Nil {
		s.owner = uuid.New()
	}
	if s.hall != nil && s.rows > 0 {
		s.total = s.rows * s.cols
	}

	event := &entity.Event{
		Base:              entity.Base{ID: uuid.New(), CreatedAt: fixtureNow, UpdatedAt: fixtureNow},
		Title:             "Event " + uuid.NewString()[:8],
		StartsAt:          s.start,
		EndsAt:            s.start.Add(s.duration),
		OrganizerID:       s.owner,
		TotalSeats:        s.total,
		Status:            s.status,
		RegistrationStart: s.regStart,
		RegistrationEnd:   s.regEnd,
		MaxTicketsPerUser: 1,
	}
	if s.hall != nil {
		event.HallID = &s.hall.ID
		event.NumberOfRows, event.SeatsPerRow = s.rows, s.cols
	}

	repo := f.store.repository()
	if err := repo.Event.Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if event.Seated() {
		grid := entity.SeatGrid{HallID: *event.HallID, EventID: &event.ID, Rows: s.rows, Cols: s.cols}
		if err := repo.Seat.CreateBatch(ctx, grid.Build(fixtureNow)); err != nil {
			t.Fatalf("seed seats: %v", err)
		}
	}
	f.store.mu.Lock()
	f.store.events[event.ID].RegisteredCount = s.registered
	f.store.mu.Unlock()
	event.RegisteredCount = s.registered
	return event
}

func (f *fixture) event(t *testing.T, id uuid.UUID) entity.Event {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	e, ok := f.store.events[id]
	if !ok {
		t.Fatalf("event %s not in store", id)
	}
	return *e
}

func (f *fixture) seat(t *testing.T, id uuid.UUID) entity.Seat {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.seats[id]
	if !ok {
		t.Fatalf("seat %s not in store", id)
	}
	return *s
}

func (f *fixture) checkins() []entity.TicketCheckin {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]entity.TicketCheckin, len(f.store.checkins))
	for i, c := range f.store.checkins {
		out[i] = *c
	}
	return out
}

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %q (%v)", kind, got, err)
	}
}
