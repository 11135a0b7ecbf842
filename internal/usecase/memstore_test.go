package usecase

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/internal/data/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for Postgres. Transactions are serialized and
// rolled back by restoring a snapshot, which mirrors the conditional-update semantics
// the SQL repositories rely on.
type memStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	halls    map[uuid.UUID]*entity.Hall
	events   map[uuid.UUID]*entity.Event
	seats    map[uuid.UUID]*entity.Seat
	tickets  map[uuid.UUID]*entity.Ticket
	checkins []*entity.TicketCheckin
	speakers map[uuid.UUID]*entity.Speaker
	links    map[uuid.UUID][]entity.EventSpeaker
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		halls:    map[uuid.UUID]*entity.Hall{},
		events:   map[uuid.UUID]*entity.Event{},
		seats:    map[uuid.UUID]*entity.Seat{},
		tickets:  map[uuid.UUID]*entity.Ticket{},
		speakers: map[uuid.UUID]*entity.Speaker{},
		links:    map[uuid.UUID][]entity.EventSpeaker{},
	}
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Tx:      s,
		Hall:    memHallRepo{s},
		Event:   memEventRepo{s},
		Seat:    memSeatRepo{s},
		Ticket:  memTicketRepo{s},
		Checkin: memCheckinRepo{s},
		Report:  memReportRepo{s},
		Speaker: memSpeakerRepo{s},
	}
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	halls    map[uuid.UUID]entity.Hall
	events   map[uuid.UUID]entity.Event
	seats    map[uuid.UUID]entity.Seat
	tickets  map[uuid.UUID]entity.Ticket
	speakers map[uuid.UUID]entity.Speaker
	links    map[uuid.UUID][]entity.EventSpeaker
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		halls:    make(map[uuid.UUID]entity.Hall, len(s.halls)),
		events:   make(map[uuid.UUID]entity.Event, len(s.events)),
		seats:    make(map[uuid.UUID]entity.Seat, len(s.seats)),
		tickets:  make(map[uuid.UUID]entity.Ticket, len(s.tickets)),
		speakers: make(map[uuid.UUID]entity.Speaker, len(s.speakers)),
		links:    make(map[uuid.UUID][]entity.EventSpeaker, len(s.links)),
	}
	for id, h := range s.halls {
		snap.halls[id] = *h
	}
	for id, e := range s.events {
		snap.events[id] = *e
	}
	for id, seat := range s.seats {
		snap.seats[id] = *seat
	}
	for id, t := range s.tickets {
		snap.tickets[id] = *t
	}
	for id, sp := range s.speakers {
		snap.speakers[id] = *sp
	}
	for id, l := range s.links {
		snap.links[id] = append([]entity.EventSpeaker(nil), l...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.halls = make(map[uuid.UUID]*entity.Hall, len(snap.halls))
	for id, h := range snap.halls {
		h := h
		s.halls[id] = &h
	}
	s.events = make(map[uuid.UUID]*entity.Event, len(snap.events))
	for id, e := range snap.events {
		e := e
		s.events[id] = &e
	}
	s.seats = make(map[uuid.UUID]*entity.Seat, len(snap.seats))
	for id, seat := range snap.seats {
		seat := seat
		s.seats[id] = &seat
	}
	s.tickets = make(map[uuid.UUID]*entity.Ticket, len(snap.tickets))
	for id, t := range snap.tickets {
		t := t
		s.tickets[id] = &t
	}
	s.speakers = make(map[uuid.UUID]*entity.Speaker, len(snap.speakers))
	for id, sp := range snap.speakers {
		sp := sp
		s.speakers[id] = &sp
	}
	s.links = snap.links
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// ==================== halls ====================

type memHallRepo struct{ s *memStore }

func (r memHallRepo) Create(_ context.Context, hall *entity.Hall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *hall
	r.s.halls[hall.ID] = &c
	return nil
}

func (r memHallRepo) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*entity.Hall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.halls[id]
	if !ok || (h.DeletedAt != nil && !includeDeleted) {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r memHallRepo) matching(filter repository.HallFilter) []*entity.Hall {
	out := []*entity.Hall{}
	for _, h := range r.s.halls {
		if h.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(h.Name+" "+h.Address), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != nil && h.Status != *filter.Status {
			continue
		}
		if filter.MinCapacity != nil && h.Capacity < *filter.MinCapacity {
			continue
		}
		if filter.MaxCapacity != nil && h.Capacity > *filter.MaxCapacity {
			continue
		}
		c := *h
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r memHallRepo) FindAll(_ context.Context, filter repository.HallFilter, limit, offset int) ([]*entity.Hall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matching(filter), limit, offset), nil
}

func (r memHallRepo) Count(_ context.Context, filter repository.HallFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r memHallRepo) Update(_ context.Context, hall *entity.Hall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.halls[hall.ID]
	if !ok || h.DeletedAt != nil {
		return repository.ErrNotFound
	}
	c := *hall
	r.s.halls[hall.ID] = &c
	return nil
}

func (r memHallRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.halls[id]
	if !ok || h.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	h.DeletedAt = &now
	return nil
}

func (r memHallRepo) LockSchedule(context.Context, uuid.UUID) error { return nil }

// ==================== events ====================

type memEventRepo struct{ s *memStore }

func (r memEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *event
	c.RegisteredCount, c.CheckedInCount = 0, 0
	r.s.events[event.ID] = &c
	return nil
}

func (r memEventRepo) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || (e.DeletedAt != nil && !includeDeleted) {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r memEventRepo) matching(filter repository.EventFilter) []*entity.Event {
	out := []*entity.Event{}
	for _, e := range r.s.events {
		if e.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Description+" "+e.Location), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Tag != "" && !slices.Contains(e.Tags, filter.Tag) {
			continue
		}
		if filter.SpeakerID != nil && !r.s.linked(e.ID, *filter.SpeakerID) {
			continue
		}
		if filter.HallID != nil && (e.HallID == nil || *e.HallID != *filter.HallID) {
			continue
		}
		if filter.OrganizerID != nil && e.OrganizerID != *filter.OrganizerID {
			continue
		}
		if filter.From != nil && e.StartsAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.StartsAt.Before(*filter.To) {
			continue
		}
		observed := e.ObservedStatus(filter.Now)
		if filter.Status != nil && observed != *filter.Status {
			continue
		}
		if len(filter.VisibleStatuses) > 0 {
			visible := false
			for _, st := range filter.VisibleStatuses {
				visible = visible || st == observed
			}
			if filter.VisibleOwner != nil && e.OrganizerID == *filter.VisibleOwner {
				visible = true
			}
			if !visible {
				continue
			}
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (r memEventRepo) FindAll(_ context.Context, filter repository.EventFilter, limit, offset int) ([]*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matching(filter), limit, offset), nil
}

func (r memEventRepo) Count(_ context.Context, filter repository.EventFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r memEventRepo) Update(_ context.Context, event *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[event.ID]
	if !ok || e.DeletedAt != nil || e.RegisteredCount > event.TotalSeats {
		return repository.ErrBelowRegistered
	}
	c := *event
	c.RegisteredCount, c.CheckedInCount, c.Status = e.RegisteredCount, e.CheckedInCount, e.Status
	r.s.events[event.ID] = &c
	return nil
}

func (r memEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

func (r memEventRepo) FindInHall(_ context.Context, hallID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Event{}
	for _, e := range r.s.events {
		if e.DeletedAt != nil || e.HallID == nil || *e.HallID != hallID {
			continue
		}
		if e.Status == entity.EventStatusCancelled || e.Status == entity.EventStatusRejected {
			continue
		}
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		if e.Overlaps(from, to) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r memEventRepo) CountOpenByHall(_ context.Context, hallID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, e := range r.s.events {
		if e.DeletedAt == nil && e.HallID != nil && *e.HallID == hallID && !e.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func (r memEventRepo) FindOverlappingForStudent(_ context.Context, studentID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Event{}
	for _, t := range r.s.tickets {
		if t.StudentID != studentID || t.Status != entity.TicketStatusActive || t.DeletedAt != nil || t.EventID == excludeID {
			continue
		}
		e, ok := r.s.events[t.EventID]
		if !ok || e.DeletedAt != nil || !e.Overlaps(start, end) {
			continue
		}
		if e.Status == entity.EventStatusCancelled || e.Status == entity.EventStatusRejected {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

func (r memEventRepo) UpdateStatus(_ context.Context, id uuid.UUID, from []entity.EventStatus, to entity.EventStatus, reason *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.DeletedAt != nil || !containsStatus(from, e.Status) {
		return repository.ErrStatusChanged
	}
	e.Status = to
	if reason != nil {
		e.RejectionReason = reason
	}
	return nil
}

func (r memEventRepo) CancelIfUnderHalf(_ context.Context, id uuid.UUID, from []entity.EventStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if e.TotalSeats > 0 && e.RegisteredCount > e.TotalSeats/2 {
		return repository.ErrTooManyRegistrations
	}
	if !containsStatus(from, e.Status) {
		return repository.ErrStatusChanged
	}
	e.Status = entity.EventStatusCancelled
	return nil
}

func (r memEventRepo) IncrementRegistered(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.DeletedAt != nil || e.Status.Terminal() || e.RegisteredCount >= e.TotalSeats {
		return repository.ErrEventFull
	}
	e.RegisteredCount++
	return nil
}

func (r memEventRepo) DecrementRegistered(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.events[id]; ok {
		e.RegisteredCount = max(e.RegisteredCount-1, 0)
	}
	return nil
}

func (r memEventRepo) IncrementCheckedIn(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.events[id]; ok {
		e.CheckedInCount++
	}
	return nil
}

func (r memEventRepo) SweepStatuses(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, e := range r.s.events {
		if e.DeletedAt != nil {
			continue
		}
		if observed := e.ObservedStatus(now); observed != e.Status {
			e.Status = observed
			changed++
		}
	}
	return changed, nil
}

func containsStatus(list []entity.EventStatus, st entity.EventStatus) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}

// ==================== seats ====================

type memSeatRepo struct{ s *memStore }

func sortSeats(seats []*entity.Seat) {
	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if len(a.RowLabel) != len(b.RowLabel) {
			return len(a.RowLabel) < len(b.RowLabel)
		}
		if a.RowLabel != b.RowLabel {
			return a.RowLabel < b.RowLabel
		}
		return a.SeatColumn < b.SeatColumn
	})
}

func (r memSeatRepo) CreateBatch(_ context.Context, seats []*entity.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, seat := range seats {
		c := *seat
		r.s.seats[seat.ID] = &c
	}
	return nil
}

func (r memSeatRepo) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*entity.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seat, ok := r.s.seats[id]
	if !ok || (seat.DeletedAt != nil && !includeDeleted) {
		return nil, nil
	}
	c := *seat
	return &c, nil
}

func (r memSeatRepo) eventSeats(eventID uuid.UUID) []*entity.Seat {
	out := []*entity.Seat{}
	for _, seat := range r.s.seats {
		if seat.DeletedAt == nil && seat.EventID != nil && *seat.EventID == eventID {
			out = append(out, seat)
		}
	}
	sortSeats(out)
	return out
}

func (r memSeatRepo) FindByEvent(_ context.Context, eventID uuid.UUID, status *entity.SeatStatus) ([]*entity.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Seat{}
	for _, seat := range r.eventSeats(eventID) {
		if status != nil && seat.Status != *status {
			continue
		}
		c := *seat
		out = append(out, &c)
	}
	return out, nil
}

func (r memSeatRepo) templates(hallID uuid.UUID) []*entity.Seat {
	out := []*entity.Seat{}
	for _, seat := range r.s.seats {
		if seat.DeletedAt == nil && seat.EventID == nil && seat.HallID == hallID {
			out = append(out, seat)
		}
	}
	sortSeats(out)
	return out
}

func (r memSeatRepo) FindTemplates(_ context.Context, hallID uuid.UUID) ([]*entity.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Seat{}
	for _, seat := range r.templates(hallID) {
		c := *seat
		out = append(out, &c)
	}
	return out, nil
}

func (r memSeatRepo) CountTemplates(_ context.Context, hallID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.templates(hallID)), nil
}

func (r memSeatRepo) DeleteTemplates(_ context.Context, hallID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, seat := range r.templates(hallID) {
		seat.DeletedAt = &now
	}
	return nil
}

func (r memSeatRepo) DeleteByEvent(_ context.Context, eventID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, seat := range r.eventSeats(eventID) {
		seat.DeletedAt = &now
	}
	return nil
}

func (r memSeatRepo) Claim(_ context.Context, eventID, seatID uuid.UUID) (*entity.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seat, ok := r.s.seats[seatID]
	if !ok || seat.DeletedAt != nil || seat.EventID == nil || *seat.EventID != eventID || seat.Status != entity.SeatStatusAvailable {
		return nil, repository.ErrSeatUnavailable
	}
	seat.Status = entity.SeatStatusReserved
	c := *seat
	return &c, nil
}

func (r memSeatRepo) ClaimFirstAvailable(_ context.Context, eventID uuid.UUID) (*entity.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, seat := range r.eventSeats(eventID) {
		if seat.Status == entity.SeatStatusAvailable {
			seat.Status = entity.SeatStatusReserved
			c := *seat
			return &c, nil
		}
	}
	return nil, repository.ErrSeatUnavailable
}

func (r memSeatRepo) move(seatID uuid.UUID, next entity.SeatStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seat, ok := r.s.seats[seatID]
	if !ok || !seat.Status.CanTransitionTo(next) {
		return repository.ErrSeatUnavailable
	}
	seat.Status = next
	return nil
}

func (r memSeatRepo) Release(_ context.Context, seatID uuid.UUID) error {
	return r.move(seatID, entity.SeatStatusAvailable)
}

func (r memSeatRepo) Occupy(_ context.Context, seatID uuid.UUID) error {
	return r.move(seatID, entity.SeatStatusOccupied)
}

// ==================== tickets ====================

type memTicketRepo struct{ s *memStore }

func (r memTicketRepo) Create(_ context.Context, ticket *entity.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickets {
		if t.EventID == ticket.EventID && t.StudentID == ticket.StudentID &&
			t.Status == entity.TicketStatusActive && t.DeletedAt == nil {
			return repository.ErrDuplicateTicket
		}
		if ticket.SeatID != nil && t.SeatID != nil && *t.SeatID == *ticket.SeatID && t.Status != entity.TicketStatusCancelled {
			return repository.ErrSeatUnavailable
		}
	}
	c := *ticket
	r.s.tickets[ticket.ID] = &c
	return nil
}

func (r memTicketRepo) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*entity.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok || (t.DeletedAt != nil && !includeDeleted) {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r memTicketRepo) detail(t *entity.Ticket) *entity.TicketDetail {
	d := &entity.TicketDetail{Ticket: *t}
	if e, ok := r.s.events[t.EventID]; ok {
		d.EventTitle, d.EventStartsAt, d.EventEndsAt = e.Title, e.StartsAt, e.EndsAt
	}
	if t.SeatID != nil {
		if seat, ok := r.s.seats[*t.SeatID]; ok {
			number := seat.SeatNumber
			d.SeatNumber = &number
		}
	}
	return d
}

func (r memTicketRepo) FindByCode(_ context.Context, code string) (*entity.TicketDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickets {
		if t.TicketCode == code && t.DeletedAt == nil {
			return r.detail(t), nil
		}
	}
	return nil, nil
}

func (r memTicketRepo) FindActive(_ context.Context, eventID, studentID uuid.UUID) (*entity.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickets {
		if t.EventID == eventID && t.StudentID == studentID && t.Status == entity.TicketStatusActive && t.DeletedAt == nil {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (r memTicketRepo) selectDetails(keep func(*entity.Ticket) bool) []*entity.TicketDetail {
	out := []*entity.TicketDetail{}
	for _, t := range r.s.tickets {
		if t.DeletedAt == nil && keep(t) {
			out = append(out, r.detail(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out
}

func (r memTicketRepo) FindByEvent(_ context.Context, eventID uuid.UUID, status *entity.TicketStatus, limit, offset int) ([]*entity.TicketDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.selectDetails(func(t *entity.Ticket) bool {
		return t.EventID == eventID && (status == nil || t.Status == *status)
	}), limit, offset), nil
}

func (r memTicketRepo) CountByEvent(_ context.Context, eventID uuid.UUID, status *entity.TicketStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.selectDetails(func(t *entity.Ticket) bool {
		return t.EventID == eventID && (status == nil || t.Status == *status)
	}))), nil
}

func (r memTicketRepo) FindByStudent(_ context.Context, studentID uuid.UUID, limit, offset int) ([]*entity.TicketDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	details := r.selectDetails(func(t *entity.Ticket) bool { return t.StudentID == studentID })
	sort.SliceStable(details, func(i, j int) bool { return details[i].EventStartsAt.After(details[j].EventStartsAt) })
	return page(details, limit, offset), nil
}

func (r memTicketRepo) CountByStudent(_ context.Context, studentID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.selectDetails(func(t *entity.Ticket) bool { return t.StudentID == studentID }))), nil
}

func (r memTicketRepo) CountSeated(_ context.Context, eventID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, t := range r.s.tickets {
		if t.EventID == eventID && t.SeatID != nil && t.Status != entity.TicketStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r memTicketRepo) LockStudent(context.Context, uuid.UUID) error { return nil }

func (r memTicketRepo) MarkUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok || t.Status != entity.TicketStatusActive || t.CheckInTime != nil {
		return repository.ErrTicketNotActive
	}
	t.Status = entity.TicketStatusUsed
	t.CheckInTime = &at
	return nil
}

func (r memTicketRepo) Cancel(_ context.Context, id uuid.UUID, at time.Time, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok || t.Status != entity.TicketStatusActive {
		return repository.ErrTicketNotActive
	}
	t.Status = entity.TicketStatusCancelled
	t.CancelledAt = &at
	t.CancelReason = &reason
	return nil
}

// ==================== check-ins ====================

type memCheckinRepo struct{ s *memStore }

func (r memCheckinRepo) Create(_ context.Context, checkin *entity.TicketCheckin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *checkin
	r.s.checkins = append(r.s.checkins, &c)
	return nil
}

func (r memCheckinRepo) forEvent(eventID uuid.UUID) []*entity.TicketCheckin {
	out := []*entity.TicketCheckin{}
	for _, c := range r.s.checkins {
		if c.TicketID == nil {
			continue
		}
		if t, ok := r.s.tickets[*c.TicketID]; ok && t.EventID == eventID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func (r memCheckinRepo) FindByEvent(_ context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.TicketCheckin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.forEvent(eventID), limit, offset), nil
}

func (r memCheckinRepo) CountByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.forEvent(eventID))), nil
}

// ==================== reports ====================

type memReportRepo struct{ s *memStore }

func (r memReportRepo) TicketCounts(_ context.Context, eventID uuid.UUID) (map[entity.TicketStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[entity.TicketStatus]int{}
	for _, t := range r.s.tickets {
		if t.EventID == eventID && t.DeletedAt == nil {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (r memReportRepo) FailedCheckins(_ context.Context, eventID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, c := range memCheckinRepo(r).forEvent(eventID) {
		if c.Status == entity.CheckinStatusFailed {
			count++
		}
	}
	return count, nil
}

func (r memReportRepo) CheckinsByHour(_ context.Context, eventID uuid.UUID) ([]entity.HourlyCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byHour := map[time.Time]int{}
	for _, c := range memCheckinRepo(r).forEvent(eventID) {
		if c.Status == entity.CheckinStatusSuccess {
			byHour[c.CheckinTime.Truncate(time.Hour)]++
		}
	}
	out := []entity.HourlyCount{}
	for hour, count := range byHour {
		out = append(out, entity.HourlyCount{Hour: hour, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func (r memReportRepo) SystemSummary(_ context.Context, from, to time.Time, status *entity.EventStatus) (*entity.SystemSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	summary := &entity.SystemSummary{From: from, To: to, EventsByStatus: map[entity.EventStatus]int{}}
	inScope := map[uuid.UUID]bool{}
	for _, e := range r.s.events {
		if e.DeletedAt != nil || e.StartsAt.Before(from) || !e.StartsAt.Before(to) {
			continue
		}
		if status != nil && e.Status != *status {
			continue
		}
		inScope[e.ID] = true
		summary.EventsByStatus[e.Status]++
		summary.TotalEvents++
		summary.TotalSeats += e.TotalSeats
		summary.TotalRegistered += e.RegisteredCount
		summary.TotalCheckedIn += e.CheckedInCount
	}
	attendees := map[uuid.UUID]bool{}
	for _, t := range r.s.tickets {
		if inScope[t.EventID] && t.Status == entity.TicketStatusUsed {
			attendees[t.StudentID] = true
		}
	}
	summary.UniqueAttendees = len(attendees)
	return summary, nil
}

// ==================== speakers ====================

type memSpeakerRepo struct{ s *memStore }

// linked reports whether speakerID is on the event's list. Callers hold mu.
func (s *memStore) linked(eventID, speakerID uuid.UUID) bool {
	for _, l := range s.links[eventID] {
		if l.SpeakerID == speakerID {
			return true
		}
	}
	return false
}

func (r memSpeakerRepo) Create(_ context.Context, speaker *entity.Speaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if speaker.Email != nil && r.emailTaken(*speaker.Email, speaker.ID) {
		return repository.ErrDuplicateEmail
	}
	c := *speaker
	r.s.speakers[speaker.ID] = &c
	return nil
}

func (r memSpeakerRepo) emailTaken(email string, self uuid.UUID) bool {
	for _, sp := range r.s.speakers {
		if sp.ID != self && sp.DeletedAt == nil && sp.Email != nil && strings.EqualFold(*sp.Email, email) {
			return true
		}
	}
	return false
}

func (r memSpeakerRepo) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*entity.Speaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.speakers[id]
	if !ok || (sp.DeletedAt != nil && !includeDeleted) {
		return nil, nil
	}
	c := *sp
	return &c, nil
}

func (r memSpeakerRepo) FindByEmail(_ context.Context, email string) (*entity.Speaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.speakers {
		if sp.DeletedAt == nil && sp.Email != nil && strings.EqualFold(*sp.Email, email) {
			c := *sp
			return &c, nil
		}
	}
	return nil, nil
}

func (r memSpeakerRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Speaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Speaker{}
	for _, id := range ids {
		if sp, ok := r.s.speakers[id]; ok && sp.DeletedAt == nil {
			c := *sp
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memSpeakerRepo) matching(filter repository.SpeakerFilter) []*entity.Speaker {
	out := []*entity.Speaker{}
	needle := strings.ToLower(filter.Search)
	for _, sp := range r.s.speakers {
		if sp.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if needle != "" {
			hay := sp.Name
			for _, v := range []*string{sp.Title, sp.Company, sp.Email} {
				if v != nil {
					hay += " " + *v
				}
			}
			if !strings.Contains(strings.ToLower(hay), needle) {
				continue
			}
		}
		c := *sp
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r memSpeakerRepo) FindAll(_ context.Context, filter repository.SpeakerFilter, limit, offset int) ([]*entity.Speaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matching(filter), limit, offset), nil
}

func (r memSpeakerRepo) Count(_ context.Context, filter repository.SpeakerFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r memSpeakerRepo) Update(_ context.Context, speaker *entity.Speaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.speakers[speaker.ID]
	if !ok || sp.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if speaker.Email != nil && r.emailTaken(*speaker.Email, speaker.ID) {
		return repository.ErrDuplicateEmail
	}
	c := *speaker
	r.s.speakers[speaker.ID] = &c
	return nil
}

func (r memSpeakerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.speakers[id]
	if !ok || sp.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	sp.DeletedAt = &now
	return nil
}

func (r memSpeakerRepo) ReplaceForEvent(_ context.Context, eventID uuid.UUID, links []*entity.EventSpeaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.EventSpeaker, len(links))
	for i, l := range links {
		out[i] = *l
		out[i].EventID = eventID
		out[i].Speaker = nil
	}
	r.s.links[eventID] = out
	return nil
}

func (r memSpeakerRepo) FindByEvent(_ context.Context, eventID uuid.UUID) ([]*entity.EventSpeaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.EventSpeaker{}
	for _, l := range r.s.links[eventID] {
		sp, ok := r.s.speakers[l.SpeakerID]
		if !ok || sp.DeletedAt != nil {
			continue
		}
		link := l
		c := *sp
		link.Speaker = &c
		out = append(out, &link)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}
