package usecase

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/internal/dto/message"
	"event-registration/internal/dto/request"

	"github.com/google/uuid"
)

func TestRegister(t *testing.T) {
	t.Run("claims the first free seat and publishes", func(t *testing.T) {
		f := newFixture(t)
		hall := f.seedHall(t, 100, 10, 10)
		event := f.seedEvent(t, eventSeed{hall: hall, start: fixtureNow.Add(72 * time.Hour), rows: 2, cols: 2})
		s := student()

		ticket, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ticket.Status != entity.TicketStatusActive {
			t.Fatalf("expected active ticket, got %s", ticket.Status)
		}
		if ticket.SeatNumber == nil || *ticket.SeatNumber != "A1" {
			t.Fatalf("expected seat A1, got %v", ticket.SeatNumber)
		}
		if len(ticket.TicketCode) != 32 || ticket.QRCode != ticket.TicketCode {
			t.Fatalf("expected 32-char code mirrored as qr_code, got %q / %q", ticket.TicketCode, ticket.QRCode)
		}
		if got := f.event(t, event.ID).RegisteredCount; got != 1 {
			t.Fatalf("expected registered_count 1, got %d", got)
		}
		if got := f.seat(t, uuid.MustParse(*ticket.SeatID)).Status; got != entity.SeatStatusReserved {
			t.Fatalf("expected seat reserved, got %s", got)
		}
		keys := f.pub.keys()
		if len(keys) != 1 || keys[0] != message.TicketRegistered {
			t.Fatalf("expected ticket.registered message, got %v", keys)
		}
	})

	t.Run("full event", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 2})

		for i := 0; i < 2; i++ {
			if _, err := f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{}); err != nil {
				t.Fatalf("registration %d: %v", i+1, err)
			}
		}

		_, err := f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindConflict)
		if !strings.Contains(err.Error(), "full") {
			t.Fatalf("expected full message, got %q", err.Error())
		}
		if got := f.event(t, event.ID).RegisteredCount; got != 2 {
			t.Fatalf("expected registered_count to stay 2, got %d", got)
		}
	})

	t.Run("duplicate registration", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10})
		s := student()

		if _, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("first registration: %v", err)
		}
		_, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindConflict)
		if got := f.event(t, event.ID).RegisteredCount; got != 1 {
			t.Fatalf("expected counter rolled back to 1, got %d", got)
		}
	})

	t.Run("overlapping events", func(t *testing.T) {
		f := newFixture(t)
		start := fixtureNow.Add(72 * time.Hour)
		first := f.seedEvent(t, eventSeed{start: start, duration: 2 * time.Hour, total: 10})
		overlapping := f.seedEvent(t, eventSeed{start: start.Add(time.Hour), duration: 2 * time.Hour, total: 10})
		adjacent := f.seedEvent(t, eventSeed{start: start.Add(2 * time.Hour), duration: time.Hour, total: 10})
		s := student()

		if _, err := f.svc.Ticket.Register(ctx, s, first.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("first registration: %v", err)
		}

		_, err := f.svc.Ticket.Register(ctx, s, overlapping.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindConflict)
		if !strings.Contains(err.Error(), first.Title) {
			t.Fatalf("expected message naming %q, got %q", first.Title, err.Error())
		}
		if got := f.event(t, overlapping.ID).RegisteredCount; got != 0 {
			t.Fatalf("expected counter rolled back, got %d", got)
		}

		if _, err := f.svc.Ticket.Register(ctx, s, adjacent.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("expected back-to-back event to be allowed, got %v", err)
		}
	})

	t.Run("cancelled event frees the time slot", func(t *testing.T) {
		f := newFixture(t)
		start := fixtureNow.Add(72 * time.Hour)
		first := f.seedEvent(t, eventSeed{start: start, duration: 2 * time.Hour, total: 10})
		overlapping := f.seedEvent(t, eventSeed{start: start.Add(time.Hour), duration: 2 * time.Hour, total: 10})
		s := student()

		if _, err := f.svc.Ticket.Register(ctx, s, first.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("first registration: %v", err)
		}
		if _, err := f.svc.Event.CancelEvent(ctx, admin(), first.ID.String()); err != nil {
			t.Fatalf("cancel event: %v", err)
		}

		if _, err := f.svc.Ticket.Register(ctx, s, overlapping.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("expected cancelled event not to block registration, got %v", err)
		}
	})

	t.Run("specific seat taken", func(t *testing.T) {
		f := newFixture(t)
		hall := f.seedHall(t, 100, 10, 10)
		event := f.seedEvent(t, eventSeed{hall: hall, start: fixtureNow.Add(72 * time.Hour), rows: 1, cols: 2})
		seats, _ := f.store.repository().Seat.FindByEvent(ctx, event.ID, nil)
		seatID := seats[1].ID.String()

		ticket, err := f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{SeatID: &seatID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if *ticket.SeatNumber != "A2" {
			t.Fatalf("expected A2, got %s", *ticket.SeatNumber)
		}

		_, err = f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{SeatID: &seatID})
		expectKind(t, err, KindConflict)
	})

	t.Run("refusals before the transaction", func(t *testing.T) {
		f := newFixture(t)
		draft := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10, status: entity.EventStatusDraft})
		closed := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10, regEnd: timePtr(fixtureNow.Add(-time.Minute))})
		unseated := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10})
		seatID := uuid.NewString()

		_, err := f.svc.Ticket.Register(ctx, staff(), unseated.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindForbidden)

		_, err = f.svc.Ticket.Register(ctx, student(), draft.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindNotFound)

		_, err = f.svc.Ticket.Register(ctx, student(), closed.ID.String(), &request.RegisterRequest{})
		expectKind(t, err, KindInvalidState)

		_, err = f.svc.Ticket.Register(ctx, student(), unseated.ID.String(), &request.RegisterRequest{SeatID: &seatID})
		expectKind(t, err, KindValidation)
	})
}

func TestRegister_ConcurrentSameSeat(t *testing.T) {
	f := newFixture(t)
	hall := f.seedHall(t, 100, 10, 10)
	event := f.seedEvent(t, eventSeed{hall: hall, start: fixtureNow.Add(72 * time.Hour), rows: 2, cols: 2})
	seats, _ := f.store.repository().Seat.FindByEvent(ctx, event.ID, nil)
	seatID := seats[0].ID.String()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{SeatID: &seatID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case KindOf(err) == KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}
	if got := f.event(t, event.ID).RegisteredCount; got != 1 {
		t.Fatalf("expected registered_count 1, got %d", got)
	}
}

func TestCancelTicket(t *testing.T) {
	t.Run("round trip frees the seat and the counter", func(t *testing.T) {
		f := newFixture(t)
		hall := f.seedHall(t, 100, 10, 10)
		event := f.seedEvent(t, eventSeed{hall: hall, start: fixtureNow.Add(72 * time.Hour), rows: 1, cols: 1})
		s := student()

		ticket, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{})
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		cancelled, err := f.svc.Ticket.CancelTicket(ctx, s, ticket.ID, &request.CancelTicketRequest{})
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if cancelled.Status != entity.TicketStatusCancelled || *cancelled.CancelReason != "Cancelled by student" {
			t.Fatalf("expected cancelled by student, got %s %v", cancelled.Status, cancelled.CancelReason)
		}
		if got := f.event(t, event.ID).RegisteredCount; got != 0 {
			t.Fatalf("expected registered_count 0, got %d", got)
		}
		if got := f.seat(t, uuid.MustParse(*ticket.SeatID)).Status; got != entity.SeatStatusAvailable {
			t.Fatalf("expected seat available again, got %s", got)
		}

		if _, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{}); err != nil {
			t.Fatalf("expected re-registration after cancel, got %v", err)
		}

		_, err = f.svc.Ticket.CancelTicket(ctx, s, ticket.ID, &request.CancelTicketRequest{})
		expectKind(t, err, KindInvalidState)

		keys := f.pub.keys()
		want := []string{message.TicketRegistered, message.TicketCancelled, message.TicketRegistered}
		if strings.Join(keys, ",") != strings.Join(want, ",") {
			t.Fatalf("expected messages %v, got %v", want, keys)
		}
	})

	t.Run("students need a day of notice", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, eventSeed{start: fixtureNow.Add(30 * time.Hour), total: 10})
		s := student()

		ticket, err := f.svc.Ticket.Register(ctx, s, event.ID.String(), &request.RegisterRequest{})
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		f.clock.Set(fixtureNow.Add(7 * time.Hour))
		_, err = f.svc.Ticket.CancelTicket(ctx, s, ticket.ID, &request.CancelTicketRequest{})
		expectKind(t, err, KindInvalidState)

		byOrganizer, err := f.svc.Ticket.CancelTicket(ctx, organizer(), ticket.ID, &request.CancelTicketRequest{})
		if err != nil {
			t.Fatalf("expected organizer override, got %v", err)
		}
		if *byOrganizer.CancelReason != "Cancelled by organizer" {
			t.Fatalf("expected organizer reason, got %q", *byOrganizer.CancelReason)
		}
	})

	t.Run("other students are forbidden", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10})
		ticket, err := f.svc.Ticket.Register(ctx, student(), event.ID.String(), &request.RegisterRequest{})
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		_, err = f.svc.Ticket.CancelTicket(ctx, student(), ticket.ID, &request.CancelTicketRequest{})
		expectKind(t, err, KindForbidden)
	})
}

func TestTicketReads(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, eventSeed{start: fixtureNow.Add(72 * time.Hour), total: 10})
	owner := student()
	ticket, err := f.svc.Ticket.Register(ctx, owner, event.ID.String(), &request.RegisterRequest{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := f.svc.Ticket.GetTicketByCode(ctx, owner, "  "+strings.ToUpper(ticket.TicketCode)+" ")
	if err != nil {
		t.Fatalf("expected owner to read by code, got %v", err)
	}
	if got.ID != ticket.ID || got.EventTitle != event.Title {
		t.Fatalf("expected ticket joined with event, got %+v", got)
	}

	_, err = f.svc.Ticket.GetTicketByCode(ctx, student(), ticket.TicketCode)
	expectKind(t, err, KindForbidden)

	png, err := f.svc.Ticket.GetTicketQR(ctx, staff(), ticket.TicketCode)
	if err != nil {
		t.Fatalf("expected staff to render qr, got %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected png bytes")
	}

	mine, err := f.svc.Ticket.GetMyTickets(ctx, owner, &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("get my tickets: %v", err)
	}
	if mine.Pagination.Total != 1 {
		t.Fatalf("expected 1 ticket, got %d", mine.Pagination.Total)
	}

	_, err = f.svc.Ticket.GetEventTickets(ctx, owner, event.ID.String(), &request.TicketListRequest{})
	expectKind(t, err, KindForbidden)

	list, err := f.svc.Ticket.GetEventTickets(ctx, staff(), event.ID.String(), &request.TicketListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		Status:           "active",
	})
	if err != nil {
		t.Fatalf("get event tickets: %v", err)
	}
	if list.Pagination.Total != 1 {
		t.Fatalf("expected 1 active ticket, got %d", list.Pagination.Total)
	}
}
