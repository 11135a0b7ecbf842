package entity

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusActive, TicketStatusUsed, TicketStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo: active is the only non-terminal ticket status.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return s == TicketStatusActive && (next == TicketStatusUsed || next == TicketStatusCancelled)
}

type Ticket struct {
	Base
	EventID      uuid.UUID    `db:"event_id"`
	StudentID    uuid.UUID    `db:"student_id"`
	SeatID       *uuid.UUID   `db:"seat_id"`
	TicketCode   string       `db:"ticket_code"`
	Status       TicketStatus `db:"status"`
	RegisteredAt time.Time    `db:"registered_at"`
	CheckInTime  *time.Time   `db:"check_in_time"`
	CancelledAt  *time.Time   `db:"cancelled_at"`
	CancelReason *string      `db:"cancel_reason"`
}

// TicketDetail is a ticket joined with the event and seat it refers to.
type TicketDetail struct {
	Ticket
	EventTitle    string    `db:"event_title"`
	EventStartsAt time.Time `db:"event_starts_at"`
	EventEndsAt   time.Time `db:"event_ends_at"`
	SeatNumber    *string   `db:"seat_number"`
}
