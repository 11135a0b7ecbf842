package message

import "time"

// Routing keys on the domain exchange.
const (
	TicketRegistered = "ticket.registered"
	TicketCancelled  = "ticket.cancelled"
	TicketCheckedIn  = "ticket.checked_in"
	EventCancelled   = "event.cancelled"
	EventPublished   = "event.published"
)

type TicketMessage struct {
	TicketID   string    `json:"ticket_id"`
	TicketCode string    `json:"ticket_code"`
	EventID    string    `json:"event_id"`
	StudentID  string    `json:"student_id"`
	SeatNumber *string   `json:"seat_number,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventMessage struct {
	EventID         string    `json:"event_id"`
	Title           string    `json:"title"`
	StartsAt        time.Time `json:"starts_at"`
	RegisteredCount int       `json:"registered_count"`
	OccurredAt      time.Time `json:"occurred_at"`
}
