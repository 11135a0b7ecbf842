package response

import (
	"time"

	"event-registration/internal/data/entity"
)

type TicketResponse struct {
	ID            string              `json:"id"`
	EventID       string              `json:"event_id"`
	EventTitle    string              `json:"event_title,omitempty"`
	EventStartsAt *time.Time          `json:"event_starts_at,omitempty"`
	EventEndsAt   *time.Time          `json:"event_ends_at,omitempty"`
	StudentID     string              `json:"student_id"`
	SeatID        *string             `json:"seat_id,omitempty"`
	SeatNumber    *string             `json:"seat_number,omitempty"`
	TicketCode    string              `json:"ticket_code"`
	QRCode        string              `json:"qr_code"`
	Status        entity.TicketStatus `json:"status"`
	RegisteredAt  time.Time           `json:"registered_at"`
	CheckInTime   *time.Time          `json:"check_in_time,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason  *string             `json:"cancel_reason,omitempty"`
}

// CheckinResponse is returned to the door scanner.
type CheckinResponse struct {
	Result string         `json:"result"`
	Ticket TicketResponse `json:"ticket"`
}

type CheckinLogResponse struct {
	ID          string               `json:"id"`
	TicketID    *string              `json:"ticket_id,omitempty"`
	TicketCode  string               `json:"ticket_code"`
	StaffID     string               `json:"staff_id"`
	CheckinTime time.Time            `json:"checkin_time"`
	Status      entity.CheckinStatus `json:"status"`
	Notes       string               `json:"notes,omitempty"`
}

func TicketToResponse(ticket *entity.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:           ticket.ID.String(),
		EventID:      ticket.EventID.String(),
		StudentID:    ticket.StudentID.String(),
		TicketCode:   ticket.TicketCode,
		QRCode:       ticket.TicketCode,
		Status:       ticket.Status,
		RegisteredAt: ticket.RegisteredAt,
		CheckInTime:  ticket.CheckInTime,
		CancelledAt:  ticket.CancelledAt,
		CancelReason: ticket.CancelReason,
	}
	if ticket.SeatID != nil {
		seatID := ticket.SeatID.String()
		resp.SeatID = &seatID
	}
	return resp
}

func TicketDetailToResponse(detail *entity.TicketDetail) TicketResponse {
	resp := TicketToResponse(&detail.Ticket)
	resp.EventTitle = detail.EventTitle
	resp.EventStartsAt = &detail.EventStartsAt
	resp.EventEndsAt = &detail.EventEndsAt
	resp.SeatNumber = detail.SeatNumber
	return resp
}

func TicketDetailsToResponse(details []*entity.TicketDetail) []TicketResponse {
	out := make([]TicketResponse, len(details))
	for i, d := range details {
		out[i] = TicketDetailToResponse(d)
	}
	return out
}

func CheckinToResponse(c *entity.TicketCheckin) CheckinLogResponse {
	resp := CheckinLogResponse{
		ID:          c.ID.String(),
		TicketCode:  c.TicketCode,
		StaffID:     c.StaffID.String(),
		CheckinTime: c.CheckinTime,
		Status:      c.Status,
		Notes:       c.Notes,
	}
	if c.TicketID != nil {
		ticketID := c.TicketID.String()
		resp.TicketID = &ticketID
	}
	return resp
}
