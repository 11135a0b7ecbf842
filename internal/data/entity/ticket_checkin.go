package entity

import (
	"time"

	"github.com/google/uuid"
)

type CheckinStatus string

const (
	CheckinStatusSuccess CheckinStatus = "success"
	CheckinStatusFailed  CheckinStatus = "failed"
)

// TicketCheckin is one append-only audit entry. TicketID is nil when the code matched no ticket.
type TicketCheckin struct {
	BaseSimple
	TicketID    *uuid.UUID    `db:"ticket_id"`
	TicketCode  string        `db:"ticket_code"`
	StaffID     uuid.UUID     `db:"staff_id"`
	CheckinTime time.Time     `db:"checkin_time"`
	Status      CheckinStatus `db:"status"`
	Notes       string        `db:"notes"`
}
