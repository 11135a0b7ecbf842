package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusOccupied  SeatStatus = "occupied"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusOccupied:
		return true
	}
	return false
}

// CanTransitionTo is the single source of truth for seat state changes.
func (s SeatStatus) CanTransitionTo(next SeatStatus) bool {
	switch s {
	case SeatStatusAvailable:
		return next == SeatStatusReserved
	case SeatStatusReserved:
		return next == SeatStatusOccupied || next == SeatStatusAvailable
	}
	return false
}

// Seat is either a hall template (EventID nil) or a bookable seat of one event.
type Seat struct {
	Base
	HallID     uuid.UUID  `db:"hall_id"`
	EventID    *uuid.UUID `db:"event_id"`
	RowLabel   string     `db:"row_label"`   // A, B, ..., Z, AA
	SeatColumn int        `db:"seat_column"` // 1-based
	SeatNumber string     `db:"seat_number"` // A1, A2, B1, ...
	Section    string     `db:"section"`
	Status     SeatStatus `db:"status"`
}

// RowLabel converts a 1-based row index to spreadsheet-style letters: 1->A, 26->Z, 27->AA.
func RowLabel(row int) string {
	label := ""
	for row > 0 {
		row--
		label = string(rune('A'+row%26)) + label
		row /= 26
	}
	return label
}

// SeatGrid describes a rows x cols block of seats to materialize.
type SeatGrid struct {
	HallID  uuid.UUID
	EventID *uuid.UUID
	Rows    int
	Cols    int
	Prefix  string
	Section string
}

// Build lays out the grid row by row, every seat available.
func (g SeatGrid) Build(at time.Time) []*Seat {
	seats := make([]*Seat, 0, g.Rows*g.Cols)
	for r := 1; r <= g.Rows; r++ {
		label := RowLabel(r)
		for c := 1; c <= g.Cols; c++ {
			seats = append(seats, &Seat{
				Base:       Base{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
				HallID:     g.HallID,
				EventID:    g.EventID,
				RowLabel:   label,
				SeatColumn: c,
				SeatNumber: fmt.Sprintf("%s%s%d", g.Prefix, label, c),
				Section:    g.Section,
				Status:     SeatStatusAvailable,
			})
		}
	}
	return seats
}
