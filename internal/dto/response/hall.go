package response

import (
	"time"

	"event-registration/internal/data/entity"
)

type HallResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Capacity       int               `json:"capacity"`
	MaxRows        int               `json:"max_rows"`
	MaxSeatsPerRow int               `json:"max_seats_per_row"`
	Status         entity.HallStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
}

type SeatResponse struct {
	ID         string            `json:"id"`
	RowLabel   string            `json:"row_label"`
	SeatColumn int               `json:"seat_column"`
	SeatNumber string            `json:"seat_number"`
	Section    string            `json:"section,omitempty"`
	Status     entity.SeatStatus `json:"status"`
}

type HallAvailabilityResponse struct {
	HallID      string          `json:"hall_id"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      time.Time       `json:"ends_at"`
	IsAvailable bool            `json:"is_available"`
	Conflicts   []EventResponse `json:"conflicts"`
}

func HallToResponse(hall *entity.Hall) HallResponse {
	return HallResponse{
		ID:             hall.ID.String(),
		Name:           hall.Name,
		Address:        hall.Address,
		Capacity:       hall.Capacity,
		MaxRows:        hall.MaxRows,
		MaxSeatsPerRow: hall.MaxSeatsPerRow,
		Status:         hall.Status,
		CreatedAt:      hall.CreatedAt,
		UpdatedAt:      hall.UpdatedAt,
		DeletedAt:      hall.DeletedAt,
	}
}

func SeatToResponse(seat *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:         seat.ID.String(),
		RowLabel:   seat.RowLabel,
		SeatColumn: seat.SeatColumn,
		SeatNumber: seat.SeatNumber,
		Section:    seat.Section,
		Status:     seat.Status,
	}
}

func SeatsToResponse(seats []*entity.Seat) []SeatResponse {
	out := make([]SeatResponse, len(seats))
	for i, seat := range seats {
		out[i] = SeatToResponse(seat)
	}
	return out
}
