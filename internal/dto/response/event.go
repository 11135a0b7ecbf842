package response

import (
	"time"

	"event-registration/internal/data/entity"
)

type EventResponse struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	ImageURL          *string                `json:"image_url,omitempty"`
	Date              string                 `json:"date"`
	StartTime         string                 `json:"start_time"`
	EndTime           string                 `json:"end_time"`
	StartsAt          time.Time              `json:"starts_at"`
	EndsAt            time.Time              `json:"ends_at"`
	HallID            *string                `json:"hall_id,omitempty"`
	OrganizerID       string                 `json:"organizer_id"`
	TotalSeats        int                    `json:"total_seats"`
	NumberOfRows      int                    `json:"number_of_rows"`
	SeatsPerRow       int                    `json:"seats_per_row"`
	RegisteredCount   int                    `json:"registered_count"`
	CheckedInCount    int                    `json:"checked_in_count"`
	AvailableSeats    int                    `json:"available_seats"`
	Status            entity.EventStatus     `json:"status"`
	RegistrationStart *time.Time             `json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time             `json:"registration_end,omitempty"`
	MaxTicketsPerUser int                    `json:"max_tickets_per_user"`
	RejectionReason   *string                `json:"rejection_reason,omitempty"`
	Location          string                 `json:"location,omitempty"`
	Tags              []string               `json:"tags"`
	Speakers          []EventSpeakerResponse `json:"speakers,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// EventToResponse reports the status observed at now, rendered in loc.
func EventToResponse(event *entity.Event, now time.Time, loc *time.Location) EventResponse {
	resp := EventResponse{
		ID:                event.ID.String(),
		Title:             event.Title,
		Description:       event.Description,
		ImageURL:          event.ImageURL,
		Date:              event.StartsAt.In(loc).Format("2006-01-02"),
		StartTime:         event.StartsAt.In(loc).Format("15:04"),
		EndTime:           event.EndsAt.In(loc).Format("15:04"),
		StartsAt:          event.StartsAt,
		EndsAt:            event.EndsAt,
		OrganizerID:       event.OrganizerID.String(),
		TotalSeats:        event.TotalSeats,
		NumberOfRows:      event.NumberOfRows,
		SeatsPerRow:       event.SeatsPerRow,
		RegisteredCount:   event.RegisteredCount,
		CheckedInCount:    event.CheckedInCount,
		AvailableSeats:    max(event.TotalSeats-event.RegisteredCount, 0),
		Status:            event.ObservedStatus(now),
		RegistrationStart: event.RegistrationStart,
		RegistrationEnd:   event.RegistrationEnd,
		MaxTicketsPerUser: event.MaxTicketsPerUser,
		RejectionReason:   event.RejectionReason,
		Location:          event.Location,
		Tags:              event.Tags,
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if event.HallID != nil {
		hallID := event.HallID.String()
		resp.HallID = &hallID
	}
	return resp
}

func EventsToResponse(events []*entity.Event, now time.Time, loc *time.Location) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, event := range events {
		out[i] = EventToResponse(event, now, loc)
	}
	return out
}
