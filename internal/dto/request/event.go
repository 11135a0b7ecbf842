package request

import "time"

type CreateEventRequest struct {
	Title             string     `json:"title" validate:"required,min=3,max=200"`
	Description       string     `json:"description" validate:"max=5000"`
	ImageURL          *string    `json:"image_url" validate:"omitempty,url"`
	Date              string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime         string     `json:"start_time" validate:"required,datetime=15:04"`
	EndTime           string     `json:"end_time" validate:"required,datetime=15:04"`
	HallID            *string    `json:"hall_id" validate:"omitempty,uuid"`
	TotalSeats        *int       `json:"total_seats" validate:"omitempty,min=1,max=10000"`
	NumberOfRows      *int       `json:"number_of_rows" validate:"omitempty,min=1,max=100"`
	SeatsPerRow       *int       `json:"seats_per_row" validate:"omitempty,min=1,max=100"`
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	MaxTicketsPerUser *int       `json:"max_tickets_per_user" validate:"omitempty,min=1,max=10"`
	Location          *string    `json:"location" validate:"omitempty,max=500"`
	Tags              []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	SpeakerIDs        []string   `json:"speaker_ids" validate:"omitempty,max=20,dive,uuid"`
}

// UpdateEventRequest only changes the fields that are sent.
// An empty tags or speaker_ids array clears the list.
type UpdateEventRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=5000"`
	ImageURL          *string    `json:"image_url" validate:"omitempty,url"`
	Date              *string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime         *string    `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime           *string    `json:"end_time" validate:"omitempty,datetime=15:04"`
	HallID            *string    `json:"hall_id" validate:"omitempty,uuid"`
	TotalSeats        *int       `json:"total_seats" validate:"omitempty,min=1,max=10000"`
	NumberOfRows      *int       `json:"number_of_rows" validate:"omitempty,min=1,max=100"`
	SeatsPerRow       *int       `json:"seats_per_row" validate:"omitempty,min=1,max=100"`
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	MaxTicketsPerUser *int       `json:"max_tickets_per_user" validate:"omitempty,min=1,max=10"`
	Location          *string    `json:"location" validate:"omitempty,max=500"`
	Tags              []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	SpeakerIDs        []string   `json:"speaker_ids" validate:"omitempty,max=20,dive,uuid"`
}

type EventListRequest struct {
	PaginatedRequest
	Search      string `validate:"max=100"`
	Status      string `validate:"omitempty,oneof=draft pending published completed cancelled rejected"`
	HallID      string `validate:"omitempty,uuid"`
	OrganizerID string `validate:"omitempty,uuid"`
	DateFrom    string `validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `validate:"omitempty,datetime=2006-01-02"`
	Tag         string `validate:"max=50"`
}

type RejectEventRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
