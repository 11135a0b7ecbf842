package request

type CreateHallRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=200"`
	Address        string `json:"address" validate:"max=500"`
	Capacity       int    `json:"capacity" validate:"required,min=1,max=10000"`
	MaxRows        int    `json:"max_rows" validate:"omitempty,min=1,max=100"`
	MaxSeatsPerRow int    `json:"max_seats_per_row" validate:"omitempty,min=1,max=100"`
}

type UpdateHallRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=200"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	Capacity       *int    `json:"capacity" validate:"omitempty,min=1,max=10000"`
	MaxRows        *int    `json:"max_rows" validate:"omitempty,min=1,max=100"`
	MaxSeatsPerRow *int    `json:"max_seats_per_row" validate:"omitempty,min=1,max=100"`
	Status         *string `json:"status" validate:"omitempty,oneof=active maintenance closed"`
}

type HallListRequest struct {
	PaginatedRequest
	Search      string `validate:"max=100"`
	Status      string `validate:"omitempty,oneof=active maintenance closed"`
	MinCapacity *int   `validate:"omitempty,min=0"`
	MaxCapacity *int   `validate:"omitempty,min=0"`
}

type GenerateSeatsRequest struct {
	Rows        int    `json:"rows" validate:"required,min=1,max=100"`
	SeatsPerRow int    `json:"seats_per_row" validate:"required,min=1,max=100"`
	Prefix      string `json:"prefix" validate:"max=5"`
	SeatType    string `json:"seat_type" validate:"max=50"`
}

type HallAvailabilityRequest struct {
	Date      string `validate:"required,datetime=2006-01-02"`
	StartTime string `validate:"required,datetime=15:04"`
	EndTime   string `validate:"required,datetime=15:04"`
}
