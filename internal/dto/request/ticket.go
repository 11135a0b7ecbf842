package request

type RegisterRequest struct {
	SeatID *string `json:"seat_id" validate:"omitempty,uuid"`
}

type CancelTicketRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type TicketListRequest struct {
	PaginatedRequest
	Status string `validate:"omitempty,oneof=active used cancelled"`
}
