package repository

import (
	"event-registration/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tx      database.Transactor
	Hall    HallRepository
	Event   EventRepository
	Seat    SeatRepository
	Ticket  TicketRepository
	Checkin CheckinRepository
	Report  ReportRepository
	Speaker SpeakerRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:      database.NewTransactor(db),
		Hall:    NewHallRepository(db, log),
		Event:   NewEventRepository(db, log),
		Seat:    NewSeatRepository(db, log),
		Ticket:  NewTicketRepository(db, log),
		Checkin: NewCheckinRepository(db, log),
		Report:  NewReportRepository(db, log),
		Speaker: NewSpeakerRepository(db, log),
	}
}
