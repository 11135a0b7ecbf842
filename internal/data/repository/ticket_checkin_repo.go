package repository

import (
	"context"
	"fmt"

	"event-registration/internal/data/entity"
	"event-registration/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckinRepository only appends and reads; check-in entries are never changed.
type CheckinRepository interface {
	Create(ctx context.Context, checkin *entity.TicketCheckin) error
	FindByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.TicketCheckin, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type checkinRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCheckinRepository(db database.PgxIface, log *zap.Logger) CheckinRepository {
	return &checkinRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket_checkin")),
	}
}

func (r *checkinRepository) Create(ctx context.Context, checkin *entity.TicketCheckin) error {
	query := `
		INSERT INTO ticket_checkins (id, ticket_id, ticket_code, staff_id, checkin_time, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		checkin.ID,
		checkin.TicketID,
		checkin.TicketCode,
		checkin.StaffID,
		checkin.CheckinTime,
		checkin.Status,
		checkin.Notes,
		checkin.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to append check-in log",
			zap.Error(err),
			zap.String("status", string(checkin.Status)),
		)
		return fmt.Errorf("failed to append check-in log: %w", err)
	}

	return nil
}

// eventCheckins matches logs through the ticket, so attempts with unknown codes are left out.
const eventCheckins = `
	FROM ticket_checkins c
	JOIN tickets t ON t.id = c.ticket_id
	WHERE t.event_id = $1`

func (r *checkinRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.TicketCheckin, error) {
	query := `
		SELECT c.id, c.ticket_id, c.ticket_code, c.staff_id, c.checkin_time, c.status, c.notes, c.created_at` +
		eventCheckins + `
		ORDER BY c.checkin_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list check-ins",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	checkins := []*entity.TicketCheckin{}
	for rows.Next() {
		var c entity.TicketCheckin
		err := rows.Scan(
			&c.ID,
			&c.TicketID,
			&c.TicketCode,
			&c.StaffID,
			&c.CheckinTime,
			&c.Status,
			&c.Notes,
			&c.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan check-in row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkins = append(checkins, &c)
	}

	return checkins, rows.Err()
}

func (r *checkinRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*)`+eventCheckins, eventID).Scan(&total); err != nil {
		r.log.Error("Failed to count check-ins",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}

	return total, nil
}
