package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Ticket, error)
	FindByCode(ctx context.Context, code string) (*entity.TicketDetail, error)
	FindActive(ctx context.Context, eventID, studentID uuid.UUID) (*entity.Ticket, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID, status *entity.TicketStatus, limit, offset int) ([]*entity.TicketDetail, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID, status *entity.TicketStatus) (int64, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*entity.TicketDetail, error)
	CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error)
	// CountSeated counts non-cancelled tickets of an event that hold a seat.
	CountSeated(ctx context.Context, eventID uuid.UUID) (int, error)
	// LockStudent serializes registrations of one student until the surrounding tx ends.
	LockStudent(ctx context.Context, studentID uuid.UUID) error

	// MarkUsed and Cancel only move tickets that are still active.
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Cancel(ctx context.Context, id uuid.UUID, at time.Time, reason string) error
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `t.id, t.event_id, t.student_id, t.seat_id, t.ticket_code, t.status, t.registered_at,
	t.check_in_time, t.cancelled_at, t.cancel_reason, t.created_at, t.updated_at, t.deleted_at`

const ticketDetailSelect = `
	SELECT ` + ticketColumns + `, e.title, e.starts_at, e.ends_at, s.seat_number
	FROM tickets t
	JOIN events e ON e.id = t.event_id
	LEFT JOIN seats s ON s.id = t.seat_id`

func ticketScanTargets(t *entity.Ticket) []any {
	return []any{
		&t.ID,
		&t.EventID,
		&t.StudentID,
		&t.SeatID,
		&t.TicketCode,
		&t.Status,
		&t.RegisteredAt,
		&t.CheckInTime,
		&t.CancelledAt,
		&t.CancelReason,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	}
}

func scanTicketDetail(row pgx.Row) (*entity.TicketDetail, error) {
	var d entity.TicketDetail
	targets := append(ticketScanTargets(&d.Ticket), &d.EventTitle, &d.EventStartsAt, &d.EventEndsAt, &d.SeatNumber)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ticketRepository) collectDetails(rows pgx.Rows) ([]*entity.TicketDetail, error) {
	defer rows.Close()

	tickets := []*entity.TicketDetail{}
	for rows.Next() {
		ticket, err := scanTicketDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, event_id, student_id, seat_id, ticket_code, status, registered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.StudentID,
		ticket.SeatID,
		ticket.TicketCode,
		ticket.Status,
		ticket.RegisteredAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		switch database.ConstraintName(err) {
		case "tickets_active_student_uniq":
			return ErrDuplicateTicket
		case "tickets_seat_holder_uniq":
			return ErrSeatUnavailable
		}
	}
	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("event_id", ticket.EventID.String()),
			zap.String("student_id", ticket.StudentID.String()),
		)
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id = $1`
	if !includeDeleted {
		query += ` AND t.deleted_at IS NULL`
	}

	var ticket entity.Ticket
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(ticketScanTargets(&ticket)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) FindByCode(ctx context.Context, code string) (*entity.TicketDetail, error) {
	query := ticketDetailSelect + ` WHERE t.ticket_code = $1 AND t.deleted_at IS NULL`

	ticket, err := scanTicketDetail(database.Conn(ctx, r.db).QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by code", zap.Error(err))
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindActive(ctx context.Context, eventID, studentID uuid.UUID) (*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + ` FROM tickets t
		WHERE t.event_id = $1 AND t.student_id = $2 AND t.status = 'active' AND t.deleted_at IS NULL
	`

	var ticket entity.Ticket
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, eventID, studentID).Scan(ticketScanTargets(&ticket)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active ticket",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("student_id", studentID.String()),
		)
		return nil, fmt.Errorf("failed to find active ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, status *entity.TicketStatus, limit, offset int) ([]*entity.TicketDetail, error) {
	query := ticketDetailSelect + `
		WHERE t.event_id = $1 AND t.deleted_at IS NULL AND ($2::text IS NULL OR t.status = $2)
		ORDER BY t.registered_at ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find tickets by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to find tickets: %w", err)
	}

	return r.collectDetails(rows)
}

func (r *ticketRepository) CountByEvent(ctx context.Context, eventID uuid.UUID, status *entity.TicketStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND deleted_at IS NULL AND ($2::text IS NULL OR status = $2)`

	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, eventID, status).Scan(&total); err != nil {
		r.log.Error("Failed to count tickets by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	return total, nil
}

func (r *ticketRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*entity.TicketDetail, error) {
	query := ticketDetailSelect + `
		WHERE t.student_id = $1 AND t.deleted_at IS NULL
		ORDER BY e.starts_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, studentID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find tickets by student",
			zap.Error(err),
			zap.String("student_id", studentID.String()),
		)
		return nil, fmt.Errorf("failed to find tickets: %w", err)
	}

	return r.collectDetails(rows)
}

func (r *ticketRepository) CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE student_id = $1 AND deleted_at IS NULL`

	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, studentID).Scan(&total); err != nil {
		r.log.Error("Failed to count tickets by student",
			zap.Error(err),
			zap.String("student_id", studentID.String()),
		)
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	return total, nil
}

func (r *ticketRepository) CountSeated(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND seat_id IS NOT NULL AND status <> 'cancelled'`

	var count int
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count seated tickets",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("failed to count seated tickets: %w", err)
	}

	return count, nil
}

func (r *ticketRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE tickets SET status = 'used', check_in_time = $2, updated_at = $2
		WHERE id = $1 AND status = 'active' AND check_in_time IS NULL AND deleted_at IS NULL
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to mark ticket used",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return fmt.Errorf("failed to mark ticket used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTicketNotActive
	}

	return nil
}

func (r *ticketRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time, reason string) error {
	query := `
		UPDATE tickets SET status = 'cancelled', cancelled_at = $2, cancel_reason = $3, updated_at = $2
		WHERE id = $1 AND status = 'active' AND deleted_at IS NULL
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, at, reason)
	if err != nil {
		r.log.Error("Failed to cancel ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return fmt.Errorf("failed to cancel ticket: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTicketNotActive
	}

	return nil
}

func (r *ticketRepository) LockStudent(ctx context.Context, studentID uuid.UUID) error {
	if err := database.LockKey(ctx, "student:"+studentID.String()); err != nil {
		r.log.Error("Failed to lock student",
			zap.Error(err),
			zap.String("student_id", studentID.String()),
		)
		return fmt.Errorf("failed to lock student: %w", err)
	}

	return nil
}
