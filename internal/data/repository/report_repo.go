package repository

import (
	"context"
	"fmt"
	"time"

	"event-registration/internal/data/entity"
	"event-registration/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportRepository serves read-only aggregates; it never writes.
type ReportRepository interface {
	TicketCounts(ctx context.Context, eventID uuid.UUID) (map[entity.TicketStatus]int, error)
	FailedCheckins(ctx context.Context, eventID uuid.UUID) (int, error)
	CheckinsByHour(ctx context.Context, eventID uuid.UUID) ([]entity.HourlyCount, error)
	SystemSummary(ctx context.Context, from, to time.Time, status *entity.EventStatus) (*entity.SystemSummary, error)
}

type reportRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReportRepository(db database.PgxIface, log *zap.Logger) ReportRepository {
	return &reportRepository{
		db:  db,
		log: log.With(zap.String("repository", "report")),
	}
}

func (r *reportRepository) TicketCounts(ctx context.Context, eventID uuid.UUID) (map[entity.TicketStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM tickets WHERE event_id = $1 AND deleted_at IS NULL GROUP BY status`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to count tickets by status",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.TicketStatus]int)
	for rows.Next() {
		var status entity.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *reportRepository) FailedCheckins(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM ticket_checkins c
		JOIN tickets t ON t.id = c.ticket_id
		WHERE t.event_id = $1 AND c.status = 'failed'
	`

	var count int
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count failed check-ins",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("failed to count failed check-ins: %w", err)
	}

	return count, nil
}

func (r *reportRepository) CheckinsByHour(ctx context.Context, eventID uuid.UUID) ([]entity.HourlyCount, error) {
	query := `
		SELECT date_trunc('hour', c.checkin_time) AS hour, COUNT(*)
		FROM ticket_checkins c
		JOIN tickets t ON t.id = c.ticket_id
		WHERE t.event_id = $1 AND c.status = 'success'
		GROUP BY hour
		ORDER BY hour
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to group check-ins by hour",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to group check-ins: %w", err)
	}
	defer rows.Close()

	slots := []entity.HourlyCount{}
	for rows.Next() {
		var slot entity.HourlyCount
		if err := rows.Scan(&slot.Hour, &slot.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly check-ins: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (r *reportRepository) SystemSummary(ctx context.Context, from, to time.Time, status *entity.EventStatus) (*entity.SystemSummary, error) {
	summary := &entity.SystemSummary{
		From:           from,
		To:             to,
		EventsByStatus: make(map[entity.EventStatus]int),
	}
	conn := database.Conn(ctx, r.db)

	const eventScope = `
		FROM events e
		WHERE e.deleted_at IS NULL AND e.starts_at >= $1 AND e.starts_at < $2
			AND ($3::text IS NULL OR e.status = $3)`

	rows, err := conn.Query(ctx, `SELECT e.status, COUNT(*), COALESCE(SUM(e.total_seats), 0),
			COALESCE(SUM(e.registered_count), 0), COALESCE(SUM(e.checked_in_count), 0)`+eventScope+`
		GROUP BY e.status`, from, to, status)
	if err != nil {
		r.log.Error("Failed to aggregate events", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st                               entity.EventStatus
			count, seats, registered, usedIn int
		)
		if err := rows.Scan(&st, &count, &seats, &registered, &usedIn); err != nil {
			return nil, fmt.Errorf("failed to scan event aggregate: %w", err)
		}
		summary.EventsByStatus[st] = count
		summary.TotalEvents += count
		summary.TotalSeats += seats
		summary.TotalRegistered += registered
		summary.TotalCheckedIn += usedIn
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event aggregates: %w", err)
	}

	err = conn.QueryRow(ctx, `SELECT COUNT(DISTINCT t.student_id)
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.status = 'used' AND e.deleted_at IS NULL AND e.starts_at >= $1 AND e.starts_at < $2
			AND ($3::text IS NULL OR e.status = $3)`, from, to, status).Scan(&summary.UniqueAttendees)
	if err != nil {
		r.log.Error("Failed to count unique attendees", zap.Error(err))
		return nil, fmt.Errorf("failed to count unique attendees: %w", err)
	}

	return summary, nil
}
