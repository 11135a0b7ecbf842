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

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Event, error)
	FindAll(ctx context.Context, filter EventFilter, limit, offset int) ([]*entity.Event, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindInHall returns live, non-cancelled, non-rejected events of a hall overlapping [from, to).
	FindInHall(ctx context.Context, hallID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Event, error)
	CountOpenByHall(ctx context.Context, hallID uuid.UUID) (int, error)
	// FindOverlappingForStudent returns live, non-cancelled events where the student holds an
	// active ticket and whose time range overlaps [start, end).
	FindOverlappingForStudent(ctx context.Context, studentID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]*entity.Event, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, from []entity.EventStatus, to entity.EventStatus, reason *string) error
	CancelIfUnderHalf(ctx context.Context, id uuid.UUID, from []entity.EventStatus) error
	IncrementRegistered(ctx context.Context, id uuid.UUID) error
	DecrementRegistered(ctx context.Context, id uuid.UUID) error
	IncrementCheckedIn(ctx context.Context, id uuid.UUID) error
	SweepStatuses(ctx context.Context, now time.Time) (int64, error)
}

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

const eventColumns = `id, title, description, image_url, starts_at, ends_at, hall_id, organizer_id,
	total_seats, number_of_rows, seats_per_row, registered_count, checked_in_count, status,
	registration_start, registration_end, max_tickets_per_user, rejection_reason, location, tags,
	created_at, updated_at, deleted_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.ImageURL,
		&event.StartsAt,
		&event.EndsAt,
		&event.HallID,
		&event.OrganizerID,
		&event.TotalSeats,
		&event.NumberOfRows,
		&event.SeatsPerRow,
		&event.RegisteredCount,
		&event.CheckedInCount,
		&event.Status,
		&event.RegistrationStart,
		&event.RegistrationEnd,
		&event.MaxTicketsPerUser,
		&event.RejectionReason,
		&event.Location,
		&event.Tags,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) collect(rows pgx.Rows) ([]*entity.Event, error) {
	defer rows.Close()

	events := []*entity.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, title, description, image_url, starts_at, ends_at, hall_id, organizer_id,
			total_seats, number_of_rows, seats_per_row, registered_count, checked_in_count, status,
			registration_start, registration_end, max_tickets_per_user, location, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 0, $12, $13, $14, $15, $16, COALESCE($17::text[], '{}'), $18, $19)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.ImageURL,
		event.StartsAt,
		event.EndsAt,
		event.HallID,
		event.OrganizerID,
		event.TotalSeats,
		event.NumberOfRows,
		event.SeatsPerRow,
		event.Status,
		event.RegistrationStart,
		event.RegistrationEnd,
		event.MaxTicketsPerUser,
		event.Location,
		event.Tags,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("title", event.Title),
		)
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	event, err := scanEvent(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return event, nil
}

func eventWhere(filter EventFilter) *whereBuilder {
	b := &whereBuilder{}
	if !filter.IncludeDeleted {
		b.add("deleted_at IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b.add("(title ILIKE ? OR description ILIKE ? OR location ILIKE ?)", pattern, pattern, pattern)
	}
	if filter.Tag != "" {
		b.add("? = ANY(tags)", filter.Tag)
	}
	if filter.SpeakerID != nil {
		b.add("id IN (SELECT event_id FROM event_speakers WHERE speaker_id = ?)", *filter.SpeakerID)
	}
	if filter.HallID != nil {
		b.add("hall_id = ?", *filter.HallID)
	}
	if filter.OrganizerID != nil {
		b.add("organizer_id = ?", *filter.OrganizerID)
	}
	if filter.From != nil {
		b.add("starts_at >= ?", *filter.From)
	}
	if filter.To != nil {
		b.add("starts_at < ?", *filter.To)
	}

	if filter.Status != nil || len(filter.VisibleStatuses) > 0 {
		observed := observedStatusSQL(b.arg(filter.Now))
		if filter.Status != nil {
			b.add(observed+" = ?", string(*filter.Status))
		}
		if len(filter.VisibleStatuses) > 0 {
			visible := observed + " = ANY(" + b.arg(statusStrings(filter.VisibleStatuses)) + ")"
			if filter.VisibleOwner != nil {
				visible = "(" + visible + " OR organizer_id = " + b.arg(*filter.VisibleOwner) + ")"
			}
			b.add(visible)
		}
	}
	return b
}

func (r *eventRepository) FindAll(ctx context.Context, filter EventFilter, limit, offset int) ([]*entity.Event, error) {
	b := eventWhere(filter)
	query := `SELECT ` + eventColumns + ` FROM events` + b.sql() +
		` ORDER BY starts_at ASC LIMIT ` + b.arg(limit) + ` OFFSET ` + b.arg(offset)

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, b.args...)
	if err != nil {
		r.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return r.collect(rows)
}

func (r *eventRepository) Count(ctx context.Context, filter EventFilter) (int64, error) {
	b := eventWhere(filter)

	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM events`+b.sql(), b.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return total, nil
}

// Update writes the editable fields. The registered_count guard keeps a concurrent
// registration from leaving the event oversold.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, image_url = $4, starts_at = $5, ends_at = $6, hall_id = $7,
			total_seats = $8, number_of_rows = $9, seats_per_row = $10,
			registration_start = $11, registration_end = $12, max_tickets_per_user = $13,
			location = $14, tags = COALESCE($15::text[], '{}'), updated_at = $16
		WHERE id = $1 AND deleted_at IS NULL AND registered_count <= $8
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.ImageURL,
		event.StartsAt,
		event.EndsAt,
		event.HallID,
		event.TotalSeats,
		event.NumberOfRows,
		event.SeatsPerRow,
		event.RegistrationStart,
		event.RegistrationEnd,
		event.MaxTicketsPerUser,
		event.Location,
		event.Tags,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBelowRegistered
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Event soft deleted", zap.String("event_id", id.String()))
	return nil
}

func (r *eventRepository) FindInHall(ctx context.Context, hallID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE hall_id = $1 AND deleted_at IS NULL
			AND status NOT IN ('cancelled', 'rejected')
			AND starts_at < $3 AND ends_at > $2
			AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY starts_at ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, hallID, from, to, excludeID)
	if err != nil {
		r.log.Error("Failed to find events in hall",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return nil, fmt.Errorf("failed to find events in hall: %w", err)
	}

	return r.collect(rows)
}

func (r *eventRepository) CountOpenByHall(ctx context.Context, hallID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM events
		WHERE hall_id = $1 AND deleted_at IS NULL AND status NOT IN ('cancelled', 'completed', 'rejected')
	`

	var count int
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, hallID).Scan(&count); err != nil {
		r.log.Error("Failed to count hall events",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return 0, fmt.Errorf("failed to count hall events: %w", err)
	}

	return count, nil
}

func (r *eventRepository) FindOverlappingForStudent(ctx context.Context, studentID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted_at IS NULL AND id <> $4
			AND status NOT IN ('cancelled', 'rejected')
			AND starts_at < $3 AND ends_at > $2
			AND EXISTS (
				SELECT 1 FROM tickets t
				WHERE t.event_id = events.id AND t.student_id = $1
					AND t.status = 'active' AND t.deleted_at IS NULL
			)
		ORDER BY starts_at ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, studentID, start, end, excludeID)
	if err != nil {
		r.log.Error("Failed to find overlapping events for student",
			zap.Error(err),
			zap.String("student_id", studentID.String()),
		)
		return nil, fmt.Errorf("failed to find overlapping events: %w", err)
	}

	return r.collect(rows)
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []entity.EventStatus, to entity.EventStatus, reason *string) error {
	query := `
		UPDATE events
		SET status = $3, rejection_reason = COALESCE($4, rejection_reason), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND status = ANY($2)
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, statusStrings(from), to, reason)
	if err != nil {
		r.log.Error("Failed to update event status",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("failed to update event status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrStatusChanged
	}

	return nil
}

// CancelIfUnderHalf cancels only while at most half of the seats are taken (integer division).
func (r *eventRepository) CancelIfUnderHalf(ctx context.Context, id uuid.UUID, from []entity.EventStatus) error {
	query := `
		UPDATE events
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND status = ANY($2)
			AND (total_seats = 0 OR registered_count <= total_seats / 2)
		RETURNING id
	`

	var cancelled uuid.UUID
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id, statusStrings(from)).Scan(&cancelled)
	if errors.Is(err, pgx.ErrNoRows) {
		current, findErr := r.FindByID(ctx, id, false)
		if findErr != nil {
			return findErr
		}
		if current == nil {
			return ErrNotFound
		}
		if current.TotalSeats > 0 && current.RegisteredCount > current.TotalSeats/2 {
			return ErrTooManyRegistrations
		}
		return ErrStatusChanged
	}
	if err != nil {
		r.log.Error("Failed to cancel event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to cancel event: %w", err)
	}

	return nil
}

// IncrementRegistered is the capacity gate: it only succeeds while seats remain.
func (r *eventRepository) IncrementRegistered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE events
		SET registered_count = registered_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND registered_count < total_seats
			AND status NOT IN ('cancelled', 'completed', 'rejected')
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment registered count",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to increment registered count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEventFull
	}

	return nil
}

func (r *eventRepository) DecrementRegistered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE events
		SET registered_count = GREATEST(registered_count - 1, 0), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to decrement registered count",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to decrement registered count: %w", err)
	}

	return nil
}

func (r *eventRepository) IncrementCheckedIn(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET checked_in_count = checked_in_count + 1, updated_at = NOW() WHERE id = $1`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to increment checked-in count",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("failed to increment checked-in count: %w", err)
	}

	return nil
}

// SweepStatuses persists the observed status of every live event whose stored status lags behind.
func (r *eventRepository) SweepStatuses(ctx context.Context, now time.Time) (int64, error) {
	observed := observedStatusSQL("$1")
	query := `
		UPDATE events
		SET status = ` + observed + `, updated_at = NOW()
		WHERE deleted_at IS NULL AND status <> ` + observed

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to sweep event statuses", zap.Error(err))
		return 0, fmt.Errorf("failed to sweep event statuses: %w", err)
	}

	return result.RowsAffected(), nil
}
