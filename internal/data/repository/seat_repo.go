package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"event-registration/internal/data/entity"
	"event-registration/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []*entity.Seat) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Seat, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID, status *entity.SeatStatus) ([]*entity.Seat, error)
	FindTemplates(ctx context.Context, hallID uuid.UUID) ([]*entity.Seat, error)
	CountTemplates(ctx context.Context, hallID uuid.UUID) (int, error)
	DeleteTemplates(ctx context.Context, hallID uuid.UUID) error
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error

	// Claim reserves one specific seat of an event if it is still available.
	Claim(ctx context.Context, eventID, seatID uuid.UUID) (*entity.Seat, error)
	// ClaimFirstAvailable reserves the lowest available seat, skipping rows locked by other claims.
	ClaimFirstAvailable(ctx context.Context, eventID uuid.UUID) (*entity.Seat, error)
	Release(ctx context.Context, seatID uuid.UUID) error
	Occupy(ctx context.Context, seatID uuid.UUID) error
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, hall_id, event_id, row_label, seat_column, seat_number, section, status, created_at, updated_at, deleted_at`

// seatOrder sorts A..Z before AA and columns numerically.
const seatOrder = ` ORDER BY length(row_label), row_label, seat_column`

func scanSeat(row pgx.Row) (*entity.Seat, error) {
	var seat entity.Seat
	err := row.Scan(
		&seat.ID,
		&seat.HallID,
		&seat.EventID,
		&seat.RowLabel,
		&seat.SeatColumn,
		&seat.SeatNumber,
		&seat.Section,
		&seat.Status,
		&seat.CreatedAt,
		&seat.UpdatedAt,
		&seat.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepository) collect(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	seats := []*entity.Seat{}
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// seatBatchSize keeps each INSERT under the 65535 bind parameter limit.
const seatBatchSize = 1000

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	for start := 0; start < len(seats); start += seatBatchSize {
		end := min(start+seatBatchSize, len(seats))
		if err := r.insertBatch(ctx, seats[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *seatRepository) insertBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	const cols = 10
	var sb strings.Builder
	sb.WriteString(`INSERT INTO seats (id, hall_id, event_id, row_label, seat_column, seat_number, section, status, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(seats)*cols)

	for i, seat := range seats {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 1; c <= cols; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+c)
		}
		sb.WriteString(")")

		args = append(args,
			seat.ID,
			seat.HallID,
			seat.EventID,
			seat.RowLabel,
			seat.SeatColumn,
			seat.SeatNumber,
			seat.Section,
			seat.Status,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
	}

	if _, err := database.Conn(ctx, r.db).Exec(ctx, sb.String(), args...); err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("failed to create batch seats: %w", err)
	}

	return nil
}

func (r *seatRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	seat, err := scanSeat(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat by ID",
			zap.Error(err),
			zap.String("seat_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find seat: %w", err)
	}

	return seat, nil
}

func (r *seatRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, status *entity.SeatStatus) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = $1 AND deleted_at IS NULL AND ($2::text IS NULL OR status = $2)` + seatOrder

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID, status)
	if err != nil {
		r.log.Error("Failed to find seats by event",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}

	return r.collect(rows)
}

func (r *seatRepository) FindTemplates(ctx context.Context, hallID uuid.UUID) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE hall_id = $1 AND event_id IS NULL AND deleted_at IS NULL` + seatOrder

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, hallID)
	if err != nil {
		r.log.Error("Failed to find seat templates",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return nil, fmt.Errorf("failed to find seat templates: %w", err)
	}

	return r.collect(rows)
}

func (r *seatRepository) CountTemplates(ctx context.Context, hallID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM seats WHERE hall_id = $1 AND event_id IS NULL AND deleted_at IS NULL`

	var count int
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, hallID).Scan(&count); err != nil {
		r.log.Error("Failed to count seat templates",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return 0, fmt.Errorf("failed to count seat templates: %w", err)
	}

	return count, nil
}

func (r *seatRepository) DeleteTemplates(ctx context.Context, hallID uuid.UUID) error {
	query := `UPDATE seats SET deleted_at = NOW() WHERE hall_id = $1 AND event_id IS NULL AND deleted_at IS NULL`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, hallID); err != nil {
		r.log.Error("Failed to delete seat templates",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return fmt.Errorf("failed to delete seat templates: %w", err)
	}

	return nil
}

func (r *seatRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	query := `UPDATE seats SET deleted_at = NOW() WHERE event_id = $1 AND deleted_at IS NULL`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, eventID); err != nil {
		r.log.Error("Failed to delete event seats",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return fmt.Errorf("failed to delete event seats: %w", err)
	}

	return nil
}

func (r *seatRepository) Claim(ctx context.Context, eventID, seatID uuid.UUID) (*entity.Seat, error) {
	query := `
		UPDATE seats SET status = 'reserved', updated_at = NOW()
		WHERE id = $1 AND event_id = $2 AND status = 'available' AND deleted_at IS NULL
		RETURNING ` + seatColumns

	seat, err := scanSeat(database.Conn(ctx, r.db).QueryRow(ctx, query, seatID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSeatUnavailable
	}
	if err != nil {
		r.log.Error("Failed to claim seat",
			zap.Error(err),
			zap.String("seat_id", seatID.String()),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to claim seat: %w", err)
	}

	return seat, nil
}

func (r *seatRepository) ClaimFirstAvailable(ctx context.Context, eventID uuid.UUID) (*entity.Seat, error) {
	query := `
		UPDATE seats SET status = 'reserved', updated_at = NOW()
		WHERE id = (
			SELECT id FROM seats
			WHERE event_id = $1 AND status = 'available' AND deleted_at IS NULL` + seatOrder + `
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + seatColumns

	seat, err := scanSeat(database.Conn(ctx, r.db).QueryRow(ctx, query, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSeatUnavailable
	}
	if err != nil {
		r.log.Error("Failed to auto-assign seat",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to auto-assign seat: %w", err)
	}

	return seat, nil
}

func (r *seatRepository) Release(ctx context.Context, seatID uuid.UUID) error {
	return r.transition(ctx, seatID, entity.SeatStatusReserved, entity.SeatStatusAvailable)
}

func (r *seatRepository) Occupy(ctx context.Context, seatID uuid.UUID) error {
	return r.transition(ctx, seatID, entity.SeatStatusReserved, entity.SeatStatusOccupied)
}

func (r *seatRepository) transition(ctx context.Context, seatID uuid.UUID, from, to entity.SeatStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("seat transition %s -> %s not allowed", from, to)
	}

	query := `UPDATE seats SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, seatID, from, to)
	if err != nil {
		r.log.Error("Failed to update seat status",
			zap.Error(err),
			zap.String("seat_id", seatID.String()),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("failed to update seat status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSeatUnavailable
	}

	return nil
}
