package repository

import (
	"context"
	"errors"
	"fmt"

	"event-registration/internal/data/entity"
	"event-registration/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HallRepository interface {
	Create(ctx context.Context, hall *entity.Hall) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Hall, error)
	FindAll(ctx context.Context, filter HallFilter, limit, offset int) ([]*entity.Hall, error)
	Count(ctx context.Context, filter HallFilter) (int64, error)
	Update(ctx context.Context, hall *entity.Hall) error
	Delete(ctx context.Context, id uuid.UUID) error
	// LockSchedule serializes event placement in one hall until the surrounding tx ends.
	LockSchedule(ctx context.Context, id uuid.UUID) error
}

type hallRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHallRepository(db database.PgxIface, log *zap.Logger) HallRepository {
	return &hallRepository{
		db:  db,
		log: log.With(zap.String("repository", "hall")),
	}
}

const hallColumns = `id, name, address, capacity, max_rows, max_seats_per_row, status, created_at, updated_at, deleted_at`

func scanHall(row pgx.Row) (*entity.Hall, error) {
	var hall entity.Hall
	err := row.Scan(
		&hall.ID,
		&hall.Name,
		&hall.Address,
		&hall.Capacity,
		&hall.MaxRows,
		&hall.MaxSeatsPerRow,
		&hall.Status,
		&hall.CreatedAt,
		&hall.UpdatedAt,
		&hall.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hall, nil
}

func (r *hallRepository) Create(ctx context.Context, hall *entity.Hall) error {
	query := `
		INSERT INTO halls (id, name, address, capacity, max_rows, max_seats_per_row, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		hall.ID,
		hall.Name,
		hall.Address,
		hall.Capacity,
		hall.MaxRows,
		hall.MaxSeatsPerRow,
		hall.Status,
		hall.CreatedAt,
		hall.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create hall",
			zap.Error(err),
			zap.String("name", hall.Name),
		)
		return fmt.Errorf("failed to create hall: %w", err)
	}

	return nil
}

func (r *hallRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Hall, error) {
	query := `SELECT ` + hallColumns + ` FROM halls WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	hall, err := scanHall(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hall by ID",
			zap.Error(err),
			zap.String("hall_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find hall: %w", err)
	}

	return hall, nil
}

func hallWhere(filter HallFilter) *whereBuilder {
	b := &whereBuilder{}
	if !filter.IncludeDeleted {
		b.add("deleted_at IS NULL")
	}
	if filter.Search != "" {
		b.add("(name ILIKE ? OR address ILIKE ?)", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != nil {
		b.add("status = ?", *filter.Status)
	}
	if filter.MinCapacity != nil {
		b.add("capacity >= ?", *filter.MinCapacity)
	}
	if filter.MaxCapacity != nil {
		b.add("capacity <= ?", *filter.MaxCapacity)
	}
	return b
}

func (r *hallRepository) FindAll(ctx context.Context, filter HallFilter, limit, offset int) ([]*entity.Hall, error) {
	b := hallWhere(filter)
	query := `SELECT ` + hallColumns + ` FROM halls` + b.sql() +
		` ORDER BY name ASC LIMIT ` + b.arg(limit) + ` OFFSET ` + b.arg(offset)

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, b.args...)
	if err != nil {
		r.log.Error("Failed to list halls", zap.Error(err))
		return nil, fmt.Errorf("failed to list halls: %w", err)
	}
	defer rows.Close()

	halls := []*entity.Hall{}
	for rows.Next() {
		hall, err := scanHall(rows)
		if err != nil {
			r.log.Error("Failed to scan hall row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan hall: %w", err)
		}
		halls = append(halls, hall)
	}

	return halls, rows.Err()
}

func (r *hallRepository) Count(ctx context.Context, filter HallFilter) (int64, error) {
	b := hallWhere(filter)

	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM halls`+b.sql(), b.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count halls", zap.Error(err))
		return 0, fmt.Errorf("failed to count halls: %w", err)
	}

	return total, nil
}

func (r *hallRepository) Update(ctx context.Context, hall *entity.Hall) error {
	query := `
		UPDATE halls
		SET name = $2, address = $3, capacity = $4, max_rows = $5, max_seats_per_row = $6, status = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query,
		hall.ID,
		hall.Name,
		hall.Address,
		hall.Capacity,
		hall.MaxRows,
		hall.MaxSeatsPerRow,
		hall.Status,
		hall.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update hall",
			zap.Error(err),
			zap.String("hall_id", hall.ID.String()),
		)
		return fmt.Errorf("failed to update hall: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *hallRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE halls SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete hall",
			zap.Error(err),
			zap.String("hall_id", id.String()),
		)
		return fmt.Errorf("failed to delete hall: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Hall soft deleted", zap.String("hall_id", id.String()))
	return nil
}

func (r *hallRepository) LockSchedule(ctx context.Context, id uuid.UUID) error {
	if err := database.LockKey(ctx, "hall:"+id.String()); err != nil {
		r.log.Error("Failed to lock hall schedule",
			zap.Error(err),
			zap.String("hall_id", id.String()),
		)
		return fmt.Errorf("failed to lock hall schedule: %w", err)
	}

	return nil
}
