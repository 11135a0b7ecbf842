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

type SpeakerRepository interface {
	Create(ctx context.Context, speaker *entity.Speaker) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Speaker, error)
	// FindByEmail matches case-insensitively among live speakers.
	FindByEmail(ctx context.Context, email string) (*entity.Speaker, error)
	// FindByIDs returns the live speakers among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Speaker, error)
	FindAll(ctx context.Context, filter SpeakerFilter, limit, offset int) ([]*entity.Speaker, error)
	Count(ctx context.Context, filter SpeakerFilter) (int64, error)
	Update(ctx context.Context, speaker *entity.Speaker) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceForEvent swaps the whole speaker list of an event.
	ReplaceForEvent(ctx context.Context, eventID uuid.UUID, links []*entity.EventSpeaker) error
	// FindByEvent returns the live speakers of an event by display order.
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.EventSpeaker, error)
}

type speakerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSpeakerRepository(db database.PgxIface, log *zap.Logger) SpeakerRepository {
	return &speakerRepository{
		db:  db,
		log: log.With(zap.String("repository", "speaker")),
	}
}

const speakerColumns = `id, name, title, company, bio, email, phone, linkedin_url, avatar_url, created_at, updated_at, deleted_at`

func scanSpeaker(row pgx.Row) (*entity.Speaker, error) {
	var speaker entity.Speaker
	err := row.Scan(
		&speaker.ID,
		&speaker.Name,
		&speaker.Title,
		&speaker.Company,
		&speaker.Bio,
		&speaker.Email,
		&speaker.Phone,
		&speaker.LinkedinURL,
		&speaker.AvatarURL,
		&speaker.CreatedAt,
		&speaker.UpdatedAt,
		&speaker.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &speaker, nil
}

func (r *speakerRepository) collect(rows pgx.Rows) ([]*entity.Speaker, error) {
	defer rows.Close()

	speakers := []*entity.Speaker{}
	for rows.Next() {
		speaker, err := scanSpeaker(rows)
		if err != nil {
			r.log.Error("Failed to scan speaker row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan speaker: %w", err)
		}
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

func (r *speakerRepository) Create(ctx context.Context, speaker *entity.Speaker) error {
	query := `
		INSERT INTO speakers (id, name, title, company, bio, email, phone, linkedin_url, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		speaker.ID,
		speaker.Name,
		speaker.Title,
		speaker.Company,
		speaker.Bio,
		speaker.Email,
		speaker.Phone,
		speaker.LinkedinURL,
		speaker.AvatarURL,
		speaker.CreatedAt,
		speaker.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		r.log.Error("Failed to create speaker",
			zap.Error(err),
			zap.String("name", speaker.Name),
		)
		return fmt.Errorf("failed to create speaker: %w", err)
	}

	return nil
}

func (r *speakerRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*entity.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	speaker, err := scanSpeaker(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find speaker by ID",
			zap.Error(err),
			zap.String("speaker_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find speaker: %w", err)
	}

	return speaker, nil
}

func (r *speakerRepository) FindByEmail(ctx context.Context, email string) (*entity.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`

	speaker, err := scanSpeaker(database.Conn(ctx, r.db).QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find speaker by email", zap.Error(err))
		return nil, fmt.Errorf("failed to find speaker: %w", err)
	}

	return speaker, nil
}

func (r *speakerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Speaker, error) {
	if len(ids) == 0 {
		return []*entity.Speaker{}, nil
	}
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = ANY($1) AND deleted_at IS NULL`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find speakers by IDs", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("failed to find speakers: %w", err)
	}

	return r.collect(rows)
}

func speakerWhere(filter SpeakerFilter) *whereBuilder {
	b := &whereBuilder{}
	if !filter.IncludeDeleted {
		b.add("deleted_at IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b.add("(name ILIKE ? OR title ILIKE ? OR company ILIKE ? OR email ILIKE ?)", pattern, pattern, pattern, pattern)
	}
	return b
}

func (r *speakerRepository) FindAll(ctx context.Context, filter SpeakerFilter, limit, offset int) ([]*entity.Speaker, error) {
	b := speakerWhere(filter)
	query := `SELECT ` + speakerColumns + ` FROM speakers` + b.sql() +
		` ORDER BY created_at DESC LIMIT ` + b.arg(limit) + ` OFFSET ` + b.arg(offset)

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, b.args...)
	if err != nil {
		r.log.Error("Failed to list speakers", zap.Error(err))
		return nil, fmt.Errorf("failed to list speakers: %w", err)
	}

	return r.collect(rows)
}

func (r *speakerRepository) Count(ctx context.Context, filter SpeakerFilter) (int64, error) {
	b := speakerWhere(filter)

	var total int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM speakers`+b.sql(), b.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count speakers", zap.Error(err))
		return 0, fmt.Errorf("failed to count speakers: %w", err)
	}

	return total, nil
}

func (r *speakerRepository) Update(ctx context.Context, speaker *entity.Speaker) error {
	query := `
		UPDATE speakers
		SET name = $2, title = $3, company = $4, bio = $5, email = $6, phone = $7,
			linkedin_url = $8, avatar_url = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query,
		speaker.ID,
		speaker.Name,
		speaker.Title,
		speaker.Company,
		speaker.Bio,
		speaker.Email,
		speaker.Phone,
		speaker.LinkedinURL,
		speaker.AvatarURL,
		speaker.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		r.log.Error("Failed to update speaker",
			zap.Error(err),
			zap.String("speaker_id", speaker.ID.String()),
		)
		return fmt.Errorf("failed to update speaker: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *speakerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE speakers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete speaker",
			zap.Error(err),
			zap.String("speaker_id", id.String()),
		)
		return fmt.Errorf("failed to delete speaker: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Speaker soft deleted", zap.String("speaker_id", id.String()))
	return nil
}

func (r *speakerRepository) ReplaceForEvent(ctx context.Context, eventID uuid.UUID, links []*entity.EventSpeaker) error {
	conn := database.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, `DELETE FROM event_speakers WHERE event_id = $1`, eventID); err != nil {
		r.log.Error("Failed to clear event speakers",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return fmt.Errorf("failed to clear event speakers: %w", err)
	}
	if len(links) == 0 {
		return nil
	}

	speakerIDs := make([]uuid.UUID, len(links))
	orders := make([]int32, len(links))
	for i, link := range links {
		speakerIDs[i] = link.SpeakerID
		orders[i] = int32(link.DisplayOrder)
	}

	query := `
		INSERT INTO event_speakers (event_id, speaker_id, display_order, created_at)
		SELECT $1, s.speaker_id, s.display_order, $4
		FROM UNNEST($2::uuid[], $3::int[]) AS s (speaker_id, display_order)
	`
	if _, err := conn.Exec(ctx, query, eventID, speakerIDs, orders, links[0].CreatedAt); err != nil {
		r.log.Error("Failed to link event speakers",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return fmt.Errorf("failed to link event speakers: %w", err)
	}

	return nil
}

func (r *speakerRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.EventSpeaker, error) {
	query := `
		SELECT es.event_id, es.display_order, es.created_at,
			s.id, s.name, s.title, s.company, s.bio, s.email, s.phone, s.linkedin_url, s.avatar_url,
			s.created_at, s.updated_at, s.deleted_at
		FROM event_speakers es
		JOIN speakers s ON s.id = es.speaker_id AND s.deleted_at IS NULL
		WHERE es.event_id = $1
		ORDER BY es.display_order ASC, s.name ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find event speakers",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("failed to find event speakers: %w", err)
	}
	defer rows.Close()

	links := []*entity.EventSpeaker{}
	for rows.Next() {
		var (
			link    entity.EventSpeaker
			speaker entity.Speaker
		)
		if err := rows.Scan(
			&link.EventID,
			&link.DisplayOrder,
			&link.CreatedAt,
			&speaker.ID,
			&speaker.Name,
			&speaker.Title,
			&speaker.Company,
			&speaker.Bio,
			&speaker.Email,
			&speaker.Phone,
			&speaker.LinkedinURL,
			&speaker.AvatarURL,
			&speaker.CreatedAt,
			&speaker.UpdatedAt,
			&speaker.DeletedAt,
		); err != nil {
			r.log.Error("Failed to scan event speaker row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan event speaker: %w", err)
		}
		link.SpeakerID = speaker.ID
		link.Speaker = &speaker
		links = append(links, &link)
	}

	return links, rows.Err()
}
