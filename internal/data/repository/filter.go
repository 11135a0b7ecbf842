package repository

import (
	"fmt"
	"strings"
	"time"

	"event-registration/internal/data/entity"

	"github.com/google/uuid"
)

type SpeakerFilter struct {
	Search         string
	IncludeDeleted bool
}

type HallFilter struct {
	Search         string
	Status         *entity.HallStatus
	MinCapacity    *int
	MaxCapacity    *int
	IncludeDeleted bool
}

// EventFilter selects events. Status and VisibleStatuses match the observed status at Now.
type EventFilter struct {
	Search          string
	Status          *entity.EventStatus
	HallID          *uuid.UUID
	OrganizerID     *uuid.UUID
	From            *time.Time
	To              *time.Time
	Tag             string
	SpeakerID       *uuid.UUID
	Now             time.Time
	VisibleStatuses []entity.EventStatus
	// VisibleOwner also shows this organizer's own events regardless of status.
	VisibleOwner   *uuid.UUID
	IncludeDeleted bool
}

// whereBuilder collects AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		b.args = append(b.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, cond)
}

// arg registers a value and returns its placeholder.
func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) sql() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// observedStatusSQL mirrors entity.Event.ObservedStatus for use in WHERE clauses.
func observedStatusSQL(nowParam string) string {
	return fmt.Sprintf(`(CASE
		WHEN status IN ('completed', 'cancelled', 'rejected') THEN status
		WHEN ends_at + INTERVAL '5 hours' <= %[1]s THEN 'completed'
		WHEN status IN ('draft', 'pending') AND registration_start IS NOT NULL AND registration_start <= %[1]s THEN 'published'
		ELSE status END)`, nowParam)
}

func statusStrings[T ~string](statuses []T) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
