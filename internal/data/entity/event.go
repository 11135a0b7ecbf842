package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPending   EventStatus = "pending"
	EventStatusPublished EventStatus = "published"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusRejected  EventStatus = "rejected"
)

var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPending, EventStatusPublished, EventStatusCancelled, EventStatusRejected},
	EventStatusPending:   {EventStatusPublished, EventStatusCancelled, EventStatusRejected},
	EventStatusPublished: {EventStatusPublished, EventStatusCompleted, EventStatusCancelled},
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPending, EventStatusPublished,
		EventStatusCompleted, EventStatusCancelled, EventStatusRejected:
		return true
	}
	return false
}

func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled || s == EventStatusRejected
}

// Public reports whether events in this status are listed for everyone.
func (s EventStatus) Public() bool {
	return s == EventStatusPublished || s == EventStatusCompleted || s == EventStatusCancelled
}

func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, allowed := range eventTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PublicEventStatuses are the statuses visible to callers without organizer rights.
var PublicEventStatuses = []EventStatus{EventStatusPublished, EventStatusCompleted, EventStatusCancelled}

const (
	// AutoCompleteAfter is how long after its end an event counts as completed.
	AutoCompleteAfter = 5 * time.Hour
	// MinHallGap is the minimum idle time between two events in one hall on one day.
	MinHallGap = 5 * time.Hour
	// CancelNotice is how far ahead of the start an event may still be cancelled.
	CancelNotice = 48 * time.Hour
	// StudentCancelNotice is how far ahead of the start a student may drop a ticket.
	StudentCancelNotice = 24 * time.Hour
)

type Event struct {
	Base
	Title             string      `db:"title"`
	Description       string      `db:"description"`
	ImageURL          *string     `db:"image_url"`
	StartsAt          time.Time   `db:"starts_at"`
	EndsAt            time.Time   `db:"ends_at"`
	HallID            *uuid.UUID  `db:"hall_id"`
	OrganizerID       uuid.UUID   `db:"organizer_id"`
	TotalSeats        int         `db:"total_seats"`
	NumberOfRows      int         `db:"number_of_rows"`
	SeatsPerRow       int         `db:"seats_per_row"`
	RegisteredCount   int         `db:"registered_count"`
	CheckedInCount    int         `db:"checked_in_count"`
	Status            EventStatus `db:"status"`
	RegistrationStart *time.Time  `db:"registration_start"`
	RegistrationEnd   *time.Time  `db:"registration_end"`
	MaxTicketsPerUser int         `db:"max_tickets_per_user"`
	RejectionReason   *string     `db:"rejection_reason"`
	Location          string      `db:"location"`
	Tags              []string    `db:"tags"`
}

// ObservedStatus derives the status as of now without mutating the event.
// The scheduled sweep later persists the same value.
func (e *Event) ObservedStatus(now time.Time) EventStatus {
	if e.Status.Terminal() {
		return e.Status
	}
	if !now.Before(e.EndsAt.Add(AutoCompleteAfter)) {
		return EventStatusCompleted
	}
	if (e.Status == EventStatusDraft || e.Status == EventStatusPending) &&
		e.RegistrationStart != nil && !now.Before(*e.RegistrationStart) {
		return EventStatusPublished
	}
	return e.Status
}

// Overlaps uses half-open intervals: touching events do not overlap.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartsAt.Before(end) && e.EndsAt.After(start)
}

// GapViolation reports whether start..end sits closer than MinHallGap to this event.
func (e *Event) GapViolation(start, end time.Time) bool {
	if !e.EndsAt.After(start) {
		return start.Sub(e.EndsAt) < MinHallGap
	}
	if !end.After(e.StartsAt) {
		return e.StartsAt.Sub(end) < MinHallGap
	}
	return true
}

// OwnedBy reports whether the caller created the event.
func (e *Event) OwnedBy(userID uuid.UUID) bool {
	return e.OrganizerID == userID
}

// VisibleTo applies the listing rule: non-public statuses only for the owner or organizers.
func (e *Event) VisibleTo(caller Caller, now time.Time) bool {
	if e.ObservedStatus(now).Public() {
		return true
	}
	return caller.Role.CanOrganize() || (!caller.Anonymous() && e.OwnedBy(caller.ID))
}

// RegistrationOpen checks the optional registration window.
func (e *Event) RegistrationOpen(now time.Time) (started, ended bool) {
	started = e.RegistrationStart == nil || !now.Before(*e.RegistrationStart)
	ended = e.RegistrationEnd != nil && now.After(*e.RegistrationEnd)
	return started, ended
}

// Seated reports whether tickets for this event carry a seat.
func (e *Event) Seated() bool {
	return e.HallID != nil && e.NumberOfRows > 0 && e.SeatsPerRow > 0
}

// MaxEventTags bounds the tag list of one event.
const MaxEventTags = 20

// NormalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
