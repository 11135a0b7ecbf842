package entity

import (
	"time"

	"github.com/google/uuid"
)

type Speaker struct {
	Base
	Name        string  `db:"name"`
	Title       *string `db:"title"`
	Company     *string `db:"company"`
	Bio         *string `db:"bio"`
	Email       *string `db:"email"`
	Phone       *string `db:"phone"`
	LinkedinURL *string `db:"linkedin_url"`
	AvatarURL   *string `db:"avatar_url"`
}

// EventSpeaker links a speaker to an event; lower DisplayOrder is listed first.
type EventSpeaker struct {
	EventID      uuid.UUID `db:"event_id"`
	SpeakerID    uuid.UUID `db:"speaker_id"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`

	Speaker *Speaker `db:"-"`
}

// MaxEventSpeakers bounds the speaker list of one event.
const MaxEventSpeakers = 20
