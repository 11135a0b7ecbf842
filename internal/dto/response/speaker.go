package response

import (
	"time"

	"event-registration/internal/data/entity"
)

type SpeakerResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Title       *string    `json:"title,omitempty"`
	Company     *string    `json:"company,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	LinkedinURL *string    `json:"linkedin_url,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type SpeakerDetailResponse struct {
	SpeakerResponse
	TotalEvents int64 `json:"total_events"`
}

// EventSpeakerResponse is the short speaker form embedded in event details.
type EventSpeakerResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Title        *string `json:"title,omitempty"`
	Company      *string `json:"company,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

func SpeakerToResponse(speaker *entity.Speaker) SpeakerResponse {
	return SpeakerResponse{
		ID:          speaker.ID.String(),
		Name:        speaker.Name,
		Title:       speaker.Title,
		Company:     speaker.Company,
		Bio:         speaker.Bio,
		Email:       speaker.Email,
		Phone:       speaker.Phone,
		LinkedinURL: speaker.LinkedinURL,
		AvatarURL:   speaker.AvatarURL,
		CreatedAt:   speaker.CreatedAt,
		UpdatedAt:   speaker.UpdatedAt,
		DeletedAt:   speaker.DeletedAt,
	}
}

func EventSpeakersToResponse(links []*entity.EventSpeaker) []EventSpeakerResponse {
	out := make([]EventSpeakerResponse, 0, len(links))
	for _, link := range links {
		if link.Speaker == nil {
			continue
		}
		out = append(out, EventSpeakerResponse{
			ID:           link.Speaker.ID.String(),
			Name:         link.Speaker.Name,
			Title:        link.Speaker.Title,
			Company:      link.Speaker.Company,
			AvatarURL:    link.Speaker.AvatarURL,
			DisplayOrder: link.DisplayOrder,
		})
	}
	return out
}
