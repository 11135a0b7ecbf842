package request

type CreateSpeakerRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Company     *string `json:"company" validate:"omitempty,max=200"`
	Bio         *string `json:"bio" validate:"omitempty,max=5000"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,e164"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitempty,url,max=500"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// UpdateSpeakerRequest only changes the fields that are sent; an empty string clears an optional field.
type UpdateSpeakerRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Company     *string `json:"company" validate:"omitempty,max=200"`
	Bio         *string `json:"bio" validate:"omitempty,max=5000"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,e164"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitempty,url,max=500"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

type SpeakerListRequest struct {
	PaginatedRequest
	Search string `validate:"max=100"`
}
