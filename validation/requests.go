package validation

import "strings"

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

func (r *SignupRequest) Validate() FieldErrors {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	return check(r)
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() FieldErrors {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return check(r)
}

// UpdateProfileRequest is the payload for PATCH /profile.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitnil,min=1,max=100"`
}

func (r *UpdateProfileRequest) Validate() FieldErrors {
	if r.DisplayName != nil {
		trimmed := strings.TrimSpace(*r.DisplayName)
		r.DisplayName = &trimmed
	}
	errs := check(r)
	if r.DisplayName == nil {
		errs["displayName"] = "This field is required"
	}
	return errs
}

// CreateFlashcardRequest is the payload for POST /flashcards.
type CreateFlashcardRequest struct {
	Front string `json:"front" validate:"required,min=1,max=1000"`
	Back  string `json:"back" validate:"required,min=1,max=2000"`
}

func (r *CreateFlashcardRequest) Validate() FieldErrors {
	r.Front = strings.TrimSpace(r.Front)
	r.Back = strings.TrimSpace(r.Back)
	return check(r)
}

// UpdateFlashcardRequest is the payload for PATCH /flashcards/{id}.
// At least one of front/back must be present.
type UpdateFlashcardRequest struct {
	Front *string `json:"front" validate:"omitnil,min=1,max=1000"`
	Back  *string `json:"back" validate:"omitnil,min=1,max=2000"`
}

func (r *UpdateFlashcardRequest) Validate() FieldErrors {
	if r.Front != nil {
		trimmed := strings.TrimSpace(*r.Front)
		r.Front = &trimmed
	}
	if r.Back != nil {
		trimmed := strings.TrimSpace(*r.Back)
		r.Back = &trimmed
	}
	errs := check(r)
	if r.Front == nil && r.Back == nil {
		errs["request"] = "At least one field (front or back) must be provided"
	}
	return errs
}

// ReviewRequest is the payload for POST /flashcards/{id}/review. Quality is
// a pointer so a missing field is distinguishable from a legitimate 0.
type ReviewRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

func (r *ReviewRequest) Validate() FieldErrors {
	return check(r)
}

// GenerateRequest is the payload for POST /generate.
type GenerateRequest struct {
	InputText string `json:"inputText" validate:"required,min=1000,max=10000"`
	Model     string `json:"model" validate:"omitempty,max=100"`
}

func (r *GenerateRequest) Validate() FieldErrors {
	r.InputText = strings.TrimSpace(r.InputText)
	return check(r)
}

// AcceptedCard is one provisional pair the caller chose to keep, possibly
// edited. Bounds match the generation quality gate and are re-checked here
// because the text may have changed.
type AcceptedCard struct {
	ID    string `json:"id" validate:"required"`
	Front string `json:"front" validate:"required,min=10,max=1000"`
	Back  string `json:"back" validate:"required,min=10,max=2000"`
}

// AcceptCardsRequest is the payload for POST /generate/{sessionId}/accept.
// An empty cards list is a full rejection and is valid.
type AcceptCardsRequest struct {
	Cards []AcceptedCard `json:"cards" validate:"dive"`
}

func (r *AcceptCardsRequest) Validate() FieldErrors {
	for i := range r.Cards {
		r.Cards[i].Front = strings.TrimSpace(r.Cards[i].Front)
		r.Cards[i].Back = strings.TrimSpace(r.Cards[i].Back)
	}
	return check(r)
}
