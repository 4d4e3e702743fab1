package models

import (
	"time"

	"gorm.io/gorm"
)

// Generation session status values. Status is set once at creation.
const (
	SessionStatusSuccess = "success"
	SessionStatusFailed  = "failed"
	SessionStatusPartial = "partial"
)

// GenerationSession is the audit record of one AI generation attempt. It is
// append-only except for the accepted/rejected counts, which the acceptance
// workflow sets exactly once.
type GenerationSession struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex;not null"`
	UserID   uint   `gorm:"not null;index"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`

	InputText      string `gorm:"type:text;not null"`
	GeneratedCount int    `gorm:"not null;default:0"`
	AcceptedCount  int    `gorm:"not null;default:0"`
	RejectedCount  int    `gorm:"not null;default:0"`

	Status       string  `gorm:"not null;size:20"`
	ErrorMessage *string `gorm:"type:text"`

	GenerationTimeMs *int64
	TokensUsed       *int
	ModelUsed        *string `gorm:"size:100"`

	Flashcards []Flashcard `gorm:"foreignKey:GenerationSessionID"`
}

// GenerationSessionResponse is the wire shape of a session.
type GenerationSessionResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId"`
	InputText        string  `json:"inputText"`
	GeneratedCount   int     `json:"generatedCount"`
	AcceptedCount    int     `json:"acceptedCount"`
	RejectedCount    int     `json:"rejectedCount"`
	Status           string  `json:"status"`
	ErrorMessage     *string `json:"errorMessage"`
	GenerationTimeMs *int64  `json:"generationTimeMs"`
	TokensUsed       *int    `json:"tokensUsed"`
	ModelUsed        *string `json:"modelUsed"`
	CreatedAt        string  `json:"createdAt"`
}

func (s *GenerationSession) ToResponse(userPublicID string) GenerationSessionResponse {
	return GenerationSessionResponse{
		ID:               s.PublicID,
		UserID:           userPublicID,
		InputText:        s.InputText,
		GeneratedCount:   s.GeneratedCount,
		AcceptedCount:    s.AcceptedCount,
		RejectedCount:    s.RejectedCount,
		Status:           s.Status,
		ErrorMessage:     s.ErrorMessage,
		GenerationTimeMs: s.GenerationTimeMs,
		TokensUsed:       s.TokensUsed,
		ModelUsed:        s.ModelUsed,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SessionCard is the reduced card shape embedded in a session detail.
type SessionCard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GenerationSessionWithCards is the wire shape of GET /sessions/{id}.
type GenerationSessionWithCards struct {
	GenerationSessionResponse
	Flashcards []SessionCard `json:"flashcards"`
}
