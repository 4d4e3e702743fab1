package models

import (
	"time"

	"gorm.io/gorm"
)

// Flashcard source values.
const (
	SourceManual      = "manual"
	SourceAIGenerated = "ai_generated"
)

// Flashcard represents an individual learnable item together with its
// spaced-repetition scheduling state.
type Flashcard struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex;not null"`
	UserID   uint   `gorm:"not null;index"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`

	GenerationSessionID *uint              `gorm:"index"`
	GenerationSession   *GenerationSession `gorm:"foreignKey:GenerationSessionID" json:"-"`

	Front  string `gorm:"not null;size:1000"`
	Back   string `gorm:"not null;size:2000"`
	Source string `gorm:"not null;size:20;default:manual"`

	// Scheduling state. EaseFactor never drops below 1.3; interval and
	// repetitions never go negative; NextReviewDate alone decides dueness.
	EaseFactor     float64    `gorm:"not null;default:2.5"`
	IntervalDays   int        `gorm:"not null;default:0"`
	Repetitions    int        `gorm:"not null;default:0"`
	NextReviewDate time.Time  `gorm:"not null;index"`
	LastReviewedAt *time.Time `gorm:"default:null"`
	TimesReviewed  int        `gorm:"not null;default:0"`
}

// FlashcardResponse is the wire shape of a flashcard.
type FlashcardResponse struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"userId"`
	GenerationSessionID *string `json:"generationSessionId"`
	Front               string  `json:"front"`
	Back                string  `json:"back"`
	Source              string  `json:"source"`
	EaseFactor          float64 `json:"easeFactor"`
	IntervalDays        int     `json:"intervalDays"`
	Repetitions         int     `json:"repetitions"`
	NextReviewDate      string  `json:"nextReviewDate"`
	LastReviewedAt      *string `json:"lastReviewedAt"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

// ToResponse maps the stored card to its wire shape. The session public ID
// comes from the preloaded association when one is linked.
func (f *Flashcard) ToResponse(userPublicID string) FlashcardResponse {
	var sessionID *string
	if f.GenerationSession != nil {
		sessionID = &f.GenerationSession.PublicID
	}

	var lastReviewed *string
	if f.LastReviewedAt != nil {
		s := f.LastReviewedAt.UTC().Format(time.RFC3339)
		lastReviewed = &s
	}

	return FlashcardResponse{
		ID:                  f.PublicID,
		UserID:              userPublicID,
		GenerationSessionID: sessionID,
		Front:               f.Front,
		Back:                f.Back,
		Source:              f.Source,
		EaseFactor:          f.EaseFactor,
		IntervalDays:        f.IntervalDays,
		Repetitions:         f.Repetitions,
		NextReviewDate:      f.NextReviewDate.UTC().Format(time.RFC3339),
		LastReviewedAt:      lastReviewed,
		CreatedAt:           f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// PaginationMeta describes one page of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
