package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds per-user counters and settings. One per user, created at
// signup, never deleted on its own.
type Profile struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex;not null"`
	UserID   uint   `gorm:"uniqueIndex;not null"`
	User     *User  `gorm:"foreignKey:UserID" json:"-"`

	DisplayName             *string `gorm:"size:100"`
	TotalCardsCreated       int     `gorm:"not null;default:0"`
	TotalCardsGeneratedByAI int     `gorm:"not null;default:0"`

	// DailyGenerationCount is only meaningful together with
	// LastGenerationDate; the pair implements the daily AI quota.
	DailyGenerationCount int        `gorm:"not null;default:0"`
	LastGenerationDate   *time.Time `gorm:"type:date"`
}

// ProfileResponse is the wire shape of a profile.
type ProfileResponse struct {
	ID                      string  `json:"id"`
	UserID                  string  `json:"userId"`
	DisplayName             *string `json:"displayName"`
	TotalCardsCreated       int     `json:"totalCardsCreated"`
	TotalCardsGeneratedByAI int     `json:"totalCardsGeneratedByAI"`
	DailyGenerationCount    int     `json:"dailyGenerationCount"`
	LastGenerationDate      *string `json:"lastGenerationDate"`
	CreatedAt               string  `json:"createdAt"`
	UpdatedAt               string  `json:"updatedAt"`
}

func (p *Profile) ToResponse(userPublicID string) ProfileResponse {
	return ProfileResponse{
		ID:                      p.PublicID,
		UserID:                  userPublicID,
		DisplayName:             p.DisplayName,
		TotalCardsCreated:       p.TotalCardsCreated,
		TotalCardsGeneratedByAI: p.TotalCardsGeneratedByAI,
		DailyGenerationCount:    p.DailyGenerationCount,
		LastGenerationDate:      formatDate(p.LastGenerationDate),
		CreatedAt:               p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:               p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// UserStatsResponse is the wire shape of GET /profile/stats.
type UserStatsResponse struct {
	TotalCardsCreated       int     `json:"totalCardsCreated"`
	TotalCardsGeneratedByAI int     `json:"totalCardsGeneratedByAI"`
	CardsDueToday           int     `json:"cardsDueToday"`
	TotalReviewsCompleted   int     `json:"totalReviewsCompleted"`
	TotalGenerationSessions int     `json:"totalGenerationSessions"`
	TotalAcceptedCards      int     `json:"totalAcceptedCards"`
	AverageAcceptanceRate   float64 `json:"averageAcceptanceRate"`
	DailyGenerationCount    int     `json:"dailyGenerationCount"`
	LastGenerationDate      *string `json:"lastGenerationDate"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}
