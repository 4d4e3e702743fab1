package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/andrewpaige1/recallforge-api/models"
)

func TestGetProfile(t *testing.T) {
	db := newTestHandler(t)
	user := createTestUser(t, db, "profile@example.com")

	rr := doJSON(t, db.GetProfile, http.MethodGet, "/profile", nil, user, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[models.ProfileResponse](t, rr)
	if resp.UserID != user.PublicID {
		t.Errorf("userId = %q, want %q", resp.UserID, user.PublicID)
	}
	if resp.TotalCardsCreated != 0 || resp.DailyGenerationCount != 0 {
		t.Errorf("fresh profile counters = %d/%d, want 0/0",
			resp.TotalCardsCreated, resp.DailyGenerationCount)
	}
	if resp.LastGenerationDate != nil {
		t.Error("lastGenerationDate should be null before any generation")
	}
}

func TestUpdateProfile(t *testing.T) {
	db := newTestHandler(t)
	user := createTestUser(t, db, "rename@example.com")

	rr := doJSON(t, db.UpdateProfile, http.MethodPatch, "/profile",
		map[string]string{"displayName": "  New Name  "}, user, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[models.ProfileResponse](t, rr)
	if resp.DisplayName == nil || *resp.DisplayName != "New Name" {
		t.Errorf("displayName = %v, want trimmed New Name", resp.DisplayName)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	db := newTestHandler(t)
	user := createTestUser(t, db, "badrename@example.com")

	tests := []struct {
		name string
		body any
	}{
		{"missing field", map[string]string{}},
		{"blank name", map[string]string{"displayName": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, db.UpdateProfile, http.MethodPatch, "/profile", tt.body, user, nil)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	db := newTestHandler(t)
	user := createTestUser(t, db, "stats@example.com")

	now := time.Now().UTC()
	due := createTestFlashcard(t, db, user.ID, now.Add(-time.Hour))
	createTestFlashcard(t, db, user.ID, now.Add(24*time.Hour))
	if err := db.Model(due).Update("times_reviewed", 3).Error; err != nil {
		t.Fatalf("seed review count: %v", err)
	}

	// Two resolved sessions: 5 of 8 accepted, then 1 of 2.
	first := createTestSession(t, db, user.ID, 8, models.SessionStatusSuccess)
	if err := db.Model(first).Updates(map[string]any{"accepted_count": 5, "rejected_count": 3}).Error; err != nil {
		t.Fatalf("seed session counts: %v", err)
	}
	second := createTestSession(t, db, user.ID, 2, models.SessionStatusSuccess)
	if err := db.Model(second).Updates(map[string]any{"accepted_count": 1, "rejected_count": 1}).Error; err != nil {
		t.Fatalf("seed session counts: %v", err)
	}
	// Failed sessions count toward the total but not the acceptance rate.
	createTestSession(t, db, user.ID, 0, models.SessionStatusFailed)

	if err := db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Updates(map[string]any{
		"total_cards_created":         8,
		"total_cards_generated_by_ai": 6,
		"daily_generation_count":      2,
		"last_generation_date":        now,
	}).Error; err != nil {
		t.Fatalf("seed profile counters: %v", err)
	}

	rr := doJSON(t, db.GetStats, http.MethodGet, "/profile/stats", nil, user, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	stats := decodeBody[models.UserStatsResponse](t, rr)
	if stats.TotalCardsCreated != 8 {
		t.Errorf("totalCardsCreated = %d, want 8", stats.TotalCardsCreated)
	}
	if stats.TotalCardsGeneratedByAI != 6 {
		t.Errorf("totalCardsGeneratedByAI = %d, want 6", stats.TotalCardsGeneratedByAI)
	}
	if stats.CardsDueToday != 1 {
		t.Errorf("cardsDueToday = %d, want 1", stats.CardsDueToday)
	}
	if stats.TotalReviewsCompleted != 3 {
		t.Errorf("totalReviewsCompleted = %d, want 3", stats.TotalReviewsCompleted)
	}
	if stats.TotalGenerationSessions != 3 {
		t.Errorf("totalGenerationSessions = %d, want 3", stats.TotalGenerationSessions)
	}
	if stats.TotalAcceptedCards != 6 {
		t.Errorf("totalAcceptedCards = %d, want 6", stats.TotalAcceptedCards)
	}
	if want := 6.0 / 10.0; stats.AverageAcceptanceRate != want {
		t.Errorf("averageAcceptanceRate = %v, want %v", stats.AverageAcceptanceRate, want)
	}
	if stats.LastGenerationDate == nil || *stats.LastGenerationDate != now.Format("2006-01-02") {
		t.Errorf("lastGenerationDate = %v, want %s", stats.LastGenerationDate, now.Format("2006-01-02"))
	}
}

func TestGetStatsEmptyAccount(t *testing.T) {
	db := newTestHandler(t)
	user := createTestUser(t, db, "emptystats@example.com")

	rr := doJSON(t, db.GetStats, http.MethodGet, "/profile/stats", nil, user, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	stats := decodeBody[models.UserStatsResponse](t, rr)
	if stats.AverageAcceptanceRate != 0 {
		t.Errorf("averageAcceptanceRate = %v, want 0 with no generations", stats.AverageAcceptanceRate)
	}
	if stats.CardsDueToday != 0 || stats.TotalReviewsCompleted != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}
