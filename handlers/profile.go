package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/andrewpaige1/recallforge-api/models"
	"github.com/andrewpaige1/recallforge-api/utils"
	"github.com/andrewpaige1/recallforge-api/validation"
)

func (db *DBHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, profile.ToResponse(user.PublicID))
}

func (db *DBHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req validation.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid profile data", errs)
		return
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	profile.DisplayName = req.DisplayName
	if err := db.Save(&profile).Error; err != nil {
		log.Println("Profile update error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, profile.ToResponse(user.PublicID))
}

// GetStats aggregates the user's learning statistics across cards and
// generation sessions.
func (db *DBHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	now := time.Now().UTC()

	var cardsDue int64
	if err := db.Model(&models.Flashcard{}).
		Where("user_id = ? AND next_review_date <= ?", user.ID, now).
		Count(&cardsDue).Error; err != nil {
		log.Println("Stats due-count query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics", nil)
		return
	}

	var totalReviews int64
	if err := db.Model(&models.Flashcard{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(times_reviewed), 0)").
		Scan(&totalReviews).Error; err != nil {
		log.Println("Stats review-sum query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics", nil)
		return
	}

	var totalSessions int64
	if err := db.Model(&models.GenerationSession{}).
		Where("user_id = ?", user.ID).
		Count(&totalSessions).Error; err != nil {
		log.Println("Stats session-count query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics", nil)
		return
	}

	type acceptance struct {
		Accepted  int64
		Generated int64
	}
	var acc acceptance
	if err := db.Model(&models.GenerationSession{}).
		Where("user_id = ? AND status = ?", user.ID, models.SessionStatusSuccess).
		Select("COALESCE(SUM(accepted_count), 0) AS accepted, COALESCE(SUM(generated_count), 0) AS generated").
		Scan(&acc).Error; err != nil {
		log.Println("Stats acceptance query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics", nil)
		return
	}

	var acceptanceRate float64
	if acc.Generated > 0 {
		acceptanceRate = float64(acc.Accepted) / float64(acc.Generated)
	}

	stats := models.UserStatsResponse{
		TotalCardsCreated:       profile.TotalCardsCreated,
		TotalCardsGeneratedByAI: profile.TotalCardsGeneratedByAI,
		CardsDueToday:           int(cardsDue),
		TotalReviewsCompleted:   int(totalReviews),
		TotalGenerationSessions: int(totalSessions),
		TotalAcceptedCards:      int(acc.Accepted),
		AverageAcceptanceRate:   acceptanceRate,
		DailyGenerationCount:    profile.DailyGenerationCount,
	}
	if profile.LastGenerationDate != nil {
		s := profile.LastGenerationDate.UTC().Format("2006-01-02")
		stats.LastGenerationDate = &s
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}
