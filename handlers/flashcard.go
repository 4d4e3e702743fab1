package handlers

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/recallforge-api/models"
	"github.com/andrewpaige1/recallforge-api/sm2"
	"github.com/andrewpaige1/recallforge-api/utils"
	"github.com/andrewpaige1/recallforge-api/validation"
)

type flashcardsListResponse struct {
	Data       []models.FlashcardResponse `json:"data"`
	Pagination models.PaginationMeta      `json:"pagination"`
}

type cardsDueResponse struct {
	Data  []models.FlashcardResponse `json:"data"`
	Count int                        `json:"count"`
}

func (db *DBHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	params, errs := validation.ParseFlashcardsListParams(r.URL.Query())
	if errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", errs)
		return
	}

	query := db.Model(&models.Flashcard{}).Where("user_id = ?", user.ID)
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Println("Flashcard count query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch flashcards", nil)
		return
	}

	var flashcards []models.Flashcard
	err := query.
		Preload("GenerationSession").
		Order(params.SortField + " " + params.SortDir).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&flashcards).Error
	if err != nil {
		log.Println("Flashcard list query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch flashcards", nil)
		return
	}

	data := make([]models.FlashcardResponse, 0, len(flashcards))
	for i := range flashcards {
		data = append(data, flashcards[i].ToResponse(user.PublicID))
	}

	utils.WriteJSON(w, http.StatusOK, flashcardsListResponse{
		Data: data,
		Pagination: models.PaginationMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		},
	})
}

func (db *DBHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req validation.CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid flashcard data", errs)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate ID", nil)
		return
	}

	flashcard := models.Flashcard{
		PublicID:       publicID,
		UserID:         user.ID,
		Front:          req.Front,
		Back:           req.Back,
		Source:         models.SourceManual,
		EaseFactor:     sm2.DefaultEaseFactor,
		NextReviewDate: time.Now().UTC(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&flashcard).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).
			Where("user_id = ?", user.ID).
			UpdateColumn("total_cards_created", gorm.Expr("total_cards_created + 1")).Error
	})
	if err != nil {
		log.Println("Flashcard creation error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create flashcard", nil)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, flashcard.ToResponse(user.PublicID))
}

func (db *DBHandler) GetFlashcardByID(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	flashcardID := r.PathValue("flashcardID")

	var flashcard models.Flashcard
	err := db.Preload("GenerationSession").
		Where("public_id = ? AND user_id = ?", flashcardID, user.ID).
		First(&flashcard).Error
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Flashcard not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, flashcard.ToResponse(user.PublicID))
}

func (db *DBHandler) UpdateFlashcardByID(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	flashcardID := r.PathValue("flashcardID")

	var req validation.UpdateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid flashcard data", errs)
		return
	}

	var flashcard models.Flashcard
	err := db.Preload("GenerationSession").
		Where("public_id = ? AND user_id = ?", flashcardID, user.ID).
		First(&flashcard).Error
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Flashcard not found", nil)
		return
	}

	// Edits touch content only; scheduling state belongs to reviews.
	if req.Front != nil {
		flashcard.Front = *req.Front
	}
	if req.Back != nil {
		flashcard.Back = *req.Back
	}

	if err := db.Save(&flashcard).Error; err != nil {
		log.Println("Flashcard update error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update flashcard", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, flashcard.ToResponse(user.PublicID))
}

func (db *DBHandler) DeleteFlashcardByID(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	flashcardID := r.PathValue("flashcardID")

	result := db.Where("public_id = ? AND user_id = ?", flashcardID, user.ID).Delete(&models.Flashcard{})
	if result.Error != nil {
		log.Println("Flashcard deletion error:", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete flashcard", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Flashcard not found", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetDueFlashcards returns up to limit cards whose next review is at or
// before now, most overdue first. An empty list is a normal answer.
func (db *DBHandler) GetDueFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	limit, errs := validation.ParseDueLimit(r.URL.Query())
	if errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", errs)
		return
	}

	var flashcards []models.Flashcard
	err := db.Preload("GenerationSession").
		Where("user_id = ? AND next_review_date <= ?", user.ID, time.Now().UTC()).
		Order("next_review_date asc").
		Limit(limit).
		Find(&flashcards).Error
	if err != nil {
		log.Println("Due cards query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch cards due for review", nil)
		return
	}

	data := make([]models.FlashcardResponse, 0, len(flashcards))
	for i := range flashcards {
		data = append(data, flashcards[i].ToResponse(user.PublicID))
	}

	utils.WriteJSON(w, http.StatusOK, cardsDueResponse{Data: data, Count: len(data)})
}

// ReviewFlashcard applies one review to a card. The write is a conditional
// update keyed on the scheduling state that was read, so two concurrent
// reviews cannot both consume the same state; the loser gets a conflict.
func (db *DBHandler) ReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	flashcardID := r.PathValue("flashcardID")

	var req validation.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid review data", errs)
		return
	}

	var flashcard models.Flashcard
	err := db.Where("public_id = ? AND user_id = ?", flashcardID, user.ID).First(&flashcard).Error
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Flashcard not found", nil)
		return
	}

	now := time.Now().UTC()
	next := sm2.Review(sm2.State{
		EaseFactor:   flashcard.EaseFactor,
		IntervalDays: flashcard.IntervalDays,
		Repetitions:  flashcard.Repetitions,
	}, *req.Quality, now)

	result := db.Model(&models.Flashcard{}).
		Where("id = ? AND ease_factor = ? AND interval_days = ? AND repetitions = ?",
			flashcard.ID, flashcard.EaseFactor, flashcard.IntervalDays, flashcard.Repetitions).
		Updates(map[string]any{
			"ease_factor":      next.EaseFactor,
			"interval_days":    next.IntervalDays,
			"repetitions":      next.Repetitions,
			"next_review_date": next.NextReviewDate,
			"last_reviewed_at": next.LastReviewedAt,
			"times_reviewed":   gorm.Expr("times_reviewed + 1"),
		})
	if result.Error != nil {
		log.Println("Review update error:", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to review flashcard", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusConflict, "CONFLICT", "Card was reviewed concurrently, fetch it again", nil)
		return
	}

	err = db.Preload("GenerationSession").First(&flashcard, flashcard.ID).Error
	if err != nil {
		log.Println("Review reload error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to review flashcard", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, flashcard.ToResponse(user.PublicID))
}
