package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/recallforge-api/ai"
	"github.com/andrewpaige1/recallforge-api/models"
	"github.com/andrewpaige1/recallforge-api/ratelimit"
	"github.com/andrewpaige1/recallforge-api/sm2"
	"github.com/andrewpaige1/recallforge-api/utils"
	"github.com/andrewpaige1/recallforge-api/validation"
)

type generateResponse struct {
	SessionID        string             `json:"sessionId"`
	Status           string             `json:"status"`
	GeneratedCards   []ai.GeneratedCard `json:"generatedCards"`
	GeneratedCount   int                `json:"generatedCount"`
	GenerationTimeMs int64              `json:"generationTimeMs"`
	TokensUsed       int                `json:"tokensUsed"`
}

type acceptResponse struct {
	SessionID     string                     `json:"sessionId"`
	AcceptedCount int                        `json:"acceptedCount"`
	RejectedCount int                        `json:"rejectedCount"`
	Flashcards    []models.FlashcardResponse `json:"flashcards"`
}

type sessionsListResponse struct {
	Data       []models.GenerationSessionResponse `json:"data"`
	Pagination models.PaginationMeta              `json:"pagination"`
}

// recordFailedSession writes the audit record for a generation attempt that
// failed after the external call was made. Best effort: a failure here is
// logged, the original error still reaches the caller.
func (db *DBHandler) recordFailedSession(userID uint, inputText, model string, cause error) {
	publicID, err := gonanoid.New()
	if err != nil {
		log.Println("Failed session ID generation error:", err)
		return
	}
	msg := cause.Error()
	session := models.GenerationSession{
		PublicID:     publicID,
		UserID:       userID,
		InputText:    inputText,
		Status:       models.SessionStatusFailed,
		ErrorMessage: &msg,
		ModelUsed:    &model,
	}
	if err := db.Create(&session).Error; err != nil {
		log.Println("Failed to record failed generation session:", err)
	}
}

// GenerateFlashcards runs the AI generation workflow: rate check, external
// call, session record, counter advance. A rate-limited request is rejected
// before the external call and leaves no session behind.
func (db *DBHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req validation.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid generation request", errs)
		return
	}

	if db.AI == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI generation is not configured", nil)
		return
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		log.Println("Profile lookup error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user profile", nil)
		return
	}

	now := time.Now().UTC()
	if ratelimit.Exceeded(profile.DailyGenerationCount, profile.LastGenerationDate, now) {
		w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfter(now)))
		utils.WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"Daily generation limit reached, try again tomorrow", nil)
		return
	}

	model := req.Model
	if model == "" {
		model = ai.DefaultModel
	}

	result, err := db.AI.GenerateFlashcards(r.Context(), req.InputText, model)
	if err == nil {
		err = ai.ValidateCards(result.Cards)
	}
	if err != nil {
		db.recordFailedSession(user.ID, req.InputText, model, err)
		if errors.Is(err, ai.ErrTimeout) {
			utils.WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI service timeout - please try again", nil)
			return
		}
		log.Println("AI generation error:", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI generation failed", nil)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate ID", nil)
		return
	}

	session := models.GenerationSession{
		PublicID:         publicID,
		UserID:           user.ID,
		InputText:        req.InputText,
		GeneratedCount:   len(result.Cards),
		Status:           models.SessionStatusSuccess,
		GenerationTimeMs: &result.TimeMs,
		TokensUsed:       &result.TokensUsed,
		ModelUsed:        &model,
	}
	if err := db.Create(&session).Error; err != nil {
		log.Println("Generation session creation error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create generation session", nil)
		return
	}

	// Counter advance is best effort relative to the generation result: a
	// lost update under-counts but never retracts a returned success.
	newCount, newDate := ratelimit.Advance(profile.DailyGenerationCount, profile.LastGenerationDate, now)
	counterUpdate := db.Model(&models.Profile{}).
		Where("id = ? AND daily_generation_count = ?", profile.ID, profile.DailyGenerationCount).
		Updates(map[string]any{
			"daily_generation_count": newCount,
			"last_generation_date":   newDate,
		})
	if counterUpdate.Error != nil {
		log.Println("Generation counter update error:", counterUpdate.Error)
	} else if counterUpdate.RowsAffected == 0 {
		log.Printf("Generation counter for user %s advanced concurrently, leaving it", user.PublicID)
	}

	utils.WriteJSON(w, http.StatusOK, generateResponse{
		SessionID:        session.PublicID,
		Status:           session.Status,
		GeneratedCards:   result.Cards,
		GeneratedCount:   len(result.Cards),
		GenerationTimeMs: result.TimeMs,
		TokensUsed:       result.TokensUsed,
	})
}

// AcceptCards turns a caller-selected subset of a session's provisional
// pairs into permanent flashcards. The batch insert is transactional; the
// follow-up session bookkeeping is not allowed to retract it.
func (db *DBHandler) AcceptCards(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	sessionID := r.PathValue("sessionID")

	var req validation.AcceptCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cards data", errs)
		return
	}

	var session models.GenerationSession
	err := db.Where("public_id = ? AND user_id = ?", sessionID, user.ID).First(&session).Error
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Generation session not found", nil)
		return
	}

	if session.Status != models.SessionStatusSuccess {
		utils.WriteError(w, http.StatusConflict, "CONFLICT", "Session did not generate any cards", nil)
		return
	}
	if session.AcceptedCount+session.RejectedCount > 0 {
		utils.WriteError(w, http.StatusConflict, "CONFLICT", "Session has already been resolved", nil)
		return
	}

	acceptedCount := len(req.Cards)
	if acceptedCount > session.GeneratedCount {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"More cards submitted than were generated", nil)
		return
	}
	rejectedCount := session.GeneratedCount - acceptedCount

	now := time.Now().UTC()
	created := make([]models.Flashcard, 0, acceptedCount)
	for _, card := range req.Cards {
		publicID, err := gonanoid.New()
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate ID", nil)
			return
		}
		created = append(created, models.Flashcard{
			PublicID:            publicID,
			UserID:              user.ID,
			GenerationSessionID: &session.ID,
			Front:               card.Front,
			Back:                card.Back,
			Source:              models.SourceAIGenerated,
			EaseFactor:          sm2.DefaultEaseFactor,
			NextReviewDate:      now,
		})
	}

	if acceptedCount > 0 {
		// All accepted cards commit together or not at all.
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			return tx.Model(&models.Profile{}).
				Where("user_id = ?", user.ID).
				UpdateColumns(map[string]any{
					"total_cards_created":         gorm.Expr("total_cards_created + ?", acceptedCount),
					"total_cards_generated_by_ai": gorm.Expr("total_cards_generated_by_ai + ?", acceptedCount),
				}).Error
		})
		if err != nil {
			log.Println("Flashcards bulk insert error:", err)
			utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save flashcards", nil)
			return
		}
	}

	// Bookkeeping after the cards are committed. A failure here leaves the
	// session counts stale but must not retract the created flashcards.
	bookkeeping := db.Model(&session).Updates(map[string]any{
		"accepted_count": acceptedCount,
		"rejected_count": rejectedCount,
	})
	if bookkeeping.Error != nil {
		log.Printf("Session %s count update failed, bookkeeping is stale: %v", session.PublicID, bookkeeping.Error)
	}

	data := make([]models.FlashcardResponse, 0, len(created))
	for i := range created {
		created[i].GenerationSession = &session
		data = append(data, created[i].ToResponse(user.PublicID))
	}

	utils.WriteJSON(w, http.StatusOK, acceptResponse{
		SessionID:     session.PublicID,
		AcceptedCount: acceptedCount,
		RejectedCount: rejectedCount,
		Flashcards:    data,
	})
}

func (db *DBHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	params, errs := validation.ParseSessionsListParams(r.URL.Query())
	if errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", errs)
		return
	}

	query := db.Model(&models.GenerationSession{}).Where("user_id = ?", user.ID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Println("Session count query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch generation sessions", nil)
		return
	}

	var sessions []models.GenerationSession
	err := query.
		Order("created_at desc").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&sessions).Error
	if err != nil {
		log.Println("Session list query error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch generation sessions", nil)
		return
	}

	data := make([]models.GenerationSessionResponse, 0, len(sessions))
	for i := range sessions {
		data = append(data, sessions[i].ToResponse(user.PublicID))
	}

	utils.WriteJSON(w, http.StatusOK, sessionsListResponse{
		Data: data,
		Pagination: models.PaginationMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		},
	})
}

func (db *DBHandler) GetSessionByID(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	sessionID := r.PathValue("sessionID")

	var session models.GenerationSession
	err := db.Preload("Flashcards").
		Where("public_id = ? AND user_id = ?", sessionID, user.ID).
		First(&session).Error
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Generation session not found", nil)
		return
	}

	cards := make([]models.SessionCard, 0, len(session.Flashcards))
	for i := range session.Flashcards {
		cards = append(cards, models.SessionCard{
			ID:    session.Flashcards[i].PublicID,
			Front: session.Flashcards[i].Front,
			Back:  session.Flashcards[i].Back,
		})
	}

	utils.WriteJSON(w, http.StatusOK, models.GenerationSessionWithCards{
		GenerationSessionResponse: session.ToResponse(user.PublicID),
		Flashcards:                cards,
	})
}
