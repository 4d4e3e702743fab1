package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/recallforge-api/auth"
	"github.com/andrewpaige1/recallforge-api/config"
	"github.com/andrewpaige1/recallforge-api/models"
	"github.com/andrewpaige1/recallforge-api/utils"
	"github.com/andrewpaige1/recallforge-api/validation"
)

func setAuthCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		Domain:   config.Env.Domain,
		HttpOnly: true,
		Secure:   config.Env.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (db *DBHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req validation.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid signup data", errs)
		return
	}

	// Duplicate accounts are a conflict, not a validation problem.
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteError(w, http.StatusConflict, "CONFLICT", "An account with this email already exists", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
		return
	}

	userID, err := gonanoid.New()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate ID", nil)
		return
	}
	profileID, err := gonanoid.New()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate ID", nil)
		return
	}

	user := models.User{
		PublicID:     userID,
		Email:        req.Email,
		PasswordHash: hash,
	}

	// User and profile are created together; a user without a profile is
	// not a valid account in this system.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			PublicID: profileID,
			UserID:   user.ID,
		}
		if req.DisplayName != "" {
			profile.DisplayName = &req.DisplayName
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		log.Println("Signup transaction error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
		return
	}

	tokenString, err := auth.CreateToken(user.PublicID)
	if err != nil {
		log.Println("Token generation error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token", nil)
		return
	}

	expiresIn := int(auth.TokenLifetime.Seconds())
	setAuthCookie(w, tokenString, expiresIn)
	utils.WriteJSON(w, http.StatusCreated, models.AuthResponse{
		User:    user.ToResponse(),
		Session: &models.SessionTokens{AccessToken: tokenString, ExpiresIn: expiresIn},
	})
}

func (db *DBHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not decode request", nil)
		return
	}
	if errs := req.Validate(); errs.Any() {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid login data", errs)
		return
	}

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		return
	}

	tokenString, err := auth.CreateToken(user.PublicID)
	if err != nil {
		log.Println("Token generation error:", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token", nil)
		return
	}

	expiresIn := int(auth.TokenLifetime.Seconds())
	setAuthCookie(w, tokenString, expiresIn)
	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{
		User:    user.ToResponse(),
		Session: &models.SessionTokens{AccessToken: tokenString, ExpiresIn: expiresIn},
	})
}

func (db *DBHandler) Logout(w http.ResponseWriter, r *http.Request) {
	setAuthCookie(w, "", -1)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (db *DBHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		log.Println("Profile lookup error:", err)
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    user.ToResponse(),
		"profile": profile.ToResponse(user.PublicID),
	})
}
