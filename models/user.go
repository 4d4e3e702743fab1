package models

import "gorm.io/gorm"

// User represents an account that can authenticate against the API.
type User struct {
	gorm.Model
	PublicID     string `gorm:"size:100;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`

	Profile    Profile     `gorm:"foreignKey:UserID"`
	Flashcards []Flashcard `gorm:"foreignKey:UserID"`
}

// UserResponse is the wire shape of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{ID: u.PublicID, Email: u.Email}
}

// SessionTokens carries the issued credentials back to the caller.
type SessionTokens struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AuthResponse is the wire shape of a successful signup or login.
type AuthResponse struct {
	User    UserResponse   `json:"user"`
	Session *SessionTokens `json:"session"`
}
