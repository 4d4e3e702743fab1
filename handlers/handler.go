package handlers

import (
	"gorm.io/gorm"

	"github.com/andrewpaige1/recallforge-api/ai"
)

// DBHandler carries the shared dependencies of every route handler.
type DBHandler struct {
	*gorm.DB
	AI *ai.Client
}
