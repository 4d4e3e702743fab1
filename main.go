package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/andrewpaige1/recallforge-api/ai"
	"github.com/andrewpaige1/recallforge-api/config"
	"github.com/andrewpaige1/recallforge-api/handlers"
	"github.com/andrewpaige1/recallforge-api/middleware"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	// Initialize database connection
	config.Connect()
	authMiddleware := middleware.EnsureValidToken()

	aiClient, err := ai.New()
	if err != nil {
		// The API still serves everything except /generate without a key.
		log.Printf("Warning: AI generation disabled: %v", err)
	}

	h := &handlers.DBHandler{DB: config.Database, AI: aiClient}
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", h.Signup)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/user", middleware.RequireUser(h.CurrentUser))

	// Profile
	mux.HandleFunc("GET /profile", middleware.RequireUser(h.GetProfile))
	mux.HandleFunc("PATCH /profile", middleware.RequireUser(h.UpdateProfile))
	mux.HandleFunc("GET /profile/stats", middleware.RequireUser(h.GetStats))

	// Flashcards
	mux.HandleFunc("GET /flashcards", middleware.RequireUser(h.ListFlashcards))
	mux.HandleFunc("POST /flashcards", middleware.RequireUser(h.CreateFlashcard))
	mux.HandleFunc("GET /flashcards/due", middleware.RequireUser(h.GetDueFlashcards))
	mux.HandleFunc("GET /flashcards/{flashcardID}", middleware.RequireUser(h.GetFlashcardByID))
	mux.HandleFunc("PATCH /flashcards/{flashcardID}", middleware.RequireUser(h.UpdateFlashcardByID))
	mux.HandleFunc("DELETE /flashcards/{flashcardID}", middleware.RequireUser(h.DeleteFlashcardByID))
	mux.HandleFunc("POST /flashcards/{flashcardID}/review", middleware.RequireUser(h.ReviewFlashcard))

	// AI generation
	mux.HandleFunc("POST /generate", middleware.RequireUser(h.GenerateFlashcards))
	mux.HandleFunc("POST /generate/{sessionID}/accept", middleware.RequireUser(h.AcceptCards))
	mux.HandleFunc("GET /sessions", middleware.RequireUser(h.ListSessions))
	mux.HandleFunc("GET /sessions/{sessionID}", middleware.RequireUser(h.GetSessionByID))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.Env.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	// Server configuration

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // fallback port for local development
	}
	serverAddr := "0.0.0.0:" + port

	http.ListenAndServe(serverAddr, corsHandler)
}
