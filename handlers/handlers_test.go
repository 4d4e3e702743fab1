package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/recallforge-api/models"
	"github.com/andrewpaige1/recallforge-api/utils"
)

func newTestHandler(t *testing.T) *DBHandler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Flashcard{},
		&models.GenerationSession{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return &DBHandler{DB: db}
}

func createTestUser(t *testing.T, db *DBHandler, email string) *models.User {
	t.Helper()

	userID, _ := gonanoid.New()
	profileID, _ := gonanoid.New()

	user := models.User{
		PublicID:     userID,
		Email:        email,
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	profile := models.Profile{PublicID: profileID, UserID: user.ID}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create test profile: %v", err)
	}
	return &user
}

// doJSON runs a handler directly with an optional authenticated user and
// path values, the way the router would.
func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any, user *models.User, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(utils.WithUser(req.Context(), user))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]utils.ErrorBody](t, rr)
	return body["error"].Code
}
