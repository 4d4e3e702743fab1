package middleware

import (
	"context"
	"log"
	"net/http"
	"os"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/recallforge-api/auth"
	"github.com/andrewpaige1/recallforge-api/utils"
)

// EnsureValidToken validates bearer tokens on every request but leaves
// rejection of anonymous callers to the per-route user middleware, so the
// public auth endpoints keep working behind it.
func EnsureValidToken() func(next http.Handler) http.Handler {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET_KEY")), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		auth.Issuer,
		[]string{auth.Audience},
	)
	if err != nil {
		log.Fatalf("Failed to set up the JWT validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Encountered error while validating JWT: %v", err)
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
	}

	m := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithCredentialsOptional(true),
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.CookieTokenExtractor("auth_token"),
		)),
	)

	return m.CheckJWT
}
