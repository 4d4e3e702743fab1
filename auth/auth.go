package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer and Audience identify tokens minted by this API. The request
// middleware validates both.
const (
	Issuer   = "https://recallforge-api"
	Audience = "recallforge-api"
)

// TokenLifetime is how long an access token stays valid.
const TokenLifetime = 24 * time.Hour

// CreateToken issues an HS256 access token for the given user public ID.
func CreateToken(userID string) (string, error) {
	secretKeyStr := os.Getenv("JWT_SECRET_KEY")
	if secretKeyStr == "" {
		return "", fmt.Errorf("auth: JWT_SECRET_KEY not set")
	}

	secretKey := []byte(secretKeyStr)
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub": userID,
			"iss": Issuer,
			"aud": Audience,
			"iat": now.Unix(),
			"exp": now.Add(TokenLifetime).Unix(),
		})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
