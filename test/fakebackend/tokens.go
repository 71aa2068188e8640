package fakebackend

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer issues and validates the HS256 access tokens handed out by the fake backend
type tokenIssuer struct {
	secret string
	expiry time.Duration
}

func newTokenIssuer(secret string, expiry time.Duration) *tokenIssuer {
	return &tokenIssuer{
		secret: secret,
		expiry: expiry,
	}
}

// Generate creates an access token carrying userID as subject and role
func (ti *tokenIssuer) Generate(userID, role string) (string, error) {
	return ti.generate(userID, role, time.Now().Add(ti.expiry))
}

// GenerateExpired creates a token whose exp is already in the past
func (ti *tokenIssuer) GenerateExpired(userID, role string) (string, error) {
	return ti.generate(userID, role, time.Now().Add(-time.Hour))
}

func (ti *tokenIssuer) generate(userID, role string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ti.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// Validate validates an access token and returns the user ID it was issued for
func (ti *tokenIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ti.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("token is invalid")
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", fmt.Errorf("subject not found in token")
	}

	return userID, nil
}
