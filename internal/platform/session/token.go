package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer identifies tokens minted by this server.
const TokenIssuer = "viatra"

// ErrInvalidToken is returned when a bearer token fails signature or claim
// validation.
var ErrInvalidToken = errors.New("invalid session token")

// TokenClaims are the JWT claims carried by a session bearer token. The
// session ID travels in the "sid" claim.
type TokenClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// MintToken signs a bearer token addressing the given session.
func MintToken(secret []byte, sessionID string, ttl time.Duration) (string, error) {
	if !ValidID(sessionID) {
		return "", fmt.Errorf("invalid session identifier: %q", sessionID)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := time.Now().UTC()
	claims := &TokenClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a bearer token and returns the session ID it
// addresses.
func ParseToken(secret []byte, tokenString string) (string, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(TokenIssuer),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if !ValidID(claims.SessionID) {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
