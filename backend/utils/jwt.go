package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeSession = "session"
	TokenTypeShare   = "share"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken signs an HS256 token carrying the user id and token type.
func GenerateToken(userID uint, typ string, ttl time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"typ":     typ,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and returns the user id and token type.
func ParseToken(tokenString, secret string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, "", ErrInvalidToken
	}
	typ, _ := claims["typ"].(string)

	return uint(userIDFloat), typ, nil
}

// BearerToken strips an optional "Bearer " prefix from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
