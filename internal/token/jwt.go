package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated principal's security id.
type Claims struct {
	jwt.RegisteredClaims
	SecurityID string `json:"security_id"`
}

// JWT issues and validates symmetric HMAC access tokens for API
// clients that cannot hold a session cookie.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

const defaultTTL = 15 * time.Minute

func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, ttl: defaultTTL}
}

// Generate creates an access token for the given security id.
func (j *JWT) Generate(securityID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   securityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		SecurityID: securityID,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// Parse validates a token and extracts the security id.
func (j *JWT) Parse(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("access token is invalid")
	}
	if claims.SecurityID == "" {
		return "", fmt.Errorf("access token missing security id")
	}
	return claims.SecurityID, nil
}
