package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chatbot-lab"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens with a shared secret.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return TokenManager{secret: []byte(secret)}
}

// Enabled is false when no secret is configured.
func (m TokenManager) Enabled() bool {
	return len(m.secret) > 0
}

// Generate creates a signed JWT for subject, valid for ttl.
func (m TokenManager) Generate(subject string, roles []string, ttl time.Duration) (string, error) {
	if !m.Enabled() {
		return "", fmt.Errorf("no signing secret configured")
	}
	now := time.Now()
	claims := &CustomClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses a JWT string and checks its signature, algorithm, issuer and expiration.
func (m TokenManager) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
