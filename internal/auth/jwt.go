// Package auth issues and validates the bearer tokens that identify the
// current participant. A token's subject is the participant ID.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/swisscoin/internal/models"
)

const (
	issuer = "swisscoin"

	// clockSkew is tolerated on exp and nbf.
	clockSkew = 30 * time.Second
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims are the token claims of a participant session.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ParticipantID is the participant the token was issued to.
func (c *Claims) ParticipantID() string {
	return c.Subject
}

// JWTManager signs and checks HS256 participant tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// Generate issues a token naming p as the current participant.
func (m *JWTManager) Generate(p *models.Participant) (string, error) {
	if p == nil || p.ID == "" {
		return "", errors.New("cannot issue a token without a participant id")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Name: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the claims of a well-formed, unexpired token. Every
// failure wraps ErrInvalidToken.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	var claims Claims
	if _, err := m.parser.ParseWithClaims(tokenString, &claims, m.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ParticipantID() == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return &claims, nil
}

func (m *JWTManager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}
