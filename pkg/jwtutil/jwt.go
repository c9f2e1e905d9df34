package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token kinds carried in the token_type claim. Access tokens are
// stateless; refresh tokens are additionally checked against the cache
// by the token service.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned when a token fails signature, expiry or
// token-type validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthClaims represents the JWT claims for an authenticated professional
type AuthClaims struct {
	ProfessionalID string `json:"id"`
	Email          string `json:"email"`
	BarbershopID   string `json:"tenant_id"`
	Role           string `json:"role"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// GenerateAccessToken creates a short-lived access token
func (j *JWTUtil) GenerateAccessToken(professionalID, email, barbershopID, role string) (string, error) {
	return j.generate(professionalID, email, barbershopID, role, TokenTypeAccess, j.config.AccessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token
func (j *JWTUtil) GenerateRefreshToken(professionalID, email, barbershopID, role string) (string, error) {
	return j.generate(professionalID, email, barbershopID, role, TokenTypeRefresh, j.config.RefreshTTL)
}

func (j *JWTUtil) generate(professionalID, email, barbershopID, role, tokenType string, ttl time.Duration) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := AuthClaims{
		ProfessionalID: professionalID,
		Email:          email,
		BarbershopID:   barbershopID,
		Role:           role,
		TokenType:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses a token, checking that it is of
// the expected kind.
func (j *JWTUtil) ValidateToken(tokenString, expectedType string) (*AuthClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
