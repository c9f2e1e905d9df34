// Package token manages the access/refresh token lifecycle. Access
// tokens are stateless; refresh tokens are additionally pinned to a
// cache entry keyed by (professional, barbershop), which is what makes
// logout and revocation effective before the token's own expiry.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned when a refresh token fails signature,
// expiry or tenant validation.
var ErrInvalidToken = errors.New("invalid refresh token")

// ErrRevoked is returned when a structurally valid refresh token has no
// matching entry in the cache.
var ErrRevoked = errors.New("refresh token expired or revoked")

const refreshKeyPrefix = "barbershop:refresh:"

// storedToken is the cache payload for a refresh token, the signed
// value plus issue metadata.
type storedToken struct {
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Pair is an issued access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service issues, refreshes and revokes tokens.
type Service struct {
	jwt        *jwtutil.JWTUtil
	cache      cache.Cache
	refreshTTL time.Duration
	log        *zap.Logger
}

// NewService creates a token service.
func NewService(jwt *jwtutil.JWTUtil, c cache.Cache, refreshTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		jwt:        jwt,
		cache:      c,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func refreshKey(professionalID, barbershopID string) string {
	return refreshKeyPrefix + professionalID + ":" + barbershopID
}

// IssuePair creates an access/refresh token pair for the professional
// and stores the refresh token in the cache. A cache write failure
// fails the issuance: an unstored refresh token could never be
// revoked.
func (s *Service) IssuePair(ctx context.Context, professional *model.Professional, barbershopID string) (*Pair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(professional.ID, professional.Email, barbershopID, professional.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(professional.ID, professional.Email, barbershopID, professional.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	stored, err := json.Marshal(storedToken{
		Token:     refreshToken,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh token entry: %w", err)
	}

	if err := s.cache.Set(ctx, refreshKey(professional.ID, barbershopID), string(stored), s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates the presented refresh token against its signature,
// the request's tenant and the stored cache entry, then issues a new
// access token. The refresh token itself is not rotated. Cache
// unavailability fails the refresh rather than letting a possibly
// revoked token through.
func (s *Service) Refresh(ctx context.Context, presented, barbershopID string) (string, error) {
	claims, err := s.jwt.ValidateToken(presented, jwtutil.TokenTypeRefresh)
	if err != nil {
		return "", ErrInvalidToken
	}

	// Reject cross-tenant replay even when the signature is valid.
	if claims.BarbershopID != barbershopID {
		return "", ErrInvalidToken
	}

	value, err := s.cache.Get(ctx, refreshKey(claims.ProfessionalID, barbershopID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", ErrRevoked
	}
	if err != nil {
		s.log.Error("refresh token lookup failed",
			zap.String("professional_id", claims.ProfessionalID),
			zap.Error(err))
		return "", fmt.Errorf("failed to look up refresh token: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return "", fmt.Errorf("failed to unmarshal refresh token entry: %w", err)
	}

	// The stored value must match the presented token exactly; a newer
	// issuance supersedes any older token for the same pair.
	if stored.Token != presented {
		return "", ErrRevoked
	}

	accessToken, err := s.jwt.GenerateAccessToken(claims.ProfessionalID, claims.Email, barbershopID, claims.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// Revoke deletes the stored refresh token for (professional,
// barbershop). Used by logout.
func (s *Service) Revoke(ctx context.Context, professionalID, barbershopID string) error {
	return s.cache.Delete(ctx, refreshKey(professionalID, barbershopID))
}

// RevokeAll deletes every refresh token entry for the professional,
// across all tenants. Used when credentials are invalidated wholesale.
func (s *Service) RevokeAll(ctx context.Context, professionalID string) error {
	return s.cache.DeletePrefix(ctx, refreshKeyPrefix+professionalID+":")
}
