package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUtil() *JWTUtil {
	return NewJWTUtil(&JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	j := testUtil()

	token, err := j.GenerateAccessToken("prof-1", "barber@shop.test", "shop-1", "ADMIN")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "prof-1", claims.ProfessionalID)
	assert.Equal(t, "barber@shop.test", claims.Email)
	assert.Equal(t, "shop-1", claims.BarbershopID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	j := testUtil()

	refresh, err := j.GenerateRefreshToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)

	_, err = j.ValidateToken(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSigningKey(t *testing.T) {
	j := testUtil()
	other := NewJWTUtil(&JWTConfig{
		SigningKey: "another-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})

	token, err := j.GenerateAccessToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)

	_, err = other.ValidateToken(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	expired := NewJWTUtil(&JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  -time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})

	token, err := expired.GenerateAccessToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)

	_, err = expired.ValidateToken(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	j := testUtil()

	_, err := j.ValidateToken("not-a-jwt", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
