package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MANGOpali/attendance-backend/internal/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := models.User{ID: 7, Name: "Administrator", Role: models.RoleAdmin}
	token, err := GenerateAccessToken(user, "secret", 8*time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Administrator", claims.Name)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(models.User{ID: 1, Role: models.RoleEmployee}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other")
	assert.Error(t, err)
}

func TestAccessTokenRejectsExpired(t *testing.T) {
	token, err := GenerateAccessToken(models.User{ID: 1, Role: models.RoleEmployee}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := AccessClaims{UserID: 1, Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
}
