package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: "user-123", Name: "Dana", Email: "dana@example.com"}
}

func TestGenerateAndParse_Roundtrip(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	tok, err := GenerateToken(testUser(), secret, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, "Dana", claims.Name)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	t.Parallel()

	_, err := GenerateToken(testUser(), nil, time.Hour)
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(testUser(), secret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(testUser(), []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	require.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	require.Error(t, err)
}
