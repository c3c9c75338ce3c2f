package identity

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("k")
	now := time.Date(2026, 9, 1, 9, 0, 0, 500, time.UTC)
	user := models.User{ID: "u-1", Email: "user@x.edu"}

	tok, exp, err := GenerateToken(user, "jti-1", secret, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Second).Add(time.Hour), exp)

	claims, err := ParseToken(tok, secret, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, "user@x.edu", claims.Email)
}

func TestParseToken_Errors(t *testing.T) {
	secret := []byte("k")
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	tok, _, err := GenerateToken(models.User{ID: "u"}, "j", secret, now, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	_, err = ParseToken(tok, []byte("other"), now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = ParseToken("a.b.c", secret, now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	noID, _, err := GenerateToken(models.User{ID: "u"}, "", secret, now, time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(noID, secret, now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
