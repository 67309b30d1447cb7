package token

import (
	"errors"
	"testing"
	"time"

	"anoa.com/hostelhub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", "hostelhub", time.Hour)
	userID := uuid.New()

	signed, err := m.Issue(userID)
	require.NoError(t, err)

	got, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("secret", "hostelhub", time.Hour)
	userID := uuid.New()

	t.Run("wrong secret", func(t *testing.T) {
		signed, err := NewManager("other", "hostelhub", time.Hour).Issue(userID)
		require.NoError(t, err)
		_, err = m.Parse(signed)
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		signed, err := NewManager("secret", "someone-else", time.Hour).Issue(userID)
		require.NoError(t, err)
		_, err = m.Parse(signed)
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		past := NewManager("secret", "hostelhub", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, err := past.Issue(userID)
		require.NoError(t, err)
		_, err = m.Parse(signed)
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: userID.String(),
			Issuer:  "hostelhub",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(unsigned)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.Error(t, err)
	})
}
