package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/store"
)

func TestAuthService(t *testing.T) {
	st := store.New()
	alice, err := st.CreateUser(models.CreateUserRequest{Username: "alice"})
	require.NoError(t, err)

	t.Run("should round trip a token", func(t *testing.T) {
		s := NewAuthService(st, "s3cret", time.Hour)
		token, expiresAt, user, err := s.IssueToken(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		userID, err := s.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, userID)
	})

	t.Run("should refuse unknown users", func(t *testing.T) {
		s := NewAuthService(st, "s3cret", time.Hour)
		_, _, _, err := s.IssueToken(999)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		token, _, _, err := NewAuthService(st, "other", time.Hour).IssueToken(alice.ID)
		require.NoError(t, err)

		_, err = NewAuthService(st, "s3cret", time.Hour).ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		s := NewAuthService(st, "s3cret", time.Minute)
		s.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, _, err := s.IssueToken(alice.ID)
		require.NoError(t, err)

		s.now = time.Now
		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
