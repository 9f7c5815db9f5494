package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T, now *time.Time) AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("quadra123"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(string(hash), "test-secret", func() time.Time { return *now })
}

func TestLogin_CorrectPassword(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	auth := newAuthFixture(t, &now)

	token, expiresAt, err := auth.Login("quadra123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, now.Add(SessionDuration), expiresAt)

	require.NoError(t, auth.Validate(token))
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	auth := newAuthFixture(t, &now)

	_, _, err := auth.Login("senha-errada")
	require.ErrorIs(t, err, ErrInvalidAdminPassword)
}

func TestValidate_ExpiredSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	auth := newAuthFixture(t, &now)

	token, _, err := auth.Login("quadra123")
	require.NoError(t, err)

	// Just inside the window.
	now = now.Add(SessionDuration - time.Minute)
	require.NoError(t, auth.Validate(token))

	// Past it.
	now = now.Add(2 * time.Minute)
	require.ErrorIs(t, auth.Validate(token), ErrSessionExpired)
}

func TestValidate_GarbageToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	auth := newAuthFixture(t, &now)

	require.ErrorIs(t, auth.Validate("not.a.token"), ErrSessionInvalid)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	auth := newAuthFixture(t, &now)

	hash, err := bcrypt.GenerateFromPassword([]byte("quadra123"), bcrypt.MinCost)
	require.NoError(t, err)
	other := NewAuthService(string(hash), "other-secret", func() time.Time { return now })

	token, _, err := other.Login("quadra123")
	require.NoError(t, err)

	require.ErrorIs(t, auth.Validate(token), ErrSessionInvalid)
}
