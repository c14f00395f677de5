package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/erp/store/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with defaults", func(t *testing.T) {
		user, err := NewUser("testuser", "TestUser@Example.com", "hashed_password_here")
		require.NoError(t, err)

		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "testuser@example.com", user.Email)
		assert.Equal(t, "hashed_password_here", user.PasswordHash)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsAdmin)
		assert.Nil(t, user.AdditionalNotes)
		assert.True(t, user.IsNew())
	})

	t.Run("fails with empty username", func(t *testing.T) {
		_, err := NewUser("", "a@example.com", "hash")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "username is required")
	})

	t.Run("fails with username longer than 50", func(t *testing.T) {
		_, err := NewUser(strings.Repeat("u", 51), "a@example.com", "hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 50")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewUser("someone", "not-an-email", "hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("fails with empty password hash", func(t *testing.T) {
		_, err := NewUser("someone", "a@example.com", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password_hash is required")
	})
}

func TestUser_SetPassword(t *testing.T) {
	user, err := NewUser("hasher", "hasher@example.com", "placeholder")
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("s3cret-pass"))
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	assert.Error(t, user.SetPassword(""))
	assert.Error(t, user.SetPassword(strings.Repeat("p", 73)))
}

func TestUser_Flags(t *testing.T) {
	user, err := NewUser("adminuser", "admin@example.com", "admin_hash")
	require.NoError(t, err)

	user.SetAdmin(true)
	assert.True(t, user.IsAdmin)

	user.Deactivate()
	assert.False(t, user.IsActive)

	user.Activate()
	assert.True(t, user.IsActive)

	user.SetNotes("VIP user")
	require.NotNil(t, user.AdditionalNotes)
	assert.Equal(t, "VIP user", *user.AdditionalNotes)

	user.SetNotes("")
	assert.Nil(t, user.AdditionalNotes)
}

func TestUser_SetEmail(t *testing.T) {
	user, err := NewUser("mailer", "mailer@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, user.SetEmail("New@Example.com"))
	assert.Equal(t, "new@example.com", user.Email)

	err = user.SetEmail("broken")
	require.Error(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}
