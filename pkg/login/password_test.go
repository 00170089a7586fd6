package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("ValidPassword", func(t *testing.T) {
		hashed, err := HashPassword("mySecurePassword")
		assert.NoError(t, err)
		assert.NotEmpty(t, hashed, "Hashed password should not be empty")
		assert.NotEqual(t, "mySecurePassword", hashed)
	})

	t.Run("EmptyPassword", func(t *testing.T) {
		_, err := HashPassword("")
		assert.Error(t, err)
	})

	t.Run("DifferentHashesForSamePassword", func(t *testing.T) {
		first, err := HashPassword("mySecurePassword")
		require.NoError(t, err)
		second, err := HashPassword("mySecurePassword")
		require.NoError(t, err)
		assert.NotEqual(t, first, second, "Bcrypt salts should produce distinct hashes")
	})
}

func TestCheckPasswordHash(t *testing.T) {
	t.Run("CorrectPassword", func(t *testing.T) {
		hashed, err := HashPassword("mySecurePassword")
		require.NoError(t, err)

		match, err := CheckPasswordHash("mySecurePassword", hashed)
		assert.NoError(t, err)
		assert.True(t, match, "The password should match the hashed password")
	})

	t.Run("IncorrectPassword", func(t *testing.T) {
		hashed, err := HashPassword("mySecurePassword")
		require.NoError(t, err)

		match, err := CheckPasswordHash("wrongPassword", hashed)
		assert.NoError(t, err)
		assert.False(t, match, "Incorrect password should not match the hashed password")
	})

	t.Run("EmptyPassword", func(t *testing.T) {
		match, err := CheckPasswordHash("", "some-hash")
		assert.Error(t, err)
		assert.False(t, match)
	})

	t.Run("EmptyHash", func(t *testing.T) {
		match, err := CheckPasswordHash("mySecurePassword", "")
		assert.Error(t, err)
		assert.False(t, match)
	})

	t.Run("CorruptedHash", func(t *testing.T) {
		match, err := CheckPasswordHash("mySecurePassword", "not-a-bcrypt-hash")
		assert.Error(t, err)
		assert.False(t, match, "Corrupted hashed password should not match")
	})
}
