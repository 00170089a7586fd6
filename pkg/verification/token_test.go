package verification

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("Entropy", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)

		raw, err := base64.URLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, tokenBytes)
	})

	t.Run("Unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, err := GenerateToken()
			require.NoError(t, err)
			assert.False(t, seen[token], "duplicate token generated")
			seen[token] = true
		}
	})
}
