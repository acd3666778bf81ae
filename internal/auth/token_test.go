package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAdminToken(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		hash, err := HashAdminToken("s3cret-token")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))

		assert.NoError(t, CheckAdminToken("s3cret-token", hash))
		assert.ErrorIs(t, CheckAdminToken("wrong-token", hash), ErrInvalidToken)
	})

	t.Run("rejects tokens over the bcrypt limit", func(t *testing.T) {
		_, err := HashAdminToken(strings.Repeat("a", 73))
		assert.Error(t, err)
	})
}

func TestCheckAdminToken_MalformedHash(t *testing.T) {
	err := CheckAdminToken("anything", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateVisitorID(t *testing.T) {
	first, err := GenerateVisitorID()
	require.NoError(t, err)
	second, err := GenerateVisitorID()
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
}

func TestGenerateCSRFSecret(t *testing.T) {
	secret, err := GenerateCSRFSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 64)
}
