package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Str0ng!Pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)

	assert.True(t, VerifyPassword("Str0ng!Pass", hash))
	assert.False(t, VerifyPassword("str0ng!Pass", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestVerifyPassword_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"", "plain", "$2a$", "$2a$99$abcdefghijklmnopqrstuv"} {
		assert.NotPanics(t, func() {
			assert.False(t, VerifyPassword("anything", hash), "hash %q", hash)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, NeedsRehash(hash, bcrypt.MinCost))
	assert.True(t, NeedsRehash(hash, bcrypt.MinCost+1))
	assert.True(t, NeedsRehash("garbage", bcrypt.MinCost))
}
