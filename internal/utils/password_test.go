package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("open sesame", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "open sesame", hash)

	assert.True(t, VerifyPassword(hash, "open sesame"))
	assert.False(t, VerifyPassword(hash, "open sesam"))
	assert.False(t, VerifyPassword("not a bcrypt hash", "open sesame"))
}
