package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("station-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "station-secret", hash)

	assert.True(t, VerifyPassword(hash, "station-secret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
