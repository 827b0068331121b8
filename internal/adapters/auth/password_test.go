package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	require.NoError(t, hasher.Compare(hash, "secret123"))
	require.Error(t, hasher.Compare(hash, "wrong"))
	require.Error(t, hasher.Compare("not-a-hash", "secret123"))
}
