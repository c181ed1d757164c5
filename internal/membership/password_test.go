// internal/membership/password_test.go
package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := hashPassword("CorrectHorseBatteryStaple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyPassword("CorrectHorseBatteryStaple", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong-password", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	firstHash, firstSalt, err := hashPassword("same-password")
	require.NoError(t, err)
	secondHash, secondSalt, err := hashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, firstSalt, secondSalt)
	assert.NotEqual(t, firstHash, secondHash)
}

func TestVerifyPasswordRejectsMalformedEncoding(t *testing.T) {
	_, err := verifyPassword("anything", "not-base64!!!", "also-not-base64!!!")
	assert.Error(t, err)
}
