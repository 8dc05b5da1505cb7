package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIKey(t *testing.T) {
	plain, prefix, err := NewAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plain, APIKeyScheme+prefix+"."))
	assert.Len(t, prefix, 16)

	got, err := APIKeyPrefix(plain)
	require.NoError(t, err)
	assert.Equal(t, prefix, got)

	other, _, err := NewAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}

func TestAPIKeyPrefix_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"garbage",
		"ek_",
		"ek_0123456789abcdef",          // sin secreto
		"ek_0123456789abcdef.",         // secreto vacío
		"ek_0123.deadbeef",             // prefix corto
		"ek_zzzzzzzzzzzzzzzz.deadbeef", // no hex
		"sk_0123456789abcdef.deadbeef",
	} {
		_, err := APIKeyPrefix(in)
		assert.ErrorIs(t, err, ErrMalformedKey, in)
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(24)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(24)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
	assert.Len(t, SHA256Hex("token"), 64)
}
