package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(seed byte) []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return raw
}

func TestSealOpen_RoundTrip(t *testing.T) {
	b, err := New(testKey(1))
	require.NoError(t, err)

	msg := "app-password ✓ secreto"
	ct, err := b.Seal(msg)
	require.NoError(t, err)
	assert.NotContains(t, ct, msg)

	pt, err := b.Open(ct)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)

	// nonce distinto en cada Seal
	ct2, err := b.Seal(msg)
	require.NoError(t, err)
	assert.NotEqual(t, ct, ct2)
}

func TestSealOpen_EmptyPassesThrough(t *testing.T) {
	b, err := NewRandom()
	require.NoError(t, err)
	ct, err := b.Seal("")
	require.NoError(t, err)
	assert.Empty(t, ct)
	pt, err := b.Open("")
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestOpen_DetectsTamper(t *testing.T) {
	b, err := New(testKey(200))
	require.NoError(t, err)
	ct, err := b.Seal("top secret")
	require.NoError(t, err)

	nonce, body, ok := strings.Cut(ct, "|")
	require.True(t, ok)
	bs, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err)
	bs[0] ^= 0x01
	_, err = b.Open(nonce + "|" + base64.StdEncoding.EncodeToString(bs))
	require.Error(t, err)

	_, err = b.Open("sin-separador")
	require.ErrorIs(t, err, ErrFormat)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	a, err := New(testKey(1))
	require.NoError(t, err)
	other, err := New(testKey(2))
	require.NoError(t, err)

	ct, err := a.Seal("x")
	require.NoError(t, err)
	_, err = other.Open(ct)
	require.Error(t, err)
}

func TestParseKey(t *testing.T) {
	raw := testKey(7)
	cases := map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(raw),
		"base64 raw": base64.RawStdEncoding.EncodeToString(raw),
		"hex":        hex.EncodeToString(raw),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			k, err := ParseKey(in)
			require.NoError(t, err)
			assert.Equal(t, raw, k)
		})
	}

	k, err := ParseKey("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Len(t, k, 32)

	_, err = ParseKey("corta")
	require.Error(t, err)
	_, err = New([]byte("corta"))
	require.Error(t, err)
}
