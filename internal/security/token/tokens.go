// Package tokens genera y reconoce los secretos opacos: API keys de workspace
// ("ek_<prefix>.<secret>") y tokens de admin.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// APIKeyScheme es el prefijo de toda API key de Email EZ.
const APIKeyScheme = "ek_"

const (
	prefixBytes = 8  // 16 chars hex, indexa la key
	secretBytes = 24 // 48 chars hex
)

var ErrMalformedKey = errors.New("tokens: api key mal formada")

// NewAPIKey devuelve la key plana y su prefix. La plana se muestra una sola vez.
func NewAPIKey() (plain, prefix string, err error) {
	p := make([]byte, prefixBytes)
	sec := make([]byte, secretBytes)
	if _, err = rand.Read(p); err != nil {
		return "", "", err
	}
	if _, err = rand.Read(sec); err != nil {
		return "", "", err
	}
	prefix = hex.EncodeToString(p)
	return APIKeyScheme + prefix + "." + hex.EncodeToString(sec), prefix, nil
}

// APIKeyPrefix valida la forma de plain y devuelve su prefix.
func APIKeyPrefix(plain string) (string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(plain), APIKeyScheme)
	if !ok {
		return "", ErrMalformedKey
	}
	prefix, secret, ok := strings.Cut(rest, ".")
	if !ok || len(prefix) != 2*prefixBytes || secret == "" {
		return "", ErrMalformedKey
	}
	if _, err := hex.DecodeString(prefix); err != nil {
		return "", ErrMalformedKey
	}
	return prefix, nil
}

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Hex devuelve sha256(input) en hexadecimal.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
