package jwt

import (
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims es el subconjunto que nos interesa.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time // zero = sin exp
	Raw       map[string]any
}

// Expired reporta si exp ya pasó (con leeway). Sin exp nunca vence.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.Before(now.Add(-leeway))
}

// Inspect decodifica el token sin verificar la firma.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	mc := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, ErrInvalidToken
	}
	return claimsFrom(mc), nil
}

// LooksExpired es el chequeo rápido del dashboard: true solo si el token es un
// JWT legible y su exp ya pasó. Tokens opacos se dejan pasar al API.
func LooksExpired(token string, now time.Time) bool {
	c, err := Inspect(token)
	if err != nil {
		return false
	}
	return c.Expired(now)
}

func claimsFrom(mc jwtv5.MapClaims) Claims {
	c := Claims{Raw: make(map[string]any, len(mc))}
	for k, v := range mc {
		c.Raw[k] = v
	}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}
