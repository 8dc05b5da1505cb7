// Package jwt cubre los dos usos de JWT del proyecto:
//
//   - Inspect: lee sub/exp de un bearer SIN verificar firma. El dashboard lo usa
//     para cortar temprano un token vencido; la verificación real es del API.
//   - Issuer: firma/verifica HS256. Lo usan el twin del API y el CLI (tokens dev).
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrExpired       = errors.New("expired")
	ErrMissingSecret = errors.New("jwt: secret vacío")
)

// leeway tolerado en exp/nbf.
const leeway = 30 * time.Second

// Issuer firma tokens HS256 con un secreto compartido.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration
}

func NewIssuer(iss, secret string) *Issuer {
	return &Issuer{
		Iss:       iss,
		Secret:    []byte(secret),
		AccessTTL: time.Hour,
	}
}

// Sign emite un token con sub=userID. ttl <= 0 usa AccessTTL.
func (i *Issuer) Sign(userID string, ttl time.Duration, extra map[string]any) (string, time.Time, error) {
	if len(i.Secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = i.AccessTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwtv5.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if i.Iss != "" {
		claims["iss"] = i.Iss
	}
	for k, v := range extra {
		if _, reserved := claims[k]; !reserved {
			claims[k] = v
		}
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify valida firma HS256, iss (si está configurado) y exp/nbf con leeway.
func (i *Issuer) Verify(token string) (Claims, error) {
	if len(i.Secret) == 0 {
		return Claims{}, ErrMissingSecret
	}
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(leeway),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}
	tok, err := jwtv5.Parse(strings.TrimSpace(token), func(*jwtv5.Token) (any, error) {
		return i.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claimsFrom(mc), nil
}
