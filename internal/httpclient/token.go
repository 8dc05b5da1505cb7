package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// DefaultSessionCookie es la cookie de sesión que deja el proveedor de identidad.
const DefaultSessionCookie = "__session"

// TokenSource provee el bearer token para un request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapta una función a TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken es un TokenSource fijo. Vacío = sin Authorization.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

type tokenCtxKey struct{}

// ContextWithToken asocia un bearer token al contexto. Tiene prioridad sobre
// el TokenSource del cliente (pero no sobre RequestOptions.Token).
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext devuelve el token cargado con ContextWithToken.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	t, _ := ctx.Value(tokenCtxKey{}).(string)
	return t
}

// TokenFromCookieHeader busca la cookie name en un header Cookie crudo y la
// decodifica. Acepta JWT crudo, JWT URL-encoded o un JSON (crudo o URL-encoded)
// con "token", "access_token" o "jwt". Devuelve "" si no hay nada usable.
func TokenFromCookieHeader(cookieHeader, name string) string {
	if name == "" {
		name = DefaultSessionCookie
	}
	for _, part := range strings.Split(cookieHeader, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(k) != name {
			continue
		}
		if t := decodeSessionValue(strings.TrimSpace(v)); t != "" {
			return t
		}
	}
	return ""
}

// TokenFromRequest mira primero Authorization: Bearer y luego la cookie de sesión.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		if t := strings.TrimSpace(ah[7:]); t != "" {
			return t
		}
	}
	return TokenFromCookieHeader(strings.Join(r.Header.Values("Cookie"), "; "), cookieName)
}

func decodeSessionValue(raw string) string {
	v := raw
	// PathUnescape no convierte '+' en espacio (los JWT no lo usan, pero igual).
	if dec, err := url.PathUnescape(raw); err == nil {
		v = dec
	}
	v = strings.Trim(strings.TrimSpace(v), `"`)
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "{") {
		var blob map[string]any
		if err := json.Unmarshal([]byte(v), &blob); err != nil {
			return ""
		}
		for _, k := range []string{"token", "access_token", "jwt"} {
			if s, ok := blob[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	return v
}
