package middlewares

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
)

// RequireToken (dashboard) exige un bearer en Authorization o en la cookie de
// sesión y lo deja en el contexto para que el cliente HTTP lo reenvíe. Con
// checkExpiry, un JWT con exp vencido corta con 401 sin llamar al API.
func RequireToken(cookieName string, checkExpiry bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := httpclient.TokenFromRequest(r, cookieName)
			if tok == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			ctx := httpclient.ContextWithToken(r.Context(), tok)
			if c, err := jwtx.Inspect(tok); err == nil {
				if checkExpiry && c.Expired(time.Now()) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				if c.Subject != "" {
					ctx = WithUserID(ctx, c.Subject)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBearer (twin) valida el JWT HS256 y deja el sub en el contexto.
func RequireBearer(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := httpclient.TokenFromRequest(r, "")
			if tok == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			c, err := issuer.Verify(tok)
			if err != nil {
				if stderrors.Is(err, jwtx.ErrExpired) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				errors.WriteError(w, errors.ErrUnauthorized.WithCause(err))
				return
			}
			if c.Subject == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("token sin sub"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), c.Subject)))
		})
	}
}

// APIKeyResolver valida una API key y devuelve el usuario/workspace dueños.
type APIKeyResolver interface {
	ResolveAPIKey(ctx context.Context, plainKey string) (userID, workspaceID string, err error)
}

type ctxWorkspaceKey struct{}

// RequireAPIKey (twin) autentica con X-API-KEY.
func RequireAPIKey(res APIKeyResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-KEY")
			if key == "" {
				errors.WriteError(w, errors.ErrInvalidAPIKey.WithDetail("falta X-API-KEY"))
				return
			}
			userID, workspaceID, err := res.ResolveAPIKey(r.Context(), key)
			if err != nil {
				errors.WriteError(w, errors.ErrInvalidAPIKey.WithCause(err))
				return
			}
			ctx := WithUserID(r.Context(), userID)
			ctx = context.WithValue(ctx, ctxWorkspaceKey{}, workspaceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKeyWorkspace devuelve el workspace de la API key autenticada.
func GetAPIKeyWorkspace(ctx context.Context) string {
	v, _ := ctx.Value(ctxWorkspaceKey{}).(string)
	return v
}
