// Package apitwin es un doble del API de Email EZ para desarrollo, demos y
// tests de contrato: mismas rutas, mismos DTOs y mismos códigos de estado,
// respaldado por el store en memoria.
package apitwin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
)

// IssuerName es el "iss" de los tokens que firma el twin (y el CLI en dev).
const IssuerName = "emailez-twin"

// Deps son las dependencias del router del twin.
type Deps struct {
	Store  *store.Store
	Issuer *jwtx.Issuer

	// Seed se recarga en POST /admin/reset. nil = reset a vacío.
	Seed         *store.State
	SnapshotPath string

	// EnableAdmin monta /admin/* (token, reset, state, snapshot).
	EnableAdmin bool
	AdminToken  string

	// MetricsHandler se monta en MetricsPath si no es nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter arma las rutas /api/v1/* del API y, opcionalmente, /admin/*.
func NewRouter(d Deps) http.Handler {
	c := NewController(d.Store)
	admin := NewAdminController(d.Store, d.Issuer, d.Seed, d.SnapshotPath)

	r := chi.NewRouter()
	r.Use(mw.Funcs(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
	)...)
	r.Use(metrics.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.MetricsHandler != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.MetricsHandler)
	}

	r.Get("/admin/health", admin.Health)
	if d.EnableAdmin {
		r.Group(func(r chi.Router) {
			r.Use(requireAdminToken(d.AdminToken))
			r.Post("/admin/token", admin.Token)
			r.Post("/admin/reset", admin.Reset)
			r.Get("/admin/state", admin.GetState)
			r.Put("/admin/state", admin.PutState)
			r.Post("/admin/snapshot", admin.Snapshot)
		})
	}

	// Envío con API key: sin bearer, el workspace sale de la key.
	r.With(mw.RequireAPIKey(d.Store)).Post("/api/v1/send-email", c.SendEmailWithAPIKey)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireBearer(d.Issuer), ensureUser(d.Store))

		r.Get("/api/v1/workspaces", c.ListWorkspaces)
		r.Post("/api/v1/workspaces", c.CreateWorkspace)

		r.Route("/api/v1/workspaces/{workspaceId}", func(r chi.Router) {
			r.Get("/", c.GetWorkspace)
			r.Put("/", c.UpdateWorkspace)
			r.Delete("/", c.DeleteWorkspace)

			r.Get("/emails", c.ListEmails)
			r.Post("/emails/send-email", c.SendEmail)
			r.Get("/emails/{emailId}", c.GetEmail)

			r.Get("/email-configurations", c.ListConfigurations)
			r.Post("/email-configurations", c.CreateConfiguration)
			r.Get("/email-configurations/{configId}", c.GetConfiguration)
			r.Put("/email-configurations/{configId}", c.UpdateConfiguration)
			r.Delete("/email-configurations/{configId}", c.DeleteConfiguration)

			r.Get("/analytics", c.GetAnalytics)

			r.Get("/members", c.ListMembers)
			r.Post("/members", c.AddMember)
			r.Delete("/members/{userId}", c.RemoveMember)
			r.Put("/members/{userId}/role", c.UpdateMemberRole)

			r.Get("/users/{userId}/apikeys", c.ListAPIKeys)
			r.Post("/users/{userId}/apikeys", c.CreateAPIKey)
			r.Delete("/users/{userId}/apikeys/{apiKeyId}", c.RevokeAPIKey)
		})
	})

	return r
}

// ensureUser registra el sub del token como usuario conocido.
func ensureUser(s *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.EnsureUser(mw.GetUserID(r.Context()), "")
			next.ServeHTTP(w, r)
		})
	}
}
