package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/rate"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/smtpcheck"
)

const defaultWorkspaceTTL = 30 * time.Second

// Deps son las dependencias del servidor del dashboard.
type Deps struct {
	// Provider: api.Services contra el API real o el proveedor de fixtures.
	Provider api.Provider

	// Cache respalda la lista de workspaces y los settings locales. nil = memoria.
	Cache          cache.Client
	WorkspaceCache *WorkspaceCache

	// SendLimiter limita envíos por usuario. nil = sin límite.
	SendLimiter rate.Limiter
	Prober      *smtpcheck.Prober

	SessionCookie    string
	CheckTokenExpiry bool

	// MetricsHandler se monta en MetricsPath si no es nil.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter arma las páginas (GET) y acciones bajo /dashboard.
func NewRouter(d Deps) http.Handler {
	if d.Cache == nil {
		d.Cache = cache.NewMemory("dashboard", 0)
	}
	if d.WorkspaceCache == nil {
		d.WorkspaceCache = NewWorkspaceCache(d.Cache, defaultWorkspaceTTL)
	}
	settings := NewSettingsStore(d.Cache)
	c := NewController(
		NewLoaders(d.Provider, d.WorkspaceCache, settings),
		NewActions(d.Provider, d.WorkspaceCache, settings, d.Prober),
	)
	limitSend := mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.SendLimiter, Action: "send_email"})
	limitTest := mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.SendLimiter, Action: "smtp_test"})

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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if err := d.Cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
		httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
	})
	if d.MetricsHandler != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.MetricsHandler)
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, BasePath, http.StatusFound)
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Use(mw.RequireToken(d.SessionCookie, d.CheckTokenExpiry), mw.WithNoStore())

		r.Get("/", c.Root)
		r.Post("/workspaces", c.CreateWorkspace)

		r.Route("/{workspaceId}", func(r chi.Router) {
			r.Get("/", c.Overview)
			r.Put("/", c.UpdateWorkspace)
			r.Delete("/", c.DeleteWorkspace)
			r.Post("/switch", c.SwitchWorkspace)

			r.Get("/"+SectionEmails, c.Emails)
			r.With(limitSend).Post("/"+SectionEmails+"/send", c.SendEmail)
			r.Get("/"+SectionEmails+"/{emailId}", c.EmailDetail)

			r.Get("/"+SectionConfigurations, c.Configurations)
			r.Post("/"+SectionConfigurations, c.CreateConfiguration)
			r.With(limitTest).Post("/"+SectionConfigurations+"/test-connection", c.TestConnection)
			r.With(limitSend).Post("/"+SectionConfigurations+"/send-test-email", c.SendTestEmail)
			r.Put("/"+SectionConfigurations+"/{configId}", c.UpdateConfiguration)
			r.Delete("/"+SectionConfigurations+"/{configId}", c.DeleteConfiguration)

			r.Get("/"+SectionAnalytics, c.Analytics)

			r.Get("/"+SectionSettings, c.Settings)
			r.Put("/"+SectionSettings, c.SaveSettings)

			r.Get("/"+SectionAPIKeys, c.ApiKeys)
			r.Post("/"+SectionAPIKeys, c.CreateApiKey)
			r.Delete("/"+SectionAPIKeys+"/{apiKeyId}", c.RevokeApiKey)

			r.Get("/"+SectionMembers, c.Members)
			r.Post("/"+SectionMembers, c.AddMember)
			r.Delete("/"+SectionMembers+"/{userId}", c.RemoveMember)
			r.Put("/"+SectionMembers+"/{userId}/role", c.UpdateMemberRole)
		})
	})

	return r
}
