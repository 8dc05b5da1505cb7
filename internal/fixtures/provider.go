package fixtures

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
)

// Provider sirve el modo demo sin red: todos los tokens actúan como DemoUserID
// sobre un único store, así que las mutaciones las ven todos los visitantes.
// Los errores del store llegan como *httpclient.HTTPError, igual que desde el API.
type Provider struct {
	store *store.Store
	now   func() time.Time
}

type ProviderOption func(*providerConfig)

type providerConfig struct {
	now  func() time.Time
	opts []store.Option
}

// WithNow fija el reloj del seed y del store.
func WithNow(now func() time.Time) ProviderOption {
	return func(c *providerConfig) { c.now = now }
}

// WithStoreOptions pasa opciones extra al store (p.ej. costo bcrypt en tests).
func WithStoreOptions(opts ...store.Option) ProviderOption {
	return func(c *providerConfig) { c.opts = append(c.opts, opts...) }
}

// NewProvider crea el store y lo carga con Seed.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	cfg := providerConfig{now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	st := store.New(append([]store.Option{store.WithClock(cfg.now)}, cfg.opts...)...)
	p := &Provider{store: st, now: cfg.now}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset vuelve al seed inicial.
func (p *Provider) Reset() error {
	return p.store.Load(Seed(p.now()))
}

// Store expone el store subyacente (el twin puede servir el mismo estado).
func (p *Provider) Store() *store.Store { return p.store }

// ForToken implementa api.Provider. El token se ignora.
func (p *Provider) ForToken(string) *api.Backend {
	d := demo{s: p.store, user: DemoUserID}
	return &api.Backend{
		Workspaces: workspaces{d},
		Emails:     emails{d},
		Configs:    configs{d},
		Analytics:  analytics{d},
		Members:    members{d},
		ApiKeys:    apiKeys{d},
	}
}

var _ api.Provider = (*Provider)(nil)

type demo struct {
	s    *store.Store
	user string
}

func wsPath(wsID string, rest ...string) string {
	p := "/api/v1/workspaces/" + url.PathEscape(wsID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ---- workspaces ----

type workspaces struct{ demo }

func (w workspaces) GetUserWorkspaces(ctx context.Context) ([]dto.Workspace, error) {
	return w.s.Workspaces(ctx, w.user), nil
}

func (w workspaces) CreateWorkspace(ctx context.Context, cmd dto.CreateWorkspaceCommand) (*dto.CreateWorkspaceResponse, error) {
	res, err := w.s.CreateWorkspace(ctx, w.user, cmd)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodPost, "/api/v1/workspaces", err)
	}
	return &res, nil
}

func (w workspaces) UpdateWorkspace(ctx context.Context, wsID string, cmd dto.UpdateWorkspaceCommand) error {
	return apitwin.AsHTTPError(http.MethodPut, wsPath(wsID), w.s.UpdateWorkspace(ctx, w.user, wsID, cmd))
}

func (w workspaces) DeleteWorkspace(ctx context.Context, wsID string) error {
	return apitwin.AsHTTPError(http.MethodDelete, wsPath(wsID), w.s.DeleteWorkspace(ctx, w.user, wsID))
}

// ---- emails ----

type emails struct{ demo }

func (e emails) GetEmailsForWorkspace(ctx context.Context, wsID string, f dto.EmailFilters) (*dto.PaginatedList[dto.EmailDto], error) {
	page, err := e.s.Emails(ctx, e.user, wsID, f)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "emails"), err)
	}
	return &page, nil
}

func (e emails) GetEmailByIdForWorkspace(ctx context.Context, wsID, emailID string) (*dto.EmailDetailsDto, error) {
	em, err := e.s.Email(ctx, e.user, wsID, emailID)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "emails", emailID), err)
	}
	return &em, nil
}

func (e emails) SendEmail(ctx context.Context, wsID string, cmd dto.SendEmailCommand) error {
	_, err := e.s.SendEmail(ctx, e.user, wsID, cmd)
	return apitwin.AsHTTPError(http.MethodPost, wsPath(wsID, "emails", "send-email"), err)
}

// ---- configurations ----

type configs struct{ demo }

func (c configs) GetEmailConfigurations(ctx context.Context, wsID string) ([]dto.EmailConfiguration, error) {
	list, err := c.s.Configurations(ctx, c.user, wsID)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "email-configurations"), err)
	}
	return list, nil
}

func (c configs) GetEmailConfiguration(ctx context.Context, wsID, id string) (*dto.EmailConfiguration, error) {
	cfg, err := c.s.Configuration(ctx, c.user, wsID, id)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "email-configurations", id), err)
	}
	return &cfg, nil
}

func (c configs) CreateEmailConfiguration(ctx context.Context, wsID string, cmd dto.CreateEmailConfigurationCommand) (*dto.CreateEmailConfigurationResponse, error) {
	res, err := c.s.CreateConfiguration(ctx, c.user, wsID, cmd)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodPost, wsPath(wsID, "email-configurations"), err)
	}
	return &res, nil
}

func (c configs) UpdateEmailConfiguration(ctx context.Context, wsID, id string, cmd dto.UpdateEmailConfigurationCommand) error {
	err := c.s.UpdateConfiguration(ctx, c.user, wsID, id, cmd)
	return apitwin.AsHTTPError(http.MethodPut, wsPath(wsID, "email-configurations", id), err)
}

func (c configs) DeleteEmailConfiguration(ctx context.Context, wsID, id string) error {
	err := c.s.DeleteConfiguration(ctx, c.user, wsID, id)
	return apitwin.AsHTTPError(http.MethodDelete, wsPath(wsID, "email-configurations", id), err)
}

// ---- analytics ----

type analytics struct{ demo }

func (a analytics) GetWorkspaceAnalytics(ctx context.Context, wsID string, p *dto.AnalyticsParams) (*dto.GetWorkspaceAnalyticsResponse, error) {
	var params dto.AnalyticsParams
	if p != nil {
		params = *p
	}
	res, err := a.s.Analytics(ctx, a.user, wsID, params)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "analytics"), err)
	}
	return &res, nil
}

// ---- members ----

type members struct{ demo }

func (m members) GetMembers(ctx context.Context, wsID string) ([]dto.WorkspaceMember, error) {
	list, err := m.s.Members(ctx, m.user, wsID)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "members"), err)
	}
	return list, nil
}

func (m members) AddMember(ctx context.Context, wsID, userID string, role dto.MemberRole) (*dto.AddMemberResponse, error) {
	res, err := m.s.AddMember(ctx, m.user, wsID, userID, role)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodPost, wsPath(wsID, "members"), err)
	}
	return &res, nil
}

func (m members) RemoveMember(ctx context.Context, wsID, userID string) error {
	return apitwin.AsHTTPError(http.MethodDelete, wsPath(wsID, "members", userID), m.s.RemoveMember(ctx, m.user, wsID, userID))
}

func (m members) UpdateMemberRole(ctx context.Context, wsID, userID string, role dto.MemberRole) error {
	err := m.s.UpdateMemberRole(ctx, m.user, wsID, userID, role)
	return apitwin.AsHTTPError(http.MethodPut, wsPath(wsID, "members", userID, "role"), err)
}

// ---- api keys ----

type apiKeys struct{ demo }

func (k apiKeys) CreateApiKey(ctx context.Context, wsID, userID, name string) (*dto.CreateApiKeyResponse, error) {
	res, err := k.s.CreateAPIKey(ctx, k.user, wsID, userID, name)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodPost, wsPath(wsID, "users", userID, "apikeys"), err)
	}
	return &res, nil
}

func (k apiKeys) GetApiKeys(ctx context.Context, wsID, userID string) ([]dto.WorkspaceApiKey, error) {
	list, err := k.s.APIKeys(ctx, k.user, wsID, userID)
	if err != nil {
		return nil, apitwin.AsHTTPError(http.MethodGet, wsPath(wsID, "users", userID, "apikeys"), err)
	}
	return list, nil
}

func (k apiKeys) RevokeApiKey(ctx context.Context, wsID, userID, keyID string) error {
	err := k.s.RevokeAPIKey(ctx, k.user, wsID, userID, keyID)
	return apitwin.AsHTTPError(http.MethodDelete, wsPath(wsID, "users", userID, "apikeys", keyID), err)
}
