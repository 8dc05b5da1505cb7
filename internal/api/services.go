// Package api agrupa los módulos de recursos del API de Email EZ. Cada módulo
// envuelve su propia copia del *httpclient.Client: no hay singleton compartido,
// así que SetAuthToken en un módulo no afecta a los demás.
package api

import (
	"context"
	"net/url"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

const apiPrefix = "/api/v1"

// =================================================================================
// CONTRATOS
// =================================================================================

type WorkspaceService interface {
	GetUserWorkspaces(ctx context.Context) ([]dto.Workspace, error)
	CreateWorkspace(ctx context.Context, cmd dto.CreateWorkspaceCommand) (*dto.CreateWorkspaceResponse, error)
	UpdateWorkspace(ctx context.Context, workspaceID string, cmd dto.UpdateWorkspaceCommand) error
	DeleteWorkspace(ctx context.Context, workspaceID string) error
}

type EmailService interface {
	GetEmailsForWorkspace(ctx context.Context, workspaceID string, f dto.EmailFilters) (*dto.PaginatedList[dto.EmailDto], error)
	GetEmailByIdForWorkspace(ctx context.Context, workspaceID, emailID string) (*dto.EmailDetailsDto, error)
	SendEmail(ctx context.Context, workspaceID string, cmd dto.SendEmailCommand) error
}

type EmailConfigService interface {
	GetEmailConfigurations(ctx context.Context, workspaceID string) ([]dto.EmailConfiguration, error)
	GetEmailConfiguration(ctx context.Context, workspaceID, id string) (*dto.EmailConfiguration, error)
	CreateEmailConfiguration(ctx context.Context, workspaceID string, cmd dto.CreateEmailConfigurationCommand) (*dto.CreateEmailConfigurationResponse, error)
	UpdateEmailConfiguration(ctx context.Context, workspaceID, id string, cmd dto.UpdateEmailConfigurationCommand) error
	DeleteEmailConfiguration(ctx context.Context, workspaceID, id string) error
}

type AnalyticsService interface {
	GetWorkspaceAnalytics(ctx context.Context, workspaceID string, p *dto.AnalyticsParams) (*dto.GetWorkspaceAnalyticsResponse, error)
}

type MemberService interface {
	GetMembers(ctx context.Context, workspaceID string) ([]dto.WorkspaceMember, error)
	AddMember(ctx context.Context, workspaceID, userID string, role dto.MemberRole) (*dto.AddMemberResponse, error)
	RemoveMember(ctx context.Context, workspaceID, userID string) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID string, role dto.MemberRole) error
}

type APIKeyService interface {
	CreateApiKey(ctx context.Context, workspaceID, userID, name string) (*dto.CreateApiKeyResponse, error)
	GetApiKeys(ctx context.Context, workspaceID, userID string) ([]dto.WorkspaceApiKey, error)
	RevokeApiKey(ctx context.Context, workspaceID, userID, apiKeyID string) error
}

// Backend es lo que consumen los loaders del dashboard. Lo satisfacen tanto los
// módulos HTTP como el proveedor de fixtures (modo demo).
type Backend struct {
	Workspaces WorkspaceService
	Emails     EmailService
	Configs    EmailConfigService
	Analytics  AnalyticsService
	Members    MemberService
	ApiKeys    APIKeyService
}

// Provider arma un Backend atado al token de un request.
type Provider interface {
	ForToken(token string) *Backend
}

// =================================================================================
// SERVICES
// =================================================================================

// Services reúne los módulos de recursos sobre una misma base.
type Services struct {
	base *httpclient.Client

	Workspaces *WorkspaceAPI
	Emails     *EmailAPI
	Configs    *EmailConfigAPI
	Analytics  *AnalyticsAPI
	Tenants    *TenantAPI
	Members    *MemberAPI
	ApiKeys    *APIKeyAPI
}

// NewServices crea los módulos; cada uno con su propia copia de base.
func NewServices(base *httpclient.Client) *Services {
	return &Services{
		base:       base,
		Workspaces: NewWorkspaceAPI(base),
		Emails:     NewEmailAPI(base),
		Configs:    NewEmailConfigAPI(base),
		Analytics:  NewAnalyticsAPI(base),
		Tenants:    NewTenantAPI(base),
		Members:    NewMemberAPI(base),
		ApiKeys:    NewAPIKeyAPI(base),
	}
}

// Scoped devuelve módulos nuevos atados a token (vida de un request o sesión).
func (s *Services) Scoped(token string) *Services {
	return NewServices(s.base.WithToken(token))
}

// ForToken implementa Provider.
func (s *Services) ForToken(token string) *Backend {
	return s.Scoped(token).Backend()
}

// Backend expone los módulos detrás de los contratos.
func (s *Services) Backend() *Backend {
	return &Backend{
		Workspaces: s.Workspaces,
		Emails:     s.Emails,
		Configs:    s.Configs,
		Analytics:  s.Analytics,
		Members:    s.Members,
		ApiKeys:    s.ApiKeys,
	}
}

// resource es la base común de los módulos que exponen SetAuthToken.
type resource struct {
	c *httpclient.Client
}

func newResource(base *httpclient.Client) resource {
	return resource{c: base.Clone()}
}

// SetAuthToken ata token al cliente de ESTE módulo. "" lo desata.
func (r resource) SetAuthToken(token string) {
	if token == "" {
		r.c.SetTokenGetter(nil)
		return
	}
	r.c.SetTokenGetter(httpclient.StaticToken(token))
}

func seg(s string) string { return url.PathEscape(s) }

func workspacePath(workspaceID string) string {
	return apiPrefix + "/workspaces/" + seg(workspaceID)
}
